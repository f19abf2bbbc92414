package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: GOODAIDEAS_BACKEND_URL overrides backend.url
const EnvPrefix = "GOODAIDEAS"

var configDir string
var configFilePath string
var credentialsPath string

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Windows: %LOCALAPPDATA%\goodaideas
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "goodaideas"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/goodaideas
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "goodaideas"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "GoodAIdeas", "config.toml")}
	}

	return []string{
		"/etc/goodaideas/config.toml",
		"/usr/local/etc/goodaideas/config.toml",
	}
}

// Init initializes the configuration. A .env file in the working directory is
// loaded first so its values can feed the GOODAIDEAS_* overrides.
func Init(configPath string) error {
	_ = godotenv.Load()

	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	credentialsPath = filepath.Join(configDir, "session.json")

	viper.Reset()
	viper.SetConfigType("toml")
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Load system config first (if exists) - serves as foundation
	for _, sysConfigPath := range getSystemConfigPaths() {
		if _, err := os.Stat(sysConfigPath); err == nil {
			viper.SetConfigFile(sysConfigPath)
			_ = viper.ReadInConfig()
			break
		}
	}

	// User config second, merged over the system config
	if _, err := os.Stat(configFilePath); err == nil {
		viper.SetConfigFile(configFilePath)
		if err := viper.MergeInConfig(); err != nil {
			return err
		}
	}
	viper.SetConfigFile(configFilePath)

	return nil
}

func setDefaults() {
	viper.SetDefault("backend.driver", "rest")
	viper.SetDefault("backend.url", "http://localhost:54321")
	viper.SetDefault("backend.anon_key", "")
	viper.SetDefault("backend.timeout", 30)

	viper.SetDefault("database.url", "sqlite:"+filepath.Join(configDir, "goodaideas.db"))

	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.token_ttl", "1h")

	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.dir", configDir)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	viper.SetDefault("telemetry.sampling_rate", 1.0)
	viper.SetDefault("telemetry.environment", "development")

	viper.SetDefault("output.format", "text")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "goodaideas.log"))
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	// Expand tilde in path-like configuration keys
	if key == "storage.dir" || key == "log.file" {
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool configuration value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float configuration value
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetDuration returns a duration configuration value ("90m", "1h")
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetStringSlice returns a list value. A comma separated string also works,
// which is what environment overrides produce.
func GetStringSlice(key string) []string {
	values := strings.Split(strings.Join(viper.GetStringSlice(key), ","), ",")
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SetString sets a string configuration value and writes the user config file
func SetString(key string, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFilePath returns the user config file path
func GetConfigFilePath() string {
	return configFilePath
}

// GetCredentialsPath returns the path to the stored session file
func GetCredentialsPath() string {
	return credentialsPath
}

// BackendTimeout returns backend.timeout, given in seconds
func BackendTimeout() time.Duration {
	return time.Duration(GetInt("backend.timeout")) * time.Second
}

// Override sets a value for this process only, above file and environment values
func Override(key string, value interface{}) {
	viper.Set(key, value)
}
