package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/config"
	"github.com/0xAcousticbridge/GAID/pkg/output"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "goodaideas",
	Short: "GoodAIdeas - share and discover everyday AI ideas",
	Long: `GoodAIdeas is a command-line client for the GoodAIdeas community.
Share ideas for using AI in daily life, rate and save the ones you like,
and keep your preferences in sync across devices.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Initialize(level, config.GetString("log.file"))

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return apperrors.ValidationError("output", "must be one of text, json, table")
			}
			config.Override("output.format", outputFmt)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
	},
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		os.Exit(1)
	}
}

// withApp opens the app for one command and closes it afterwards
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/goodaideas/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(onboardingCmd)
	rootCmd.AddCommand(ideasCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)

	registerCompletion(rootCmd, "output", completeOneOf(string(output.FormatText), string(output.FormatJSON), string(output.FormatTable)))
}
