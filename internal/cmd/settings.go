package cmd

import (
	"github.com/spf13/cobra"

	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/output"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

var settingsFlags struct {
	theme        string
	fontSize     string
	email        bool
	push         bool
	inApp        bool
	reduceMotion bool
	highContrast bool
	sync         bool
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change display and notification settings",
	Long: `Settings are kept on this device between runs. Use --sync with 'set',
or the 'sync' command, to also save them to your account.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return printSettings(a.svc.Settings.Current())
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more settings",
	Example: `  goodaideas settings set --theme dark
  goodaideas settings set --font-size large --reduce-motion --sync
  goodaideas settings set --push-notifications=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			patch, err := settingsPatch(cmd, a.svc.Settings.Current())
			if err != nil {
				return err
			}
			if patch.Empty() {
				return apperrors.ValidationError("settings", "nothing to change, see 'goodaideas settings set --help'")
			}
			settings, err := a.svc.Settings.Update(cmd.Context(), patch, settingsFlags.sync)
			if err != nil {
				return err
			}
			if settingsFlags.sync {
				output.PrintSuccess("Settings saved to your account")
			} else {
				output.PrintSuccess("Settings updated")
			}
			return printSettings(settings)
		})
	},
}

var settingsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Save the current settings to your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.svc.Settings.Sync(cmd.Context()); err != nil {
				return err
			}
			output.PrintSuccess("Settings saved to your account")
			return nil
		})
	},
}

// settingsPatch turns the flags that were given into a patch. Grouped keys
// start from current so one flag only changes its own field.
func settingsPatch(cmd *cobra.Command, current store.Settings) (store.SettingsPatch, error) {
	var patch store.SettingsPatch
	flags := cmd.Flags()

	if flags.Changed("theme") {
		theme := store.Theme(settingsFlags.theme)
		if !theme.Valid() {
			return patch, apperrors.ValidationError("theme", "must be one of light, dark, system")
		}
		patch.Theme = &theme
	}
	if flags.Changed("font-size") {
		size := store.FontSize(settingsFlags.fontSize)
		if !size.Valid() {
			return patch, apperrors.ValidationError("font-size", "must be one of small, medium, large")
		}
		patch.FontSize = &size
	}

	if flags.Changed("email-notifications") || flags.Changed("push-notifications") || flags.Changed("in-app-notifications") {
		n := current.Notifications
		if flags.Changed("email-notifications") {
			n.Email = settingsFlags.email
		}
		if flags.Changed("push-notifications") {
			n.Push = settingsFlags.push
		}
		if flags.Changed("in-app-notifications") {
			n.InApp = settingsFlags.inApp
		}
		patch.Notifications = &n
	}

	if flags.Changed("reduce-motion") || flags.Changed("high-contrast") {
		acc := current.Accessibility
		if flags.Changed("reduce-motion") {
			acc.ReduceMotion = settingsFlags.reduceMotion
		}
		if flags.Changed("high-contrast") {
			acc.HighContrast = settingsFlags.highContrast
		}
		patch.Accessibility = &acc
	}
	return patch, nil
}

func init() {
	f := settingsSetCmd.Flags()
	f.StringVar(&settingsFlags.theme, "theme", "", "Theme: light, dark, system")
	f.StringVar(&settingsFlags.fontSize, "font-size", "", "Font size: small, medium, large")
	f.BoolVar(&settingsFlags.email, "email-notifications", true, "Receive email notifications")
	f.BoolVar(&settingsFlags.push, "push-notifications", true, "Receive push notifications")
	f.BoolVar(&settingsFlags.inApp, "in-app-notifications", true, "Show in-app notifications")
	f.BoolVar(&settingsFlags.reduceMotion, "reduce-motion", true, "Reduce animations")
	f.BoolVar(&settingsFlags.highContrast, "high-contrast", true, "Use high contrast colors")
	f.BoolVar(&settingsFlags.sync, "sync", false, "Also save the settings to your account")
	registerCompletion(settingsSetCmd, "theme", completeOneOf(string(store.ThemeLight), string(store.ThemeDark), string(store.ThemeSystem)))
	registerCompletion(settingsSetCmd, "font-size", completeOneOf(string(store.FontSmall), string(store.FontMedium), string(store.FontLarge)))

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSyncCmd)
}
