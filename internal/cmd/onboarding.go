package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xAcousticbridge/GAID/internal/util"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/formatter"
	"github.com/0xAcousticbridge/GAID/pkg/output"
	"github.com/0xAcousticbridge/GAID/pkg/prompter"
	"github.com/0xAcousticbridge/GAID/pkg/service"
)

var onboardingFlags struct {
	wake       string
	sleep      string
	productive string
	goals      string
	frequency  string
	categories string
}

var errStepBack = errors.New("back")

var onboardingCmd = &cobra.Command{
	Use:   "onboarding",
	Short: "Set up your schedule, goals and AI preferences",
}

var onboardingStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether setup is complete and the saved preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if _, err := a.svc.Auth.Me(); err != nil {
				return err
			}
			status := a.svc.Onboarding.Status()
			saved, found, err := a.svc.Onboarding.Saved(cmd.Context())
			if err != nil {
				return err
			}
			if output.GetOutputFormat() == output.FormatJSON {
				return output.Print("", map[string]interface{}{
					"completed":   status.Completed,
					"preferences": saved,
				})
			}

			if err := output.PrintRecord("Onboarding", []output.Field{
				{Key: "completed", Value: formatter.YesNo(status.Completed)},
			}); err != nil {
				return err
			}
			if !found {
				output.PrintInfo("No preferences saved yet. Run 'goodaideas onboarding step' to set them up.")
				return nil
			}
			output.Println()
			return printPreferences(service.Preferences{
				Schedule:             saved.DailyRoutinePreferences.Data(),
				Goals:                saved.FocusAreas,
				SuggestionsFrequency: saved.SuggestionsFrequency,
				Categories:           saved.PreferredCategories,
			})
		})
	},
}

var onboardingStepCmd = &cobra.Command{
	Use:   "step",
	Short: "Walk through setup one step at a time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if _, err := a.svc.Auth.Me(); err != nil {
				return err
			}

			prefs := service.DefaultPreferences()
			if saved, found, err := a.svc.Onboarding.Saved(cmd.Context()); err == nil && found {
				prefs = service.Preferences{
					Schedule:             saved.DailyRoutinePreferences.Data(),
					Goals:                saved.FocusAreas,
					SuggestionsFrequency: saved.SuggestionsFrequency,
					Categories:           saved.PreferredCategories,
				}
			}

			p := ask()
			for {
				step := a.svc.Onboarding.Current()
				err := promptStep(p, step, &prefs)
				if errors.Is(err, errStepBack) {
					a.svc.Onboarding.Back()
					continue
				}
				if err != nil {
					return err
				}

				next, err := a.svc.Onboarding.Next(prefs)
				if err != nil {
					output.PrintError("%s", apperrors.FormatError(err))
					continue
				}
				if next == step {
					break
				}
			}

			if err := a.svc.Onboarding.Complete(cmd.Context(), prefs); err != nil {
				return err
			}
			output.PrintSuccess("Setup completed successfully!")
			return printPreferences(prefs)
		})
	},
}

var onboardingCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Save all preferences at once",
	Example: `  goodaideas onboarding complete --goals productivity,health \
    --categories meal-planning,exercise --frequency often`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs := service.DefaultPreferences()
		flags := cmd.Flags()
		if flags.Changed("wake") {
			prefs.Schedule.WakeTime = onboardingFlags.wake
		}
		if flags.Changed("sleep") {
			prefs.Schedule.SleepTime = onboardingFlags.sleep
		}
		if flags.Changed("productive") {
			prefs.Schedule.ProductiveHours = util.ParseList(onboardingFlags.productive)
		}
		if flags.Changed("frequency") {
			prefs.SuggestionsFrequency = onboardingFlags.frequency
		}
		prefs.Goals = util.ParseList(onboardingFlags.goals)
		prefs.Categories = util.ParseList(onboardingFlags.categories)

		return withApp(cmd, func(a *app) error {
			if err := a.svc.Onboarding.Complete(cmd.Context(), prefs); err != nil {
				return err
			}
			output.PrintSuccess("Setup completed successfully!")
			return printPreferences(prefs)
		})
	},
}

// promptStep asks for the fields of one step, starting from the values in prefs
func promptStep(p *prompter.Prompter, step service.OnboardingStep, prefs *service.Preferences) error {
	index := 0
	for i, s := range service.OnboardingSteps {
		if s == step {
			index = i
		}
	}
	output.PrintHeading(fmt.Sprintf("Step %d of %d: %s", index+1, len(service.OnboardingSteps), step))
	if index > 0 {
		answer, err := p.String("Press enter to continue or type b to go back", "")
		if err != nil {
			return err
		}
		if strings.EqualFold(answer, "b") {
			return errStepBack
		}
	}

	var err error
	switch step {
	case service.StepSchedule:
		if prefs.Schedule.WakeTime, err = p.String("Wake time (HH:MM)", prefs.Schedule.WakeTime); err != nil {
			return err
		}
		if prefs.Schedule.SleepTime, err = p.String("Sleep time (HH:MM)", prefs.Schedule.SleepTime); err != nil {
			return err
		}
		prefs.Schedule.ProductiveHours, err = p.MultiSelect("When are you most productive?", service.ProductivePeriods, prefs.Schedule.ProductiveHours)
	case service.StepGoals:
		prefs.Goals, err = p.MultiSelect("What do you want AI to help with?", service.GoalOptions, prefs.Goals)
	case service.StepAIPreferences:
		var i int
		if i, err = p.Select("How often should we suggest ideas?", service.SuggestionFrequencies); err != nil {
			return err
		}
		prefs.SuggestionsFrequency = service.SuggestionFrequencies[i]
		prefs.Categories, err = p.MultiSelect("Which kinds of help interest you?", service.AssistCategories, prefs.Categories)
	}
	return err
}

func init() {
	f := onboardingCompleteCmd.Flags()
	f.StringVar(&onboardingFlags.wake, "wake", "", "Wake time, HH:MM (default 07:00)")
	f.StringVar(&onboardingFlags.sleep, "sleep", "", "Sleep time, HH:MM (default 22:00)")
	f.StringVar(&onboardingFlags.productive, "productive", "", "Productive periods: "+strings.Join(service.ProductivePeriods, ", "))
	f.StringVar(&onboardingFlags.goals, "goals", "", "Goals: "+strings.Join(service.GoalOptions, ", "))
	f.StringVar(&onboardingFlags.frequency, "frequency", "", "Suggestion frequency: "+strings.Join(service.SuggestionFrequencies, ", "))
	f.StringVar(&onboardingFlags.categories, "categories", "", "Categories: "+strings.Join(service.AssistCategories, ", "))

	registerCompletion(onboardingCompleteCmd, "productive", completeList(service.ProductivePeriods...))
	registerCompletion(onboardingCompleteCmd, "goals", completeList(service.GoalOptions...))
	registerCompletion(onboardingCompleteCmd, "frequency", completeOneOf(service.SuggestionFrequencies...))
	registerCompletion(onboardingCompleteCmd, "categories", completeList(service.AssistCategories...))

	onboardingCmd.AddCommand(onboardingStatusCmd)
	onboardingCmd.AddCommand(onboardingStepCmd)
	onboardingCmd.AddCommand(onboardingCompleteCmd)
}
