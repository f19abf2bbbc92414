package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/formatter"
	"github.com/0xAcousticbridge/GAID/pkg/output"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite [idea-id]",
	Short: "Save or unsave an idea, or list your saved ideas",
	Long:  "With an idea id, toggles whether the idea is saved. Without one, lists your saved ideas.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if len(args) == 0 {
				ideas, err := a.svc.Favorites.List(cmd.Context())
				if err != nil {
					return err
				}
				return printIdeaSummaries(ideas)
			}

			saved, err := a.svc.Favorites.Toggle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if saved {
				output.PrintSuccess("Added to favorites")
			} else {
				output.PrintSuccess("Removed from favorites")
			}
			return nil
		})
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <idea-id> [1-5]",
	Short: "Rate an idea, or show your rating",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				mine, err := a.svc.Ratings.Mine(ctx, args[0])
				if err != nil {
					return err
				}
				if mine == 0 {
					output.PrintInfo("You have not rated this idea yet")
					return nil
				}
				output.Println(formatter.Stars(float64(mine)))
				return nil
			}

			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return apperrors.ValidationError("rating", "must be a whole number from 1 to 5")
			}
			if err := a.svc.Ratings.Rate(ctx, args[0], rating); err != nil {
				return err
			}
			output.PrintSuccess("Rated %s", formatter.Stars(float64(rating)))
			return nil
		})
	},
}

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment"},
	Short:   "Read and write comments on ideas",
}

var commentsListCmd = &cobra.Command{
	Use:   "list <idea-id>",
	Short: "List comments on an idea, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			comments, err := a.svc.Comments.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printComments(comments)
		})
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <idea-id> <text...>",
	Short: "Comment on an idea",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if _, err := a.svc.Comments.Add(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			output.PrintSuccess("Comment posted")
			return nil
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your daily routines and goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			d, err := a.svc.Dashboard.Load(cmd.Context())
			if err != nil {
				return err
			}
			return printDashboard(d)
		})
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show your profile, ideas and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			p, err := a.svc.Activity.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return printProfile(p)
		})
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Keep prompts you want to reuse",
}

var promptSaveCmd = &cobra.Command{
	Use:   "save <text...>",
	Short: "Save a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if _, err := a.svc.Prompts.Save(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}
			output.PrintSuccess("Prompt saved successfully!")
			return nil
		})
	},
}

var promptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your saved prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			prompts, err := a.svc.Prompts.List(cmd.Context())
			if err != nil {
				return err
			}
			return printPrompts(prompts)
		})
	},
}

func init() {
	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsAddCmd)

	promptCmd.AddCommand(promptSaveCmd)
	promptCmd.AddCommand(promptListCmd)
}
