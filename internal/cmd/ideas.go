package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/internal/util"
	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/output"
	"github.com/0xAcousticbridge/GAID/pkg/prompter"
	"github.com/0xAcousticbridge/GAID/pkg/service"
)

var ideasFlags struct {
	category    string
	tags        string
	limit       int
	title       string
	description string
	quick       bool
}

var ideasCmd = &cobra.Command{
	Use:     "ideas",
	Aliases: []string{"idea"},
	Short:   "Browse, share and edit ideas",
}

var ideasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest ideas",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ideasFlags.category != "" && !service.IsCategory(ideasFlags.category) {
			return apperrors.ValidationError("category", "must be one of: "+strings.Join(service.Categories, ", "))
		}
		return withApp(cmd, func(a *app) error {
			ideas, err := a.svc.Ideas.List(cmd.Context(), service.ListOptions{
				Category: ideasFlags.category,
				Tags:     util.ParseList(ideasFlags.tags),
				Limit:    ideasFlags.limit,
			})
			if err != nil {
				return err
			}
			return printIdeaSummaries(ideas)
		})
	},
}

var ideasShowCmd = &cobra.Command{
	Use:   "show <idea-id>",
	Short: "Show an idea with its rating and comment count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			ctx := cmd.Context()
			detail, err := a.svc.Ideas.Get(ctx, args[0])
			if err != nil {
				return err
			}

			var favorite bool
			var mine int
			if a.store.State().User != nil {
				if favorite, err = a.svc.Favorites.IsFavorite(ctx, args[0]); err != nil {
					return err
				}
				if mine, err = a.svc.Ratings.Mine(ctx, args[0]); err != nil {
					return err
				}
			}
			return printIdeaDetail(detail, favorite, mine)
		})
	},
}

var ideasCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Share a new idea",
	Long:  "Share a new idea. Missing fields are prompted for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if _, err := a.svc.Auth.Me(); err != nil {
				return err
			}
			in := service.IdeaInput{
				Title:       ideasFlags.title,
				Description: ideasFlags.description,
				Category:    ideasFlags.category,
				Tags:        util.ParseList(ideasFlags.tags),
			}
			if err := promptIdea(ask(), &in, !cmd.Flags().Changed("tags")); err != nil {
				return err
			}

			idea, err := a.svc.Ideas.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			output.PrintSuccess("Your idea was shared successfully!")
			return output.PrintRecord(idea.Title, []output.Field{
				{Key: "id", Value: idea.ID},
				{Key: "category", Value: idea.Category},
			})
		})
	},
}

var ideasEditCmd = &cobra.Command{
	Use:   "edit <idea-id>",
	Short: "Edit one of your ideas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			ctx := cmd.Context()
			current, err := a.svc.Ideas.Get(ctx, args[0])
			if err != nil {
				return err
			}

			in := service.IdeaInput{
				Title:       current.Title,
				Description: current.Description,
				Category:    current.Category,
				Tags:        current.Tags,
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = ideasFlags.title
			}
			if flags.Changed("description") {
				in.Description = ideasFlags.description
			}
			if flags.Changed("category") {
				in.Category = ideasFlags.category
			}
			if flags.Changed("tags") {
				in.Tags = util.ParseList(ideasFlags.tags)
			}

			idea, err := a.svc.Ideas.Update(ctx, args[0], in)
			if err != nil {
				return err
			}
			output.PrintSuccess("Idea updated")
			return printIdeas([]models.Idea{*idea})
		})
	},
}

var ideasMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the ideas you shared",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			ideas, err := a.svc.Ideas.Mine(cmd.Context())
			if err != nil {
				return err
			}
			return printIdeas(ideas)
		})
	},
}

var ideasSearchCmd = &cobra.Command{
	Use:   "search <terms...>",
	Short: "Search idea titles",
	Long:  "Search idea titles. --quick returns the five best matches, as the search box does.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.Join(args, " ")
		return withApp(cmd, func(a *app) error {
			var ideas []service.IdeaSummary
			var err error
			if ideasFlags.quick {
				ideas, err = a.svc.Ideas.QuickSearch(cmd.Context(), term)
			} else {
				ideas, err = a.svc.Ideas.Search(cmd.Context(), term)
			}
			if err != nil {
				return err
			}
			return printIdeaSummaries(ideas)
		})
	},
}

// promptIdea fills the empty fields of in from the prompter
func promptIdea(p *prompter.Prompter, in *service.IdeaInput, askTags bool) error {
	var err error
	if strings.TrimSpace(in.Title) == "" {
		if in.Title, err = p.String("Title", ""); err != nil {
			return err
		}
	}
	if strings.TrimSpace(in.Description) == "" {
		if in.Description, err = p.Multiline("Description", 50); err != nil {
			return err
		}
	}
	if in.Category == "" {
		i, err := p.Select("Category", service.Categories)
		if err != nil {
			return err
		}
		in.Category = service.Categories[i]
	}
	if askTags {
		tags, err := p.String("Tags (comma separated, up to 5)", "")
		if err != nil {
			return err
		}
		in.Tags = util.ParseList(tags)
	}
	return nil
}

func init() {
	ideasListCmd.Flags().StringVar(&ideasFlags.category, "category", "", "Only ideas in this category")
	ideasListCmd.Flags().StringVar(&ideasFlags.tags, "tags", "", "Only ideas with all of these comma separated tags")
	ideasListCmd.Flags().IntVar(&ideasFlags.limit, "limit", 20, "Maximum number of ideas")

	for _, c := range []*cobra.Command{ideasCreateCmd, ideasEditCmd} {
		c.Flags().StringVar(&ideasFlags.title, "title", "", "Idea title")
		c.Flags().StringVar(&ideasFlags.description, "description", "", "What the idea is and how AI helps")
		c.Flags().StringVar(&ideasFlags.category, "category", "", "One of: "+strings.Join(service.Categories, ", "))
		c.Flags().StringVar(&ideasFlags.tags, "tags", "", "Comma separated tags")
	}

	ideasSearchCmd.Flags().BoolVar(&ideasFlags.quick, "quick", false, "Return only the top five matches")

	ideasCmd.AddCommand(ideasListCmd)
	ideasCmd.AddCommand(ideasShowCmd)
	ideasCmd.AddCommand(ideasCreateCmd)
	ideasCmd.AddCommand(ideasEditCmd)
	ideasCmd.AddCommand(ideasMineCmd)
	ideasCmd.AddCommand(ideasSearchCmd)

	for _, c := range []*cobra.Command{ideasListCmd, ideasCreateCmd, ideasEditCmd} {
		registerCompletion(c, "category", completeOneOf(service.Categories...))
	}
}
