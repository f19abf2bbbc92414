package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xAcousticbridge/GAID/pkg/output"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate a completion script for bash, zsh, fish or powershell. Categories,
themes, font sizes and onboarding choices complete as flag values.

Load completions in the current shell:

  source <(goodaideas completion bash)
  source <(goodaideas completion zsh)
  goodaideas completion fish | source

Load them for every new session:

  goodaideas completion bash > /etc/bash_completion.d/goodaideas
  goodaideas completion zsh > "${fpath[1]}/_goodaideas"
  goodaideas completion fish > ~/.config/fish/completions/goodaideas.fish
  goodaideas completion powershell >> $PROFILE
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := output.Writer()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(w, true)
		case "zsh":
			return rootCmd.GenZshCompletion(w)
		case "fish":
			return rootCmd.GenFishCompletion(w, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(w)
		}
		return fmt.Errorf("unknown shell: %s", args[0])
	},
}

// completeOneOf completes a flag that takes a single value from options
func completeOneOf(options ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return options, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeList completes the last item of a comma separated flag value,
// skipping options already given
func completeList(options ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
		}
		given := make(map[string]bool)
		for _, v := range strings.Split(prefix, ",") {
			given[strings.TrimSpace(v)] = true
		}

		out := make([]string, 0, len(options))
		for _, o := range options {
			if !given[o] {
				out = append(out, prefix+o)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func registerCompletion(c *cobra.Command, flag string, fn cobra.CompletionFunc) {
	if err := c.RegisterFlagCompletionFunc(flag, fn); err != nil {
		panic(fmt.Sprintf("completion for --%s on %s: %v", flag, c.Name(), err))
	}
}
