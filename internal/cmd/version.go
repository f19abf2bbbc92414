package cmd

import (
	"github.com/spf13/cobra"

	"github.com/0xAcousticbridge/GAID/pkg/output"
)

// Version is set at build time with -ldflags "-X .../internal/cmd.Version=..."
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", map[string]string{"version": Version})
		}
		output.Println("GoodAIdeas CLI v" + Version)
		return nil
	},
}
