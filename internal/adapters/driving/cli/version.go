package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long: `Print the reveal version with the Go toolchain and platform it was
built for. -f json or -f yaml prints the same as an object.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		platform := runtime.GOOS + "/" + runtime.GOARCH
		switch settings.OutputFormat {
		case domain.FormatJSON, domain.FormatYAML:
			return outputFor(cmd).Object(domain.NewObject().
				Set("version", version).
				Set("go", runtime.Version()).
				Set("platform", platform))
		}
		cmd.Printf("reveal version %s (%s, %s)\n", version, runtime.Version(), platform)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
