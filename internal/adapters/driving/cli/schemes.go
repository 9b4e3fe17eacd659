package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "List registered adapters",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runSchemes,
}

var describeCmd = &cobra.Command{
	Use:   "describe <scheme>",
	Short: "Show an adapter's capabilities",
	Long: `Show what an adapter supports: whether it resolves structure and
elements, the fields its items carry, extension operators and example
locators.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(schemesCmd)
	rootCmd.AddCommand(describeCmd)
}

func runSchemes(cmd *cobra.Command, _ []string) error {
	svc, err := engine()
	if err != nil {
		return err
	}

	caps := svc.Schemes.List()
	rows := make([]*domain.Object, len(caps))
	for i, c := range caps {
		rows[i] = domain.NewObject().
			Set("scheme", c.Scheme).
			Set("description", c.Description)
	}
	return outputFor(cmd).Table([]string{"scheme", "description"}, rows)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	svc, err := engine()
	if err != nil {
		return err
	}

	out := outputFor(cmd)
	scheme := strings.TrimSuffix(args[0], "://")
	caps, err := svc.Schemes.Describe(scheme)
	if err != nil {
		rec := domain.ClassifyError(args[0], err)
		if perr := out.Error(rec); perr != nil {
			return perr
		}
		return &ExitError{Code: rec.ExitCode}
	}
	return out.Object(capabilitiesObject(caps))
}
