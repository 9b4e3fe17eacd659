package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

var queryCmd = &cobra.Command{
	Use:   "query <locator>",
	Short: "Resolve one locator",
	Long: `Resolve one locator and print its result.

Equivalent to 'reveal <locator>'. On failure a structured error record is
printed and the exit code is 1 for adapter failures or 2 for malformed
locators, unknown schemes and unsupported operators.

Examples:
  reveal query 'ssl://example.com/san'
  reveal query 'json://package.json/dependencies'
  reveal query 'github://golang/go/pulls?state=merged&limit=5&fields=number,title'`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, raw string) error {
	svc, err := engine()
	if err != nil {
		return err
	}

	out := outputFor(cmd)
	env, err := svc.Query.Query(cmd.Context(), raw)
	if err != nil {
		rec := domain.ClassifyError(raw, err)
		logger.Warn("Query failed: %s: %v", rec.Kind, err)
		if perr := out.Error(rec); perr != nil {
			return perr
		}
		return &ExitError{Code: rec.ExitCode}
	}

	return out.Envelope(env)
}
