package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Resolve many locators",
	Long: `Resolve one locator per line from a file, or from stdin when the file
is omitted or '-'. Blank lines and lines starting with '#' are skipped.

Locators run concurrently (see --workers) but records are printed in input
order. A failing locator never stops the others. The exit code is the worst
across all records.

Structured formats print one JSON line (or YAML document) per record,
followed by a summary.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	svc, err := engine()
	if err != nil {
		return err
	}

	var input io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		defer f.Close()
		input = f
	}

	out := outputFor(cmd)
	var writeErr error
	summary, err := svc.Batch.Run(cmd.Context(), input, func(rec domain.BatchRecord) {
		if writeErr == nil {
			writeErr = out.Record(rec)
		}
	})
	if err != nil {
		return fmt.Errorf("read locators: %w", err)
	}
	if writeErr != nil {
		return writeErr
	}

	if err := out.Summary(summary); err != nil {
		return err
	}
	if summary.ExitCode != domain.ExitOK {
		return &ExitError{Code: summary.ExitCode}
	}
	return nil
}
