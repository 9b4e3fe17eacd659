package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change reveal settings.

Settings are stored in ~/.reveal/config.toml. Every key can be overridden
for one run with an environment variable: query.timeout becomes
REVEAL_QUERY_TIMEOUT. GITHUB_TOKEN is honoured when github.token is unset.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Change a setting",
	Long: `Validate and persist one setting.

When the value is omitted it is read from stdin, without echo on a
terminal, which keeps tokens out of shell history.

Examples:
  reveal settings set query.timeout 45s
  reveal settings set budget.max_items 200
  reveal settings set github.token`,
	Args: usageArgs(cobra.RangeArgs(1, 2)),
	RunE: runSettingsSet,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Restore a setting to its default",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		if err := settingsService.Unset(args[0]); err != nil {
			return fmt.Errorf("failed to unset %s: %w", args[0], err)
		}
		cmd.Printf("Unset %s\n", args[0])
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		cmd.Println(settingsService.ConfigPath())
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values := settingsService.Values()
	rows := make([]*domain.Object, len(values))
	for i, v := range values {
		source := "config"
		if v.IsDefault {
			source = "default"
		}
		rows[i] = domain.NewObject().
			Set("key", v.Key).
			Set("value", v.Value).
			Set("source", source).
			Set("description", v.Description)
	}
	return outputFor(cmd).Table([]string{"key", "value", "source", "description"}, rows)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Enter value for %s: ", key)
		value = readSecret(cmd.InOrStdin())
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

// readSecret reads one line, without echo when r is a terminal.
func readSecret(r io.Reader) string {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	input, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimSpace(input)
}
