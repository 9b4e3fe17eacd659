// Package cli provides the reveal command line interface.
// Commands are built with cobra and reach the engine only through the
// driving ports, which main wires with Configure.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Services are the driving ports commands run against.
type Services struct {
	Query   driving.QueryService
	Batch   driving.BatchService
	Schemes driving.SchemeRegistry
}

// ServiceFactory builds the services from effective settings, after
// command-line overrides have been applied.
type ServiceFactory func(settings domain.Settings) (*Services, error)

var (
	settingsService driving.SettingsService
	serviceFactory  ServiceFactory

	// settings holds the effective configuration for the running command.
	settings domain.Settings

	servicesOnce   sync.Once
	engineServices *Services
	servicesErr    error
)

// ExitError reports a process exit code after the command has already
// written its own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

var rootCmd = &cobra.Command{
	Use:   "reveal <locator>",
	Short: "Inspect resources through typed locators",
	Long: `reveal resolves a locator such as ssl://example.com/san or
github://golang/go/issues?state=open&sort=-updatedAt&limit=5 to an adapter
and runs one filter, sort, projection and budget pipeline over the result.

Locator syntax:
  scheme://resource[/element][?query]

Query parameters:
  field=value, field!=value, field>N, field<=N, field~=regex, field=lo..hi
  field[op]=value       operator by name (eq, ne, gt, lt, ge, le, regex, range,
                        or an adapter extension such as glob)
  sort=field, sort=-field, limit=N, offset=N
  fields=a,b.c          keep only these fields
  max-items=N, max-bytes=N, max-depth=N, max-snippet-chars=N

Run 'reveal schemes' to list adapters and 'reveal describe <scheme>' for
the fields and elements each one offers.`,
	Args:              usageArgs(cobra.MaximumNArgs(1)),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runQuery(cmd, args[0])
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("format", "f", "", "output format: auto, json, yaml or text")
	flags.BoolP("verbose", "v", false, "log pipeline stages to stderr")
	flags.Duration("timeout", 0, "deadline for each adapter call (default from settings)")
	flags.IntP("workers", "w", 0, "concurrent locators in batch mode (default from settings)")

	// cmd.Printf writes to stderr unless an output is set.
	rootCmd.SetOut(os.Stdout)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	})
}

// Configure wires the settings service and the factory that builds the
// engine. It must be called before Execute.
func Configure(settingsSvc driving.SettingsService, factory ServiceFactory) {
	settingsService = settingsSvc
	serviceFactory = factory
	resetServices()
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return domain.ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	if errors.Is(err, domain.ErrInvalidInput) {
		return domain.ExitUsage
	}
	return domain.ExitFailure
}

// setup applies --verbose and loads settings with flag overrides.
func setup(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger.SetVerbose(verbose)

	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	loaded, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	effective := *loaded

	flags := cmd.Flags()
	if flags.Changed("format") {
		format, _ := flags.GetString("format")
		effective.OutputFormat = domain.OutputFormat(format)
		if !effective.OutputFormat.IsValid() {
			return fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, format)
		}
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		if timeout <= 0 {
			return fmt.Errorf("%w: --timeout must be positive", domain.ErrInvalidInput)
		}
		effective.QueryTimeout = timeout
	}
	if flags.Changed("workers") {
		workers, _ := flags.GetInt("workers")
		if workers < 1 {
			return fmt.Errorf("%w: --workers must be at least 1", domain.ErrInvalidInput)
		}
		effective.BatchWorkers = workers
	}

	settings = effective
	resetServices()
	logger.Debug("Settings: timeout=%s workers=%d format=%s",
		settings.QueryTimeout, settings.BatchWorkers, settings.OutputFormat)
	return nil
}

// engine builds the services on first use, so commands that never query
// do not construct adapters.
func engine() (*Services, error) {
	servicesOnce.Do(func() {
		if serviceFactory == nil {
			servicesErr = errors.New("query services not configured")
			return
		}
		engineServices, servicesErr = serviceFactory(settings)
	})
	return engineServices, servicesErr
}

func resetServices() {
	servicesOnce = sync.Once{}
	engineServices = nil
	servicesErr = nil
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return nil
	}
}

// outputFor returns a printer for the command's stdout.
func outputFor(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), settings.OutputFormat)
}
