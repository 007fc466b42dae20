// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/doc-recognizer/internal/config"
	"fjacquet/doc-recognizer/internal/container"
	"fjacquet/doc-recognizer/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
	Config string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cfg is the configuration loaded before any command runs
	Cfg *config.Config

	// ContainerOptions are applied when the container is built; tests use
	// them to replace external clients.
	ContainerOptions []container.Option

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "doc-recognizer",
		Short: "Extract invoices and bank statements from PDF files with a language model.",
		Long: `doc-recognizer reads supplier invoices and bank statements in PDF format,
detects which kind of document each one is and extracts its data as structured
records. Statement charges can be given a suggested expense category.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Initialize(SharedFlags.Config)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			CloseContainer()
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}

	mu  sync.Mutex
	app *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (.json, .csv or .xlsx)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Config, "config", "", "Configuration file (default: config.yaml in $HOME/.doc-recognizer, .doc-recognizer or .)")
}

// Initialize loads the .env file and the configuration and configures logging.
func Initialize(configFile string) error {
	envFile := config.LoadEnv()

	cfg, err := config.InitializeConfigFrom(configFile)
	if err != nil {
		return err
	}
	Cfg = cfg
	Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	if envFile != "" {
		Log.Debug("Loaded environment variables", logging.F(logging.FieldFile, envFile))
	}
	return nil
}

// GetContainer returns the application container, building it on first use.
func GetContainer(ctx context.Context) (*container.Container, error) {
	mu.Lock()
	defer mu.Unlock()

	if app != nil {
		return app, nil
	}
	if Cfg == nil {
		return nil, fmt.Errorf("configuration is not loaded")
	}
	opts := append([]container.Option{container.WithLogger(Log)}, ContainerOptions...)
	c, err := container.NewContainer(ctx, Cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	app = c
	return app, nil
}

// CloseContainer releases the container built by GetContainer, if any.
func CloseContainer() {
	mu.Lock()
	defer mu.Unlock()

	if app == nil {
		return
	}
	if err := app.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close application resources")
	}
	app = nil
}
