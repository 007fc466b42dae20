// Package serve implements the serve command.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/doc-recognizer/cmd/root"
	"fjacquet/doc-recognizer/internal/api"
	"fjacquet/doc-recognizer/internal/container"

	"github.com/spf13/cobra"
)

var address string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API that accepts PDF uploads, lists categories, suggests
categories and records confirmed expenses. The server stops gracefully on
SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, c, address)
	},
}

func init() {
	Cmd.Flags().StringVar(&address, "address", "", "Listen address (overrides server.address)")
}

func run(ctx context.Context, c *container.Container, addr string) error {
	cfg := c.GetConfig()
	if addr == "" {
		addr = cfg.Server.Address
	}
	return api.Run(ctx, addr, api.NewRouter(newDeps(c)), cfg.Server.ShutdownTimeout, c.GetLogger())
}

// newDeps builds the handler dependencies. The expenses endpoint is left
// unconfigured when no database is available.
func newDeps(c *container.Container) api.Deps {
	cfg := c.GetConfig()
	deps := api.Deps{
		Recognizer:     c.GetRecognizer(),
		Classifier:     c.GetClassifier(),
		Catalog:        c.GetCatalog(),
		Logger:         c.GetLogger(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if saver, err := c.GetSaver(); err == nil {
		deps.Saver = saver
	} else {
		c.GetLogger().WithError(err).Warn("Expense persistence disabled")
	}
	return deps
}
