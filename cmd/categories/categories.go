// Package categories implements the categories command.
package categories

import (
	"context"
	"fmt"
	"io"

	"fjacquet/doc-recognizer/cmd/root"
	"fjacquet/doc-recognizer/internal/container"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/store"

	"github.com/spf13/cobra"
)

var exportFile string

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List the expense category catalog",
	Long: `List the expense categories from the configured source (YAML file or
PostgreSQL). With --export, the catalog is also written to a YAML file that
can be used as categories.file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd.Context(), c, cmd.OutOrStdout(), exportFile)
	},
}

func init() {
	Cmd.Flags().StringVar(&exportFile, "export", "", "Write the catalog to this YAML file")
}

func run(ctx context.Context, c *container.Container, out io.Writer, export string) error {
	catalog, err := c.GetCatalog().ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("error loading categories: %w", err)
	}

	if len(catalog) == 0 {
		if _, err := fmt.Fprintln(out, "No categories configured"); err != nil {
			return err
		}
	}
	for _, id := range catalog.IDs() {
		if _, err := fmt.Fprintf(out, "%d: %s\n", id, catalog[id]); err != nil {
			return err
		}
	}

	if export == "" {
		return nil
	}
	if err := store.NewYAMLCatalog(export, c.GetLogger()).Save(catalog); err != nil {
		return err
	}
	c.GetLogger().Info("Categories exported",
		logging.F(logging.FieldOutputFile, export),
		logging.F(logging.FieldCount, len(catalog)))
	return nil
}
