// Package classify implements the classify command.
package classify

import (
	"context"
	"fmt"
	"io"
	"os"

	"fjacquet/doc-recognizer/cmd/root"
	"fjacquet/doc-recognizer/internal/common"
	"fjacquet/doc-recognizer/internal/container"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"

	"github.com/spf13/cobra"
)

var description string

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Suggest expense categories for movements",
	Long: `Suggest an expense category for a single description (--description), or for
every charge of a movements CSV (--input). The CSV is written back with the
suggested categories to --output, or to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd.Context(), c, cmd.OutOrStdout(), options{
			description: description,
			input:       root.SharedFlags.Input,
			output:      root.SharedFlags.Output,
		})
	},
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Single movement description to classify")
}

type options struct {
	description string
	input       string
	output      string
}

func run(ctx context.Context, c *container.Container, out io.Writer, opts options) error {
	if opts.description == "" && opts.input == "" {
		return fmt.Errorf("either --description or --input is required")
	}

	catalog, err := c.GetCatalog().ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("error loading categories: %w", err)
	}
	if len(catalog) == 0 {
		return fmt.Errorf("the category catalog is empty")
	}

	if opts.description != "" {
		return classifyOne(ctx, c, out, opts.description, catalog)
	}
	return classifyFile(ctx, c, out, opts, catalog)
}

func classifyOne(ctx context.Context, c *container.Container, out io.Writer, desc string, catalog models.CategoryCatalog) error {
	suggestion, err := c.GetClassifier().Classify(ctx, desc, catalog)
	if err != nil {
		return err
	}
	if suggestion == nil {
		_, err = fmt.Fprintln(out, "no category")
		return err
	}
	_, err = fmt.Fprintln(out, suggestion.String())
	return err
}

func classifyFile(ctx context.Context, c *container.Container, out io.Writer, opts options, catalog models.CategoryCatalog) error {
	delimiter := c.GetConfig().Delimiter()
	rows, err := common.ReadCSVFile[common.MovementRow](opts.input, delimiter, c.GetLogger())
	if err != nil {
		return err
	}

	movements := make([]models.StatementMovement, len(rows))
	for i, row := range rows {
		m, err := row.Movement()
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		movements[i] = m
	}

	summary, err := c.GetCoordinator().ClassifyMovements(ctx, movements, catalog)
	if err != nil {
		return err
	}
	c.GetLogger().Info("Movements classified",
		logging.F(logging.FieldCount, summary.Eligible),
		logging.F("classified", summary.Classified),
		logging.F("unmatched", summary.Unmatched),
		logging.F("failed", summary.Failed))

	classified := make([]common.MovementRow, len(movements))
	for i, m := range movements {
		classified[i] = common.NewMovementRow(m)
	}

	if opts.output == "" {
		return common.WriteCSV(out, classified, delimiter)
	}
	file, err := os.Create(opts.output) // #nosec G304 -- path comes from the command line
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	if err := common.WriteCSV(file, classified, delimiter); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing output file: %w", err)
	}
	c.GetLogger().WithField(logging.FieldOutputFile, opts.output).Info("Classified movements written")
	return nil
}
