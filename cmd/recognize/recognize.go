// Package recognize implements the recognize command.
package recognize

import (
	"context"
	"fmt"
	"io"
	"os"

	"fjacquet/doc-recognizer/cmd/root"
	"fjacquet/doc-recognizer/internal/container"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/recognizer"

	"github.com/spf13/cobra"
)

var (
	documentType string
	categorize   bool
)

// Cmd represents the recognize command
var Cmd = &cobra.Command{
	Use:   "recognize",
	Short: "Extract an invoice or a bank statement from a PDF",
	Long: `Extract the data of a supplier invoice or a bank statement from a PDF file.
The document type is detected from the text unless --type is given. With
--categorize, statement charges get a suggested category from the catalog.
The result is printed as JSON, or written to --output as JSON, CSV or XLSX.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd.Context(), c, cmd.OutOrStdout(), options{
			input:      root.SharedFlags.Input,
			output:     root.SharedFlags.Output,
			docType:    documentType,
			categorize: categorize,
		})
	},
}

func init() {
	Cmd.Flags().StringVarP(&documentType, "type", "t", string(models.DocumentTypeAuto), "Document type: auto, factura or estado_cuenta")
	Cmd.Flags().BoolVar(&categorize, "categorize", false, "Suggest categories for statement charges")
}

type options struct {
	input      string
	output     string
	docType    string
	categorize bool
}

func run(ctx context.Context, c *container.Container, out io.Writer, opts options) error {
	if opts.input == "" {
		return fmt.Errorf("an input PDF is required (--input)")
	}
	docType, err := models.ParseDocumentType(opts.docType)
	if err != nil {
		return err
	}

	file, err := os.Open(opts.input) // #nosec G304 -- path comes from the command line
	if err != nil {
		return fmt.Errorf("error opening input file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.GetLogger().WithError(err).Warn("Failed to close file")
		}
	}()

	result, err := c.GetRecognizer().Recognize(ctx, file, recognizer.Options{
		Type:       docType,
		Categorize: opts.categorize,
		Source:     opts.input,
	})
	if err != nil {
		return err
	}

	fields := []logging.Field{logging.F(logging.FieldDocumentType, result.Type)}
	if result.Statement != nil {
		fields = append(fields,
			logging.F(logging.FieldCount, len(result.Statement.Movements)),
			logging.F("categorized", result.Statement.CategorizedCount()))
	}
	c.GetLogger().Info("Document recognized", fields...)

	if opts.output == "" {
		return c.GetExporter().Write(out, result, "")
	}
	return c.GetExporter().WriteFile(opts.output, result)
}
