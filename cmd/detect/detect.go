// Package detect implements the detect command.
package detect

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/doc-recognizer/cmd/root"
	"fjacquet/doc-recognizer/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the detect command
var Cmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect whether a PDF is an invoice or a bank statement",
	Long: `Detect the document type from the keywords found on the first pages of a PDF.
No language model is called.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd.Context(), c, cmd.OutOrStdout(), root.SharedFlags.Input)
	},
}

func run(ctx context.Context, c *container.Container, out io.Writer, input string) error {
	if input == "" {
		return fmt.Errorf("an input PDF is required (--input)")
	}
	file, err := os.Open(input) // #nosec G304 -- path comes from the command line
	if err != nil {
		return fmt.Errorf("error opening input file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.GetLogger().WithError(err).Warn("Failed to close file")
		}
	}()

	docType, score, err := c.GetRecognizer().DetectType(ctx, file, input)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "Type: %s\nStatement keywords (%d): %s\nInvoice keywords (%d): %s\n",
		docType,
		len(score.Statement), strings.Join(score.Statement, ", "),
		len(score.Invoice), strings.Join(score.Invoice, ", "))
	return err
}
