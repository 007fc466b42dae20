// Package expenses implements the expenses command.
package expenses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fjacquet/doc-recognizer/cmd/root"
	"fjacquet/doc-recognizer/internal/container"
	"fjacquet/doc-recognizer/internal/expenses"

	"github.com/spf13/cobra"
)

// Cmd represents the expenses command
var Cmd = &cobra.Command{
	Use:   "expenses",
	Short: "Record confirmed statement movements as expenses",
	Long: `Record confirmed statement movements as expenses in PostgreSQL.
The input is a JSON file holding either an array of movements or an object
with a "movements" array. Each movement carries date, description, amount,
category_id, branch_id and account_id. Invalid movements are reported and
skipped; the others are saved.`,
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
		return fmt.Errorf("an input JSON file is required (--input)")
	}
	saver, err := c.GetSaver()
	if err != nil {
		return err
	}

	movements, err := readMovements(input)
	if err != nil {
		return err
	}
	if len(movements) == 0 {
		return fmt.Errorf("no movements to save in %s", input)
	}

	report := saver.SaveMovements(ctx, movements)
	if _, err := fmt.Fprintln(out, report.Summary()); err != nil {
		return err
	}
	if report.Saved == 0 {
		return fmt.Errorf("no movement was saved")
	}
	return nil
}

func readMovements(path string) ([]expenses.ConfirmedMovement, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []expenses.ConfirmedMovement
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("error parsing movements: %w", err)
		}
		return list, nil
	}

	var wrapped struct {
		Movements []expenses.ConfirmedMovement `json:"movements"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("error parsing movements: %w", err)
	}
	return wrapped.Movements, nil
}
