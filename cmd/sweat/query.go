// ABOUTME: CLI command for ad-hoc read-only SQL.
// ABOUTME: Runs on a read-only connection and prints the rows as a table.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/sweat/internal/storage"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:     "query <sql>",
	Aliases: []string{"q", "sql"},
	Short:   "Run a read-only SQL query",
	Long: `Run one SELECT, WITH, EXPLAIN, or VALUES statement against the store.

The statement runs on a read-only connection, separate from the one imports
write through. Anything that would modify data is rejected.

EXAMPLES:

  sweat query "SELECT activity_type, COUNT(*) FROM workout_summary GROUP BY 1"
  sweat query "SELECT * FROM import_runs ORDER BY started_at DESC LIMIT 5"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		statement := strings.Join(args, " ")

		store, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		result, err := store.Query(ctx, statement)
		if errors.Is(err, storage.ErrNotReadOnly) {
			return fmt.Errorf("%w: only SELECT, WITH, EXPLAIN, and VALUES are allowed", err)
		}
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		rows := make([][]string, 0, len(result.Rows))
		for _, r := range result.Rows {
			cells := make([]string, len(r))
			for i, v := range r {
				cells[i] = formatCell(v)
			}
			rows = append(rows, cells)
		}

		fmt.Println(renderTable(result.Columns, rows))
		fmt.Println(color.New(color.Faint).Sprintf("(%d rows)", len(rows)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
