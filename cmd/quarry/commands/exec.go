package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/girardinsamuel/quarry/query/executor"
	"github.com/spf13/cobra"
)

// NewExecCommand creates the exec command, running one raw statement
// against a configured connection and printing the rows.
func NewExecCommand() *cobra.Command {
	var connName string

	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a raw SQL statement against a configured connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			mgr, err := executor.FromConfig(cfg)
			if err != nil {
				return err
			}
			defer mgr.Close()

			statement := args[0]
			if !isQuery(statement) {
				affected, err := mgr.Exec(cmd.Context(), connName, statement, nil)
				if err != nil {
					return err
				}
				color.Green("OK, %d row(s) affected", affected)
				return nil
			}

			rows, err := mgr.Query(cmd.Context(), connName, statement, nil)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				color.Yellow("no rows")
				return nil
			}

			columns := make([]string, 0, len(rows[0]))
			for col := range rows[0] {
				columns = append(columns, col)
			}
			sort.Strings(columns)

			header := color.New(color.Bold)
			header.Println(strings.Join(columns, "\t"))
			for _, row := range rows {
				cells := make([]string, len(columns))
				for i, col := range columns {
					cells[i] = fmt.Sprintf("%v", row[col])
				}
				fmt.Println(strings.Join(cells, "\t"))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&connName, "connection", "c", "", "connection name (default: configured default)")
	return cmd
}

func isQuery(statement string) bool {
	head := strings.ToUpper(strings.TrimSpace(statement))
	return strings.HasPrefix(head, "SELECT") || strings.HasPrefix(head, "WITH")
}
