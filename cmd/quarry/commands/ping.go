package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/girardinsamuel/quarry/query/executor"
	"github.com/spf13/cobra"
)

// NewPingCommand creates the ping command, opening every configured
// connection and reporting reachability.
func NewPingCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping [connection]",
		Short: "Check that configured connections are reachable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			failed := false
			for name, conn := range cfg.Connections {
				if len(args) == 1 && args[0] != name {
					continue
				}
				db, err := executor.Open(conn.Dialect, conn.DSN)
				if err == nil {
					err = db.PingContext(ctx)
					db.Close()
				}
				if err != nil {
					color.Red("✗ %s: %v", name, err)
					failed = true
					continue
				}
				color.Green("✓ %s (%s)", name, conn.Dialect)
			}
			if failed {
				cmd.SilenceUsage = true
				return fmt.Errorf("one or more connections failed")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-connection timeout")
	return cmd
}
