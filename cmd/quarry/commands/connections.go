package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/girardinsamuel/quarry/config"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	if file != "" {
		return config.Load(file)
	}
	return config.Load()
}

// NewConnectionsCommand creates the connections command, listing the
// configured connections and their dialects.
func NewConnectionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connections",
		Short: "List configured database connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(cfg.Connections) == 0 {
				color.Yellow("No connections configured")
				return nil
			}

			bold := color.New(color.Bold)
			for name, conn := range cfg.Connections {
				marker := " "
				if name == cfg.Default {
					marker = "*"
				}
				bold.Printf("%s %s", marker, name)
				fmt.Printf("  dialect=%s\n", conn.Dialect)
			}
			return nil
		},
	}
}
