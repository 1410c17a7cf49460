package executor

import (
	"fmt"

	"github.com/girardinsamuel/quarry/config"
)

// FromConfig opens every configured connection and returns a manager with
// the configured default selected.
func FromConfig(cfg *config.Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := NewManager()
	for name, conn := range cfg.Connections {
		db, err := Open(conn.Dialect, conn.DSN)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("connection %q: %w", name, err)
		}
		m.Register(name, db, conn.Dialect)
	}
	m.SetDefault(cfg.Default)
	return m, nil
}
