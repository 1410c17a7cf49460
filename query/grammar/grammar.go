// Package grammar compiles a query model into dialect-correct SQL text
// paired with an ordered binding list. One grammar exists per dialect; all
// grammars share a single traversal and differ only in lexical rules.
package grammar

import (
	"fmt"
	"strings"
	"sync"
)

// Query is the compiled artifact: placeholder SQL plus its bindings, in
// placeholder order. The qmark form is the only one safe to hand to a
// connection.
type Query struct {
	SQL      string
	Bindings []interface{}
}

// Profile holds the lexical rules that distinguish one dialect from another.
type Profile struct {
	// QuoteOpen and QuoteClose wrap identifiers.
	QuoteOpen  string
	QuoteClose string
	// Numbered selects $n placeholders instead of positional ?.
	Numbered bool
	// True and False are the boolean literals used by the debug form.
	True  string
	False string
	// OffsetNeedsLimit forces a LIMIT clause when only OFFSET is set
	// (MySQL rejects a bare OFFSET).
	OffsetNeedsLimit bool
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Profile{}
)

// Register makes a dialect profile available to New under the given names.
func Register(profile Profile, names ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, name := range names {
		registry[name] = profile
	}
}

func init() {
	Register(Profile{
		QuoteOpen:  `"`,
		QuoteClose: `"`,
		Numbered:   true,
		True:       "TRUE",
		False:      "FALSE",
	}, "postgres", "postgresql")

	Register(Profile{
		QuoteOpen:        "`",
		QuoteClose:       "`",
		True:             "1",
		False:            "0",
		OffsetNeedsLimit: true,
	}, "mysql", "mariadb")

	Register(Profile{
		QuoteOpen:  `"`,
		QuoteClose: `"`,
		True:       "1",
		False:      "0",
	}, "sqlite", "sqlite3")
}

// Grammar compiles query models for one dialect.
type Grammar struct {
	dialect string
	profile Profile
}

// New returns the grammar registered for the dialect, or a DialectError.
func New(dialect string) (*Grammar, error) {
	registryMu.RLock()
	profile, ok := registry[dialect]
	registryMu.RUnlock()
	if !ok {
		return nil, &DialectError{Dialect: dialect}
	}
	return &Grammar{dialect: dialect, profile: profile}, nil
}

// Dialect returns the name the grammar was created under.
func (g *Grammar) Dialect() string {
	return g.dialect
}

// quote quotes an identifier, preserving dotted qualification and the
// wildcard: users.id becomes "users"."id", * stays bare.
func (g *Grammar) quote(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		parts[i] = g.profile.QuoteOpen + p + g.profile.QuoteClose
	}
	return strings.Join(parts, ".")
}

// placeholder renders the n-th placeholder (1-based).
func (g *Grammar) placeholder(n int) string {
	if g.profile.Numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
