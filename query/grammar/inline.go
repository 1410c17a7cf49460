package grammar

import (
	"fmt"
	"strings"

	"github.com/girardinsamuel/quarry/query/ast"
)

// CompileDebug renders the query with its values inlined as quoted
// literals. The output is for diagnostics only; it is never safe to hand to
// a connection. It is derived from the qmark form by positional
// substitution, so both forms always agree on values.
func (g *Grammar) CompileDebug(q *ast.Query) (string, error) {
	compiled, err := g.Compile(q)
	if err != nil {
		return "", err
	}
	return g.inline(compiled), nil
}

// inline substitutes each placeholder of the qmark SQL with the literal
// rendering of its binding.
func (g *Grammar) inline(q *Query) string {
	if g.profile.Numbered {
		return g.inlineNumbered(q)
	}

	var out strings.Builder
	next := 0
	for _, r := range q.SQL {
		if r == '?' && next < len(q.Bindings) {
			out.WriteString(g.literal(q.Bindings[next]))
			next++
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

func (g *Grammar) inlineNumbered(q *Query) string {
	var out strings.Builder
	sql := q.SQL
	for i := 0; i < len(sql); i++ {
		if sql[i] != '$' || i+1 >= len(sql) || !isDigit(sql[i+1]) {
			out.WriteByte(sql[i])
			continue
		}
		n := 0
		j := i + 1
		for j < len(sql) && isDigit(sql[j]) {
			n = n*10 + int(sql[j]-'0')
			j++
		}
		if n >= 1 && n <= len(q.Bindings) {
			out.WriteString(g.literal(q.Bindings[n-1]))
		} else {
			out.WriteString(sql[i:j])
		}
		i = j - 1
	}
	return out.String()
}

// literal renders a binding as a SQL literal. Strings are single-quoted
// with embedded quotes doubled; booleans use the dialect's literals.
func (g *Grammar) literal(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return g.profile.True
		}
		return g.profile.False
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", v)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", v), "'", "''") + "'"
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
