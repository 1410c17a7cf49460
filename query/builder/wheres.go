package builder

import (
	"github.com/girardinsamuel/quarry/query/ast"
	"github.com/girardinsamuel/quarry/query/grammar"
)

// add appends a condition to the root set. No value is ever rendered into
// text here; everything stays structured until compilation.
func (b *Builder) add(c ast.Condition) *Builder {
	b.touch()
	b.query.Wheres.Add(c)
	return b
}

// basic resolves the two-argument (value) and three-argument
// (operator, value) shapes shared by Where and OrWhere.
func (b *Builder) basic(connector ast.Connector, column string, args []interface{}) *Builder {
	c := ast.Condition{Type: ast.TypeBasic, Connector: connector, Column: column}
	switch len(args) {
	case 1:
		c.Operator, c.Value = "=", args[0]
	case 2:
		op, ok := args[0].(string)
		if !ok {
			b.fail(&grammar.StructuralError{Reason: "where operator must be a string"})
			return b
		}
		c.Operator, c.Value = op, args[1]
	default:
		b.fail(&grammar.StructuralError{Reason: "where takes a value or an operator and a value"})
		return b
	}
	return b.add(c)
}

// Where appends a comparison joined with AND: Where("age", 18) for
// equality, Where("age", ">=", 18) for an explicit operator.
func (b *Builder) Where(column string, args ...interface{}) *Builder {
	return b.basic(ast.And, column, args)
}

// OrWhere appends a comparison joined with OR.
func (b *Builder) OrWhere(column string, args ...interface{}) *Builder {
	return b.basic(ast.Or, column, args)
}

// WhereAll appends one AND equality per pair, in the pairs' order. It is
// the ordered replacement for dictionary-shaped filters: binding order is
// observable, so the payload records insertion order explicitly.
func (b *Builder) WhereAll(values ast.Values) *Builder {
	for _, pair := range values {
		b.Where(pair.Column, pair.Value)
	}
	return b
}

// WhereColumn compares two columns: WhereColumn("a", "b") for equality,
// WhereColumn("a", ">", "b") for an explicit operator.
func (b *Builder) WhereColumn(first string, args ...string) *Builder {
	c := ast.Condition{Type: ast.TypeColumn, Connector: ast.And, Column: first}
	switch len(args) {
	case 1:
		c.Operator, c.Value = "=", args[0]
	case 2:
		c.Operator, c.Value = args[0], args[1]
	default:
		b.fail(&grammar.StructuralError{Reason: "where-column takes another column or an operator and a column"})
		return b
	}
	return b.add(c)
}

// group runs fn against a fresh child builder scoped to the same table and
// appends the child's condition set as a parenthesized group.
func (b *Builder) group(connector ast.Connector, fn func(*Builder)) *Builder {
	child := b.child()
	fn(child)
	if child.err != nil {
		b.fail(child.err)
		return b
	}
	if child.query.Wheres.IsEmpty() {
		return b
	}
	set := child.query.Wheres
	return b.add(ast.Condition{Type: ast.TypeGroup, Connector: connector, Group: &set})
}

// WhereGroup composes a nested condition group joined with AND. The
// callback receives a fresh builder pre-scoped to the parent's table.
func (b *Builder) WhereGroup(fn func(*Builder)) *Builder {
	return b.group(ast.And, fn)
}

// OrWhereGroup composes a nested condition group joined with OR.
func (b *Builder) OrWhereGroup(fn func(*Builder)) *Builder {
	return b.group(ast.Or, fn)
}

// WhereNull appends an IS NULL check.
func (b *Builder) WhereNull(column string) *Builder {
	return b.add(ast.Condition{Type: ast.TypeNull, Connector: ast.And, Column: column})
}

// WhereNotNull appends an IS NOT NULL check.
func (b *Builder) WhereNotNull(column string) *Builder {
	return b.add(ast.Condition{Type: ast.TypeNull, Connector: ast.And, Column: column, Not: true})
}

// WhereIn appends a set membership check. An empty set compiles to a
// never-matching condition, not invalid SQL.
func (b *Builder) WhereIn(column string, values []interface{}) *Builder {
	return b.add(ast.Condition{Type: ast.TypeIn, Connector: ast.And, Column: column, Values: values})
}

// WhereNotIn appends a negated set membership check.
func (b *Builder) WhereNotIn(column string, values []interface{}) *Builder {
	return b.add(ast.Condition{Type: ast.TypeIn, Connector: ast.And, Column: column, Values: values, Not: true})
}

// WhereLike appends a pattern match.
func (b *Builder) WhereLike(column, pattern string) *Builder {
	return b.add(ast.Condition{Type: ast.TypeLike, Connector: ast.And, Column: column, Value: pattern})
}

// WhereNotLike appends a negated pattern match.
func (b *Builder) WhereNotLike(column, pattern string) *Builder {
	return b.add(ast.Condition{Type: ast.TypeLike, Connector: ast.And, Column: column, Value: pattern, Not: true})
}

// WhereBetween appends a range check over [low, high].
func (b *Builder) WhereBetween(column string, low, high interface{}) *Builder {
	return b.add(ast.Condition{Type: ast.TypeBetween, Connector: ast.And, Column: column, Values: []interface{}{low, high}})
}

// WhereNotBetween appends a negated range check.
func (b *Builder) WhereNotBetween(column string, low, high interface{}) *Builder {
	return b.add(ast.Condition{Type: ast.TypeBetween, Connector: ast.And, Column: column, Values: []interface{}{low, high}, Not: true})
}

// WhereRaw splices a trusted SQL fragment. Bindings pair positionally with
// the fragment's placeholders; the counts must match or compilation fails.
func (b *Builder) WhereRaw(sql string, bindings ...interface{}) *Builder {
	return b.add(ast.Condition{Type: ast.TypeRaw, Connector: ast.And, Raw: sql, Values: bindings})
}

// WhereExists appends an EXISTS check against the given sub-query.
func (b *Builder) WhereExists(sub *Builder) *Builder {
	if sub.err != nil {
		b.fail(sub.err)
		return b
	}
	return b.add(ast.Condition{Type: ast.TypeExists, Connector: ast.And, Query: sub.query})
}

// WhereNotExists appends a NOT EXISTS check against the given sub-query.
func (b *Builder) WhereNotExists(sub *Builder) *Builder {
	if sub.err != nil {
		b.fail(sub.err)
		return b
	}
	return b.add(ast.Condition{Type: ast.TypeExists, Connector: ast.And, Query: sub.query, Not: true})
}

// WhereHas appends an EXISTS check against a related table, composed by the
// callback on a fresh builder scoped to that table.
func (b *Builder) WhereHas(table string, fn func(*Builder)) *Builder {
	sub := b.child().Table(table)
	fn(sub)
	return b.WhereExists(sub)
}
