// Package builder provides the fluent query construction surface. A Builder
// owns one query model, mutates it through chained calls and compiles it
// through the dialect grammars; execution is delegated to an injected
// Executor.
//
// A Builder is not safe for concurrent mutation: use one builder per
// logical call chain, or Clone for sharing across call sites.
package builder

import (
	"context"
	"fmt"

	"github.com/girardinsamuel/quarry/query/ast"
	"github.com/girardinsamuel/quarry/query/grammar"
)

// DefaultDialect is used when no executor is attached and no dialect was
// chosen explicitly, so that ToSQL/ToQmark work offline.
const DefaultDialect = "postgres"

// Builder accumulates one statement. Every fluent call mutates the builder
// and returns it; misuse (limit set twice, joins on a mutation) is recorded
// and surfaced when the query is compiled.
type Builder struct {
	query    *ast.Query
	executor Executor
	dialect  string

	err       error
	modified  bool
	limitSet  bool
	offsetSet bool
}

// Option configures a Builder at construction time.
type Option func(*Builder)

// WithExecutor attaches the execution collaborator.
func WithExecutor(ex Executor) Option {
	return func(b *Builder) { b.executor = ex }
}

// WithDialect fixes the compilation dialect. Without an executor it
// defaults to DefaultDialect; with one, the executor's dialect wins.
func WithDialect(dialect string) Option {
	return func(b *Builder) { b.dialect = dialect }
}

// New creates a builder for a table.
func New(table string, opts ...Option) *Builder {
	b := &Builder{
		query:   &ast.Query{Table: table, Statement: ast.Select},
		dialect: DefaultDialect,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// child returns a fresh builder pre-scoped to the parent's table, used for
// callback-composed groups.
func (b *Builder) child() *Builder {
	return &Builder{
		query:    &ast.Query{Table: b.query.Table, Connection: b.query.Connection, Statement: ast.Select},
		executor: b.executor,
		dialect:  b.dialect,
	}
}

// fail records the first structural misuse; later compilation surfaces it.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// touch marks the builder as carrying chained modifications (see All).
func (b *Builder) touch() {
	b.modified = true
}

// Query exposes the underlying model read-only, for inspection in tests.
func (b *Builder) Query() *ast.Query {
	return b.query
}

// Table sets the target table. Last call wins.
func (b *Builder) Table(name string) *Builder {
	b.query.Table = name
	return b
}

// On selects the logical connection the executor should resolve.
func (b *Builder) On(connection string) *Builder {
	b.query.Connection = connection
	return b
}

// Select replaces the select list with plain columns.
func (b *Builder) Select(columns ...string) *Builder {
	b.touch()
	b.query.Columns = nil
	for _, c := range columns {
		b.query.Columns = append(b.query.Columns, ast.Column{Name: c})
	}
	return b
}

// SelectRaw appends a raw expression to the select list.
func (b *Builder) SelectRaw(expr string) *Builder {
	b.touch()
	b.query.Columns = append(b.query.Columns, ast.Column{Raw: expr})
	return b
}

// Distinct flags the select list as DISTINCT.
func (b *Builder) Distinct() *Builder {
	b.touch()
	b.query.Distinct = true
	return b
}

// When invokes fn with the builder itself if condition holds; otherwise it
// is a no-op. Control-flow sugar only.
func (b *Builder) When(condition bool, fn func(*Builder)) *Builder {
	if condition {
		fn(b)
	}
	return b
}

// Join appends an INNER JOIN.
func (b *Builder) Join(table, left, operator, right string) *Builder {
	return b.join(table, left, operator, right, ast.InnerJoin)
}

// LeftJoin appends a LEFT JOIN.
func (b *Builder) LeftJoin(table, left, operator, right string) *Builder {
	return b.join(table, left, operator, right, ast.LeftJoin)
}

// RightJoin appends a RIGHT JOIN.
func (b *Builder) RightJoin(table, left, operator, right string) *Builder {
	return b.join(table, left, operator, right, ast.RightJoin)
}

func (b *Builder) join(table, left, operator, right string, kind ast.JoinKind) *Builder {
	b.touch()
	b.query.Joins = append(b.query.Joins, ast.Join{
		Table: table, Left: left, Operator: operator, Right: right, Kind: kind,
	})
	return b
}

// GroupBy appends grouping columns.
func (b *Builder) GroupBy(columns ...string) *Builder {
	b.touch()
	b.query.Groups = append(b.query.Groups, columns...)
	return b
}

// Having appends a HAVING entry: Having("total") for a bare column,
// Having("total", v) for equality, Having("total", ">=", v) for an explicit
// operator.
func (b *Builder) Having(column string, args ...interface{}) *Builder {
	b.touch()
	h := ast.Having{Column: column}
	switch len(args) {
	case 0:
	case 1:
		h.Operator, h.Value, h.HasValue = "=", args[0], true
	case 2:
		op, ok := args[0].(string)
		if !ok {
			b.fail(&grammar.StructuralError{Reason: "having operator must be a string"})
			return b
		}
		h.Operator, h.Value, h.HasValue = op, args[1], true
	default:
		b.fail(&grammar.StructuralError{Reason: "having takes a column, an optional operator and an optional threshold"})
		return b
	}
	b.query.Havings = append(b.query.Havings, h)
	return b
}

// OrderBy appends an ORDER BY entry. Direction defaults to ASC.
func (b *Builder) OrderBy(column string, direction ...string) *Builder {
	b.touch()
	o := ast.Order{Column: column, Direction: "ASC"}
	if len(direction) > 0 {
		o.Direction = direction[0]
	}
	b.query.Orders = append(b.query.Orders, o)
	return b
}

// Limit sets the row limit. Setting it twice is a structural error.
func (b *Builder) Limit(n int) *Builder {
	b.touch()
	if b.limitSet {
		b.fail(&grammar.StructuralError{Reason: "limit set more than once"})
		return b
	}
	if n < 0 {
		b.fail(&grammar.StructuralError{Reason: "limit must not be negative"})
		return b
	}
	b.limitSet = true
	b.query.Limit = &n
	return b
}

// Offset sets the row offset. Setting it twice is a structural error.
func (b *Builder) Offset(n int) *Builder {
	b.touch()
	if b.offsetSet {
		b.fail(&grammar.StructuralError{Reason: "offset set more than once"})
		return b
	}
	if n < 0 {
		b.fail(&grammar.StructuralError{Reason: "offset must not be negative"})
		return b
	}
	b.offsetSet = true
	b.query.Offset = &n
	return b
}

// Aggregate sets an aggregate directive for the select list.
func (b *Builder) Aggregate(fn ast.AggregateFunc, column string) *Builder {
	b.touch()
	b.query.Aggregate = &ast.Aggregate{Function: fn, Column: column}
	return b
}

// Sum aggregates the column with SUM.
func (b *Builder) Sum(column string) *Builder { return b.Aggregate(ast.Sum, column) }

// Avg aggregates the column with AVG.
func (b *Builder) Avg(column string) *Builder { return b.Aggregate(ast.Avg, column) }

// Count aggregates the column with COUNT.
func (b *Builder) Count(column string) *Builder { return b.Aggregate(ast.Count, column) }

// Max aggregates the column with MAX.
func (b *Builder) Max(column string) *Builder { return b.Aggregate(ast.Max, column) }

// Min aggregates the column with MIN.
func (b *Builder) Min(column string) *Builder { return b.Aggregate(ast.Min, column) }

// Create turns the statement into an INSERT of the given ordered values.
func (b *Builder) Create(values ast.Values) *Builder {
	b.query.Statement = ast.Insert
	b.query.Assignments = values
	return b
}

// Update turns the statement into an UPDATE of the given ordered values.
func (b *Builder) Update(values ast.Values) *Builder {
	b.query.Statement = ast.Update
	b.query.Assignments = values
	return b
}

// Delete turns the statement into a DELETE.
func (b *Builder) Delete() *Builder {
	b.query.Statement = ast.Delete
	return b
}

// Increment compiles to SET column = column + step (default 1).
func (b *Builder) Increment(column string, step ...int) *Builder {
	return b.step(ast.Increment, column, step)
}

// Decrement compiles to SET column = column - step (default 1).
func (b *Builder) Decrement(column string, step ...int) *Builder {
	return b.step(ast.Decrement, column, step)
}

func (b *Builder) step(kind ast.Statement, column string, step []int) *Builder {
	n := 1
	if len(step) > 0 {
		n = step[0]
	}
	b.query.Statement = kind
	b.query.StepColumn = column
	b.query.Step = n
	return b
}

// Clone returns an independent builder wrapping a copied query model, for
// call sites that need to branch a shared base query.
func (b *Builder) Clone() *Builder {
	q := b.query.Clone()
	q.Columns = append([]ast.Column(nil), b.query.Columns...)
	q.Joins = append([]ast.Join(nil), b.query.Joins...)
	q.Groups = append([]string(nil), b.query.Groups...)
	q.Havings = append([]ast.Having(nil), b.query.Havings...)
	q.Orders = append([]ast.Order(nil), b.query.Orders...)
	q.Assignments = append(ast.Values(nil), b.query.Assignments...)
	q.Wheres = ast.ConditionSet{Conditions: append([]ast.Condition(nil), b.query.Wheres.Conditions...)}
	return &Builder{
		query:     q,
		executor:  b.executor,
		dialect:   b.dialect,
		err:       b.err,
		modified:  b.modified,
		limitSet:  b.limitSet,
		offsetSet: b.offsetSet,
	}
}

// grammarFor resolves the grammar to compile with: the executor's dialect
// for the selected connection when available, the configured fallback
// otherwise.
func (b *Builder) grammarFor() (*grammar.Grammar, error) {
	dialect := b.dialect
	if b.executor != nil {
		d, err := b.executor.Dialect(b.query.Connection)
		if err != nil {
			return nil, err
		}
		if d != "" {
			dialect = d
		}
	}
	return grammar.New(dialect)
}

// ToQmark compiles to placeholder SQL plus ordered bindings: the only form
// an executor should receive.
func (b *Builder) ToQmark() (*grammar.Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	g, err := b.grammarFor()
	if err != nil {
		return nil, err
	}
	return g.Compile(b.query)
}

// ToSQL compiles with values inlined as quoted literals, for diagnostics
// only. Never hand this form to a connection.
func (b *Builder) ToSQL() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	g, err := b.grammarFor()
	if err != nil {
		return "", err
	}
	return g.CompileDebug(b.query)
}

// Get executes the select and returns all rows.
func (b *Builder) Get(ctx context.Context) ([]Row, error) {
	if b.query.Statement != ast.Select && b.query.Statement != "" {
		return nil, &grammar.StructuralError{Reason: fmt.Sprintf("get() requires a select statement, have %s", b.query.Statement)}
	}
	compiled, err := b.ToQmark()
	if err != nil {
		return nil, err
	}
	if b.executor == nil {
		return nil, ErrNoExecutor
	}
	return b.executor.Query(ctx, b.query.Connection, compiled.SQL, compiled.Bindings)
}

// All executes a plain select of the whole table. A builder that already
// carries chained modifications must use Get instead; accepting them here
// would silently execute a filtered query behind an "all records" call.
func (b *Builder) All(ctx context.Context) ([]Row, error) {
	if b.modified {
		return nil, &grammar.StructuralError{Reason: "all() called on a modified builder; use get()"}
	}
	return b.Get(ctx)
}

// First executes the select limited to one row. It returns a nil row, not
// an error, when nothing matches.
func (b *Builder) First(ctx context.Context) (Row, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.executor == nil {
		return nil, ErrNoExecutor
	}
	q := b.query.Clone()
	one := 1
	q.Limit = &one
	g, err := b.grammarFor()
	if err != nil {
		return nil, err
	}
	compiled, err := g.Compile(q)
	if err != nil {
		return nil, err
	}
	rows, err := b.executor.Query(ctx, q.Connection, compiled.SQL, compiled.Bindings)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Exec executes a mutation statement and returns the affected-row count.
func (b *Builder) Exec(ctx context.Context) (int64, error) {
	switch b.query.Statement {
	case ast.Insert, ast.Update, ast.Delete, ast.Increment, ast.Decrement:
	default:
		return 0, &grammar.StructuralError{Reason: fmt.Sprintf("exec() requires a mutation statement, have %s", b.query.Statement)}
	}
	compiled, err := b.ToQmark()
	if err != nil {
		return 0, err
	}
	if b.executor == nil {
		return 0, ErrNoExecutor
	}
	return b.executor.Exec(ctx, b.query.Connection, compiled.SQL, compiled.Bindings)
}
