package grammar

import (
	"fmt"
	"strings"

	"github.com/girardinsamuel/quarry/query/ast"
)

// comparisonOperators is the allowed operator set. <> is accepted as an
// alias and normalized to !=.
var comparisonOperators = map[string]string{
	"=":  "=",
	"!=": "!=",
	"<>": "!=",
	">":  ">",
	"<":  "<",
	">=": ">=",
	"<=": "<=",
}

// state accumulates SQL text and bindings in lock-step during one
// compilation. Placeholder emission and binding append always happen
// together, so the binding list length equals the placeholder count by
// construction.
type state struct {
	g   *Grammar
	sql strings.Builder
	// bindings in placeholder order.
	bindings []interface{}
	n        int
}

func (s *state) write(text string) {
	s.sql.WriteString(text)
}

// bind appends a value and writes its placeholder.
func (s *state) bind(value interface{}) {
	s.n++
	s.bindings = append(s.bindings, value)
	s.sql.WriteString(s.g.placeholder(s.n))
}

// Compile translates a query model into placeholder SQL plus bindings.
// Compilation is pure: identical models always produce byte-identical
// output, and structural problems fail before any SQL is returned.
func (g *Grammar) Compile(q *ast.Query) (*Query, error) {
	if q.Table == "" {
		return nil, &StructuralError{Reason: "no table set before compile", Cause: ErrNoTable}
	}

	s := &state{g: g}
	statement := q.Statement
	if statement == "" {
		statement = ast.Select
	}

	if statement != ast.Select && len(q.Joins) > 0 {
		return nil, &StructuralError{Reason: fmt.Sprintf("joins are not allowed on %s statements", strings.ToUpper(string(statement)))}
	}

	var err error
	switch statement {
	case ast.Select:
		err = s.compileSelect(q)
	case ast.Insert:
		err = s.compileInsert(q)
	case ast.Update:
		err = s.compileUpdate(q)
	case ast.Delete:
		err = s.compileDelete(q)
	case ast.Increment, ast.Decrement:
		err = s.compileStep(q, statement)
	default:
		err = &StructuralError{Reason: fmt.Sprintf("unknown statement kind %q", statement)}
	}
	if err != nil {
		return nil, err
	}

	return &Query{SQL: s.sql.String(), Bindings: s.bindings}, nil
}

func (s *state) compileSelect(q *ast.Query) error {
	s.write("SELECT ")
	if q.Distinct {
		s.write("DISTINCT ")
	}

	switch {
	case q.Aggregate != nil:
		column := q.Aggregate.Column
		if column != "*" {
			column = s.g.quote(column)
		}
		alias := strings.ToLower(string(q.Aggregate.Function))
		s.write(fmt.Sprintf("%s(%s) AS %s", q.Aggregate.Function, column, s.g.quote(alias)))
	case len(q.Columns) > 0:
		for i, col := range q.Columns {
			if i > 0 {
				s.write(", ")
			}
			if col.Raw != "" {
				s.write(col.Raw)
			} else {
				s.write(s.g.quote(col.Name))
			}
		}
	default:
		s.write("*")
	}

	s.write(" FROM ")
	s.write(s.g.quote(q.Table))

	for _, join := range q.Joins {
		op, err := normalizeOperator(join.Operator)
		if err != nil {
			return err
		}
		s.write(fmt.Sprintf(" %s JOIN %s ON %s %s %s",
			join.Kind, s.g.quote(join.Table), s.g.quote(join.Left), op, s.g.quote(join.Right)))
	}

	if err := s.compileWheres(&q.Wheres); err != nil {
		return err
	}

	if len(q.Groups) > 0 {
		s.write(" GROUP BY ")
		for i, col := range q.Groups {
			if i > 0 {
				s.write(", ")
			}
			s.write(s.g.quote(col))
		}
	}

	if len(q.Havings) > 0 {
		s.write(" HAVING ")
		for i, h := range q.Havings {
			if i > 0 {
				s.write(" AND ")
			}
			s.write(s.g.quote(h.Column))
			if h.HasValue {
				op, err := normalizeOperator(h.Operator)
				if err != nil {
					return err
				}
				s.write(" " + op + " ")
				s.bind(h.Value)
			}
		}
	}

	if len(q.Orders) > 0 {
		s.write(" ORDER BY ")
		for i, o := range q.Orders {
			if i > 0 {
				s.write(", ")
			}
			direction := strings.ToUpper(o.Direction)
			if direction != "DESC" {
				direction = "ASC"
			}
			s.write(s.g.quote(o.Column) + " " + direction)
		}
	}

	s.compilePagination(q)
	return nil
}

func (s *state) compilePagination(q *ast.Query) {
	if q.Limit != nil {
		s.write(" LIMIT ")
		s.bind(*q.Limit)
	} else if q.Offset != nil && s.g.profile.OffsetNeedsLimit {
		// MySQL rejects OFFSET without LIMIT.
		s.write(" LIMIT 18446744073709551615")
	}
	if q.Offset != nil {
		s.write(" OFFSET ")
		s.bind(*q.Offset)
	}
}

func (s *state) compileInsert(q *ast.Query) error {
	if len(q.Assignments) == 0 {
		return &StructuralError{Reason: "insert requires values"}
	}
	s.write("INSERT INTO ")
	s.write(s.g.quote(q.Table))
	s.write(" (")
	for i, a := range q.Assignments {
		if i > 0 {
			s.write(", ")
		}
		s.write(s.g.quote(a.Column))
	}
	s.write(") VALUES (")
	for i, a := range q.Assignments {
		if i > 0 {
			s.write(", ")
		}
		s.bind(a.Value)
	}
	s.write(")")
	return nil
}

func (s *state) compileUpdate(q *ast.Query) error {
	if len(q.Assignments) == 0 {
		return &StructuralError{Reason: "update requires values"}
	}
	s.write("UPDATE ")
	s.write(s.g.quote(q.Table))
	s.write(" SET ")
	for i, a := range q.Assignments {
		if i > 0 {
			s.write(", ")
		}
		s.write(s.g.quote(a.Column) + " = ")
		s.bind(a.Value)
	}
	return s.compileWheres(&q.Wheres)
}

func (s *state) compileDelete(q *ast.Query) error {
	s.write("DELETE FROM ")
	s.write(s.g.quote(q.Table))
	return s.compileWheres(&q.Wheres)
}

// compileStep renders increment/decrement as an UPDATE against the column
// itself. The step is a caller-typed integer, rendered inline.
func (s *state) compileStep(q *ast.Query, statement ast.Statement) error {
	sign := "+"
	if statement == ast.Decrement {
		sign = "-"
	}
	column := s.g.quote(q.StepColumn)
	s.write("UPDATE ")
	s.write(s.g.quote(q.Table))
	s.write(fmt.Sprintf(" SET %s = %s %s %d", column, column, sign, q.Step))
	return s.compileWheres(&q.Wheres)
}

func (s *state) compileWheres(set *ast.ConditionSet) error {
	if set.IsEmpty() {
		return nil
	}
	s.write(" WHERE ")
	return s.compileConditions(set)
}

// compileConditions renders a condition set depth-first in insertion order,
// emitting each node's connector before it and appending bindings
// left-to-right.
func (s *state) compileConditions(set *ast.ConditionSet) error {
	for i, c := range set.Conditions {
		if i > 0 {
			connector := c.Connector
			if connector == "" {
				connector = ast.And
			}
			s.write(" " + string(connector) + " ")
		}
		if err := s.compileCondition(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *state) compileCondition(c ast.Condition) error {
	switch c.Type {
	case ast.TypeBasic:
		op, err := normalizeOperator(c.Operator)
		if err != nil {
			return err
		}
		s.write(s.g.quote(c.Column) + " " + op + " ")
		s.bind(c.Value)

	case ast.TypeColumn:
		op, err := normalizeOperator(c.Operator)
		if err != nil {
			return err
		}
		other, ok := c.Value.(string)
		if !ok {
			return &StructuralError{Reason: "column comparison requires a column name on the right-hand side"}
		}
		s.write(s.g.quote(c.Column) + " " + op + " " + s.g.quote(other))

	case ast.TypeNull:
		if c.Not {
			s.write(s.g.quote(c.Column) + " IS NOT NULL")
		} else {
			s.write(s.g.quote(c.Column) + " IS NULL")
		}

	case ast.TypeIn:
		if len(c.Values) == 0 {
			// IN () is not valid SQL: compile to a condition that
			// matches no rows (or, negated, every row).
			if c.Not {
				s.write("1 = 1")
			} else {
				s.write("1 = 0")
			}
			return nil
		}
		s.write(s.g.quote(c.Column))
		if c.Not {
			s.write(" NOT IN (")
		} else {
			s.write(" IN (")
		}
		for i, v := range c.Values {
			if i > 0 {
				s.write(", ")
			}
			s.bind(v)
		}
		s.write(")")

	case ast.TypeLike:
		if c.Not {
			s.write(s.g.quote(c.Column) + " NOT LIKE ")
		} else {
			s.write(s.g.quote(c.Column) + " LIKE ")
		}
		s.bind(c.Value)

	case ast.TypeBetween:
		if len(c.Values) != 2 {
			return &StructuralError{Reason: "between requires a low and a high bound"}
		}
		if c.Not {
			s.write(s.g.quote(c.Column) + " NOT BETWEEN ")
		} else {
			s.write(s.g.quote(c.Column) + " BETWEEN ")
		}
		s.bind(c.Values[0])
		s.write(" AND ")
		s.bind(c.Values[1])

	case ast.TypeRaw:
		return s.compileRaw(c)

	case ast.TypeGroup:
		s.write("(")
		if err := s.compileConditions(c.Group); err != nil {
			return err
		}
		s.write(")")

	case ast.TypeExists:
		if c.Not {
			s.write("NOT EXISTS (")
		} else {
			s.write("EXISTS (")
		}
		if c.Query == nil || c.Query.Table == "" {
			return &StructuralError{Reason: "exists requires a sub-query with a table", Cause: ErrNoTable}
		}
		if err := s.compileSelect(c.Query); err != nil {
			return err
		}
		s.write(")")

	default:
		return &StructuralError{Reason: fmt.Sprintf("unknown condition type %q", c.Type)}
	}
	return nil
}

// compileRaw splices a trusted fragment, rewriting each ? to the dialect's
// placeholder and pairing it with the next binding. The fragment's
// placeholder count must match the binding count exactly.
func (s *state) compileRaw(c ast.Condition) error {
	want := strings.Count(c.Raw, "?")
	if want != len(c.Values) {
		return &BindingError{Fragment: c.Raw, Want: want, Got: len(c.Values)}
	}
	next := 0
	for _, r := range c.Raw {
		if r == '?' {
			s.bind(c.Values[next])
			next++
			continue
		}
		s.sql.WriteRune(r)
	}
	return nil
}

func normalizeOperator(op string) (string, error) {
	normalized, ok := comparisonOperators[op]
	if !ok {
		return "", &OperatorError{Operator: op}
	}
	return normalized, nil
}
