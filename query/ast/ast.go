// Package ast defines the query model and the condition tree the fluent
// builder mutates and the grammar compiler consumes.
package ast

// Statement identifies the kind of statement a Query compiles to.
type Statement string

const (
	Select    Statement = "Select"
	Insert    Statement = "Insert"
	Update    Statement = "Update"
	Delete    Statement = "Delete"
	Increment Statement = "Increment"
	Decrement Statement = "Decrement"
)

// Connector joins a condition to the condition on its left.
type Connector string

const (
	And Connector = "AND"
	Or  Connector = "OR"
)

// ConditionType tags the variant of a condition node.
type ConditionType string

const (
	// TypeBasic is a column/operator/value comparison.
	TypeBasic ConditionType = "Basic"
	// TypeColumn compares two columns instead of a column and a value.
	TypeColumn ConditionType = "Column"
	// TypeNull is an IS [NOT] NULL check.
	TypeNull ConditionType = "Null"
	// TypeIn is a set membership check.
	TypeIn ConditionType = "In"
	// TypeLike is a pattern match.
	TypeLike ConditionType = "Like"
	// TypeBetween is a range check with a low and high bound.
	TypeBetween ConditionType = "Between"
	// TypeRaw is a trusted SQL fragment with pre-ordered bindings.
	TypeRaw ConditionType = "Raw"
	// TypeGroup is a nested condition set, rendered parenthesized.
	TypeGroup ConditionType = "Group"
	// TypeExists is a sub-query membership check.
	TypeExists ConditionType = "Exists"
)

// Condition is one node of the condition tree. Which fields are meaningful
// depends on Type; Connector always joins the node to its left sibling and
// is ignored on the first node of a set.
type Condition struct {
	Type      ConditionType
	Connector Connector
	Not       bool

	Column   string
	Operator string
	Value    interface{}

	// Values carries In members, the Between bounds (low, high), or Raw
	// bindings.
	Values []interface{}

	// Raw is the SQL fragment for TypeRaw.
	Raw string

	// Group is the nested set for TypeGroup.
	Group *ConditionSet

	// Query is the sub-query for TypeExists.
	Query *Query
}

// ConditionSet is an ordered list of conditions. Traversal order equals
// insertion order and is the sole determinant of binding order.
type ConditionSet struct {
	Conditions []Condition
}

// Add appends a condition to the set.
func (s *ConditionSet) Add(c Condition) {
	s.Conditions = append(s.Conditions, c)
}

// IsEmpty reports whether the set holds no conditions.
func (s *ConditionSet) IsEmpty() bool {
	return len(s.Conditions) == 0
}

// JoinKind identifies the join variant.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER"
	LeftJoin  JoinKind = "LEFT"
	RightJoin JoinKind = "RIGHT"
)

// Join is one JOIN clause entry.
type Join struct {
	Table    string
	Left     string
	Operator string
	Right    string
	Kind     JoinKind
}

// Column is one select-list entry: a plain column name, or a raw expression
// when Raw is non-empty.
type Column struct {
	Name string
	Raw  string
}

// Order is one ORDER BY entry.
type Order struct {
	Column    string
	Direction string // "ASC" or "DESC"
}

// Having pairs a column with an optional comparison threshold.
type Having struct {
	Column   string
	Operator string
	Value    interface{}
	HasValue bool
}

// AggregateFunc is a column-reducing function applied in the select list.
type AggregateFunc string

const (
	Sum   AggregateFunc = "SUM"
	Avg   AggregateFunc = "AVG"
	Count AggregateFunc = "COUNT"
	Max   AggregateFunc = "MAX"
	Min   AggregateFunc = "MIN"
)

// Aggregate is an aggregate directive for the select list.
type Aggregate struct {
	Function AggregateFunc
	Column   string
}

// Assignment is one column/value pair.
type Assignment struct {
	Column string
	Value  interface{}
}

// Values is an ordered sequence of assignments. It replaces unordered maps
// for insert/update payloads and multi-condition where sugar: binding order
// is observable, so the payload type must record insertion order.
type Values []Assignment

// Query is the mutable representation of one statement. It is owned by the
// builder mutating it and read by the grammar compiler; it is not shared
// across unrelated statements.
type Query struct {
	Table      string
	Connection string

	Columns  []Column
	Distinct bool

	Wheres ConditionSet
	Joins  []Join

	Groups  []string
	Havings []Having
	Orders  []Order

	Limit  *int
	Offset *int

	Aggregate *Aggregate

	Statement Statement

	// Assignments is the insert/update payload, in insertion order.
	Assignments Values

	// StepColumn and Step carry the increment/decrement payload.
	StepColumn string
	Step       int
}

// Clone returns a copy of the query that can be repaginated without
// touching the original. The condition tree and clause slices are shared:
// consumers treat them as read-only once compilation begins.
func (q *Query) Clone() *Query {
	c := *q
	if q.Limit != nil {
		n := *q.Limit
		c.Limit = &n
	}
	if q.Offset != nil {
		n := *q.Offset
		c.Offset = &n
	}
	return &c
}
