package ast_test

import (
	"testing"

	"github.com/girardinsamuel/quarry/query/ast"
	"github.com/stretchr/testify/assert"
)

func TestConditionSet(t *testing.T) {
	var set ast.ConditionSet
	assert.True(t, set.IsEmpty())

	set.Add(ast.Condition{Type: ast.TypeBasic, Column: "a", Operator: "=", Value: 1})
	set.Add(ast.Condition{Type: ast.TypeNull, Connector: ast.Or, Column: "b"})

	assert.False(t, set.IsEmpty())
	assert.Len(t, set.Conditions, 2)
	assert.Equal(t, "a", set.Conditions[0].Column)
	assert.Equal(t, ast.Or, set.Conditions[1].Connector)
}

func TestQueryClone_RepaginatesIndependently(t *testing.T) {
	limit := 10
	q := &ast.Query{Table: "users", Limit: &limit}

	c := q.Clone()
	twenty := 20
	c.Limit = &twenty
	five := 5
	c.Offset = &five

	assert.Equal(t, 10, *q.Limit)
	assert.Nil(t, q.Offset)
	assert.Equal(t, 20, *c.Limit)
}
