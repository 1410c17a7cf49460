package hydrate_test

import (
	"testing"

	"github.com/girardinsamuel/quarry/query/builder"
	"github.com/girardinsamuel/quarry/runtime/hydrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID        int64
	Name      string
	Email     string  `db:"email_address"`
	Nickname  *string `db:"nickname"`
	CreatedAt string
	Secret    string `db:"-"`
}

func TestInto(t *testing.T) {
	row := builder.Row{
		"id":            int64(7),
		"name":          "Sam",
		"email_address": "sam@example.com",
		"nickname":      nil,
		"created_at":    "2026-01-01",
		"secret":        "should not land",
	}

	var u user
	require.NoError(t, hydrate.Into(row, &u))

	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "Sam", u.Name)
	assert.Equal(t, "sam@example.com", u.Email)
	assert.Nil(t, u.Nickname)
	assert.Equal(t, "2026-01-01", u.CreatedAt)
	assert.Empty(t, u.Secret)
}

func TestInto_ConvertsNumericWidths(t *testing.T) {
	type counter struct {
		Count int
	}
	var c counter
	require.NoError(t, hydrate.Into(builder.Row{"count": int64(42)}, &c))
	assert.Equal(t, 42, c.Count)
}

func TestInto_PointerField(t *testing.T) {
	nick := "sammy"
	var u user
	require.NoError(t, hydrate.Into(builder.Row{"nickname": nick}, &u))
	require.NotNil(t, u.Nickname)
	assert.Equal(t, "sammy", *u.Nickname)
}

func TestInto_IgnoresUnknownColumns(t *testing.T) {
	var u user
	require.NoError(t, hydrate.Into(builder.Row{"no_such_field": 1}, &u))
	assert.Zero(t, u.ID)
}

func TestInto_RejectsNonPointer(t *testing.T) {
	var u user
	assert.Error(t, hydrate.Into(builder.Row{}, u))
}

func TestInto_RejectsIncompatibleValue(t *testing.T) {
	type target struct {
		ID int
	}
	var dst target
	assert.Error(t, hydrate.Into(builder.Row{"id": "not a number"}, &dst))
}

func TestSlice(t *testing.T) {
	rows := []builder.Row{
		{"id": int64(1), "name": "a"},
		{"id": int64(2), "name": "b"},
	}

	var users []user
	require.NoError(t, hydrate.Slice(rows, &users))
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, "b", users[1].Name)
}

func TestSlice_PointerElements(t *testing.T) {
	rows := []builder.Row{{"id": int64(1), "name": "a"}}

	var users []*user
	require.NoError(t, hydrate.Slice(rows, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "a", users[0].Name)
}

func TestSlice_RejectsNonSlice(t *testing.T) {
	var u user
	assert.Error(t, hydrate.Slice(nil, &u))
}
