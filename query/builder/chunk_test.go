package builder_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/girardinsamuel/quarry/query/builder"
	"github.com/girardinsamuel/quarry/query/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedExecutor serves a fixed dataset through LIMIT/OFFSET bindings, the
// way a real connection would.
func pagedExecutor(total int) *fakeExecutor {
	dataset := make([]builder.Row, total)
	for i := range dataset {
		dataset[i] = builder.Row{"id": int64(i + 1), "name": fmt.Sprintf("user-%d", i+1)}
	}
	return &fakeExecutor{
		dialect: "postgres",
		rowsFn: func(sql string, bindings []interface{}) []builder.Row {
			limit := bindings[len(bindings)-2].(int)
			offset := bindings[len(bindings)-1].(int)
			if offset >= len(dataset) {
				return nil
			}
			end := offset + limit
			if end > len(dataset) {
				end = len(dataset)
			}
			return dataset[offset:end]
		},
	}
}

func TestChunk_UnevenBatches(t *testing.T) {
	ex := pagedExecutor(5)
	chunker, err := builder.New("items", builder.WithExecutor(ex)).Chunk(2)
	require.NoError(t, err)

	ctx := context.Background()
	var sizes []int
	for {
		batch, err := chunker.Next(ctx)
		require.NoError(t, err)
		if batch == nil {
			break
		}
		sizes = append(sizes, len(batch))
	}

	assert.Equal(t, []int{2, 2, 1}, sizes)
	// Three data pages plus the empty page that ends the sequence.
	assert.Len(t, ex.queries, 4)
	assert.Equal(t, `SELECT * FROM "items" LIMIT $1 OFFSET $2`, ex.queries[0].sql)
	assert.Equal(t, []interface{}{2, 0}, ex.queries[0].bindings)
	assert.Equal(t, []interface{}{2, 2}, ex.queries[1].bindings)
	assert.Equal(t, []interface{}{2, 4}, ex.queries[2].bindings)

	// Once exhausted, Next stays nil without issuing further queries.
	batch, err := chunker.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.Len(t, ex.queries, 4)
}

func TestChunk_ExactMultiple(t *testing.T) {
	ex := pagedExecutor(4)
	chunker, err := builder.New("items", builder.WithExecutor(ex)).Chunk(2)
	require.NoError(t, err)

	ctx := context.Background()
	count := 0
	err = chunker.Each(ctx, func(batch []builder.Row) bool {
		count += len(batch)
		return true
	})
	require.NoError(t, err)

	assert.Equal(t, 4, count)
	assert.Len(t, ex.queries, 3)
}

func TestChunk_EmptyTable(t *testing.T) {
	ex := pagedExecutor(0)
	chunker, err := builder.New("items", builder.WithExecutor(ex)).Chunk(10)
	require.NoError(t, err)

	batch, err := chunker.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.Len(t, ex.queries, 1)
}

func TestChunk_PreservesFilters(t *testing.T) {
	ex := pagedExecutor(3)
	chunker, err := builder.New("items", builder.WithExecutor(ex)).
		Where("active", true).
		OrderBy("id").
		Chunk(2)
	require.NoError(t, err)

	_, err = chunker.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, ex.queries, 1)
	assert.Equal(t,
		`SELECT * FROM "items" WHERE "active" = $1 ORDER BY "id" ASC LIMIT $2 OFFSET $3`,
		ex.queries[0].sql)
	assert.Equal(t, []interface{}{true, 2, 0}, ex.queries[0].bindings)
}

func TestChunk_EachStopsEarly(t *testing.T) {
	ex := pagedExecutor(10)
	chunker, err := builder.New("items", builder.WithExecutor(ex)).Chunk(2)
	require.NoError(t, err)

	err = chunker.Each(context.Background(), func(batch []builder.Row) bool {
		return false
	})
	require.NoError(t, err)
	assert.Len(t, ex.queries, 1)
}

func TestChunk_Validation(t *testing.T) {
	ex := &fakeExecutor{dialect: "postgres"}

	t.Run("non-positive size", func(t *testing.T) {
		_, err := builder.New("items", builder.WithExecutor(ex)).Chunk(0)
		require.Error(t, err)
		assert.True(t, grammar.IsStructural(err))
	})

	t.Run("pre-paginated builder", func(t *testing.T) {
		_, err := builder.New("items", builder.WithExecutor(ex)).Limit(10).Chunk(2)
		require.Error(t, err)
		assert.True(t, grammar.IsStructural(err))
	})

	t.Run("mutation statement", func(t *testing.T) {
		_, err := builder.New("items", builder.WithExecutor(ex)).Delete().Chunk(2)
		require.Error(t, err)
		assert.True(t, grammar.IsStructural(err))
	})

	t.Run("no executor", func(t *testing.T) {
		_, err := builder.New("items").Chunk(2)
		assert.ErrorIs(t, err, builder.ErrNoExecutor)
	})
}
