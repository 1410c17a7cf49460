package builder

import (
	"context"

	"github.com/girardinsamuel/quarry/query/ast"
	"github.com/girardinsamuel/quarry/query/grammar"
)

// Chunker iterates a select in fixed-size pages. It is pull-based: each
// Next compiles and runs exactly one LIMIT/OFFSET query, so stopping early
// never leaves an unissued query in flight, and cancellation is a matter of
// not calling Next again. A Chunker is not restartable; construct a new one
// to iterate again.
type Chunker struct {
	builder *Builder
	size    int
	cursor  int
	done    bool
}

// Chunk returns a page iterator over the builder's select. The iterator
// owns pagination: a builder that already set limit or offset cannot be
// chunked.
func (b *Builder) Chunk(size int) (*Chunker, error) {
	if b.err != nil {
		return nil, b.err
	}
	if size <= 0 {
		return nil, &grammar.StructuralError{Reason: "chunk size must be positive"}
	}
	if b.query.Statement != ast.Select && b.query.Statement != "" {
		return nil, &grammar.StructuralError{Reason: "chunk() requires a select statement"}
	}
	if b.limitSet || b.offsetSet {
		return nil, &grammar.StructuralError{Reason: "chunk() owns pagination; remove limit/offset"}
	}
	if b.executor == nil {
		return nil, ErrNoExecutor
	}
	return &Chunker{builder: b, size: size}, nil
}

// Next returns the next batch of rows, or (nil, nil) once the sequence is
// exhausted. The sequence terminates after the first empty batch.
func (c *Chunker) Next(ctx context.Context) ([]Row, error) {
	if c.done {
		return nil, nil
	}

	q := c.builder.query.Clone()
	limit := c.size
	offset := c.cursor
	q.Limit = &limit
	q.Offset = &offset

	g, err := c.builder.grammarFor()
	if err != nil {
		return nil, err
	}
	compiled, err := g.Compile(q)
	if err != nil {
		return nil, err
	}

	rows, err := c.builder.executor.Query(ctx, q.Connection, compiled.SQL, compiled.Bindings)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		c.done = true
		return nil, nil
	}
	c.cursor += c.size
	return rows, nil
}

// Each drains the iterator, invoking fn per batch. fn returning false stops
// the iteration early.
func (c *Chunker) Each(ctx context.Context, fn func(batch []Row) bool) error {
	for {
		batch, err := c.Next(ctx)
		if err != nil {
			return err
		}
		if batch == nil {
			return nil
		}
		if !fn(batch) {
			return nil
		}
	}
}
