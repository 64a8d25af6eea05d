package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/providers"
)

// countingSource tracks how many records the stream actually pulled.
type countingSource struct {
	records []core.Record
	pulled  int
}

func (s *countingSource) Next(ctx context.Context) (core.Record, bool, error) {
	if s.pulled >= len(s.records) {
		return nil, false, nil
	}
	r := s.records[s.pulled]
	s.pulled++
	return r, true, nil
}

func TestStreamLazyWithoutOrdering(t *testing.T) {
	src := &countingSource{}
	for i := 1; i <= 100; i++ {
		src.records = append(src.records, core.Record{"id": i})
	}
	p := &Provider{source: src}

	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"id","operator":">","value":0}]}],"limit":3}`)
	stream, err := p.SearchStream(context.Background(), q)
	require.NoError(t, err)
	defer stream.Close()

	out, err := providers.Drain(context.Background(), stream)
	require.NoError(t, err)
	require.Len(t, out, 3)
	// The lazy path stops pulling once the page is full.
	assert.Equal(t, 3, src.pulled)
}

func TestStreamOffsetAndLimit(t *testing.T) {
	var records []map[string]any
	for i := 1; i <= 10; i++ {
		records = append(records, map[string]any{"id": i})
	}
	p, err := New(records)
	require.NoError(t, err)

	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"id","operator":">","value":4}]}],"offset":2,"limit":2}`)
	stream, err := p.SearchStream(context.Background(), q)
	require.NoError(t, err)
	out, err := providers.Drain(context.Background(), stream)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 7, out[0]["id"])
	assert.Equal(t, 8, out[1]["id"])
}

func TestStreamWithOrderingBuffers(t *testing.T) {
	records := []map[string]any{
		{"id": 2}, {"id": 3}, {"id": 1},
	}
	p, err := New(records)
	require.NoError(t, err)

	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"id","operator":">","value":0}]}],"order_by":["id"]}`)
	stream, err := p.SearchStream(context.Background(), q)
	require.NoError(t, err)
	out, err := providers.Drain(context.Background(), stream)
	require.NoError(t, err)
	ids := []any{out[0]["id"], out[1]["id"], out[2]["id"]}
	assert.Equal(t, []any{1, 2, 3}, ids)
}

func TestStreamPropagatesEvalError(t *testing.T) {
	records := []map[string]any{{"name": "x"}}
	p, err := New(records)
	require.NoError(t, err)

	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"name","operator":"regex","value":"["}]}]}`)
	stream, err := p.SearchStream(context.Background(), q)
	require.NoError(t, err)
	defer stream.Close()

	assert.False(t, stream.Next(context.Background()))
	assert.Error(t, stream.Err())
}

func TestStreamObservesCancellation(t *testing.T) {
	ch := make(chan core.Record)
	p, err := New(ch)
	require.NoError(t, err)

	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"id","operator":">","value":0}]}]}`)
	stream, err := p.SearchStream(context.Background(), q)
	require.NoError(t, err)
	defer stream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, stream.Next(ctx))
	assert.ErrorIs(t, stream.Err(), context.Canceled)
}

func TestChannelSource(t *testing.T) {
	ch := make(chan core.Record, 3)
	ch <- core.Record{"id": 1}
	ch <- core.Record{"id": 2}
	close(ch)

	p, err := New(ch)
	require.NoError(t, err)
	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"id","operator":">","value":1}]}]}`)
	out, err := p.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestNewSourceRejectsScalars(t *testing.T) {
	_, err := New(42)
	assert.Error(t, err)
}
