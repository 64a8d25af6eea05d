package memory

import (
	"context"
	"fmt"

	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/providers"
)

// Source yields records one at a time. The second return is false at
// exhaustion. Sources wrap synchronous collections as well as async
// producers (channels, streams); Next observes ctx cancellation.
type Source interface {
	Next(ctx context.Context) (core.Record, bool, error)
}

// NewSource adapts a host value into a Source. Accepted shapes: a
// single record or map, slices of either, a []any of record-shaped
// elements, receive channels, a pull function, or a providers.Stream.
func NewSource(src any) (Source, error) {
	switch t := src.(type) {
	case Source:
		return t, nil
	case core.Record:
		return &sliceSource{records: []core.Record{t}}, nil
	case map[string]any:
		return &sliceSource{records: []core.Record{core.Record(t)}}, nil
	case []core.Record:
		return &sliceSource{records: t}, nil
	case []map[string]any:
		records := make([]core.Record, len(t))
		for i, m := range t {
			records[i] = core.Record(m)
		}
		return &sliceSource{records: records}, nil
	case []any:
		records := make([]core.Record, len(t))
		for i, e := range t {
			r, err := toRecord(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			records[i] = r
		}
		return &sliceSource{records: records}, nil
	case <-chan core.Record:
		return &chanSource{ch: t}, nil
	case chan core.Record:
		return &chanSource{ch: t}, nil
	case func(ctx context.Context) (core.Record, bool, error):
		return funcSource(t), nil
	case providers.Stream:
		return &streamSource{stream: t}, nil
	}
	return nil, fmt.Errorf("cannot iterate source of type %T", src)
}

func toRecord(e any) (core.Record, error) {
	switch t := e.(type) {
	case core.Record:
		return t, nil
	case map[string]any:
		return core.Record(t), nil
	}
	return nil, fmt.Errorf("record must be a map, got %T", e)
}

type sliceSource struct {
	records []core.Record
	pos     int
}

func (s *sliceSource) Next(ctx context.Context) (core.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.pos >= len(s.records) {
		return nil, false, nil
	}
	r := s.records[s.pos]
	s.pos++
	return r, true, nil
}

type chanSource struct {
	ch <-chan core.Record
}

func (s *chanSource) Next(ctx context.Context) (core.Record, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case r, ok := <-s.ch:
		if !ok {
			return nil, false, nil
		}
		return r, true, nil
	}
}

type funcSource func(ctx context.Context) (core.Record, bool, error)

func (f funcSource) Next(ctx context.Context) (core.Record, bool, error) { return f(ctx) }

type streamSource struct {
	stream providers.Stream
}

func (s *streamSource) Next(ctx context.Context) (core.Record, bool, error) {
	if s.stream.Next(ctx) {
		return s.stream.Record(), true, nil
	}
	if err := s.stream.Err(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}
