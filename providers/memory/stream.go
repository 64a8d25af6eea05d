package memory

import (
	"context"

	"github.com/oxhq/searchq/core"
)

// lazyStream applies filter and paging record by record. Memory stays
// O(1) in result count: nothing is buffered.
type lazyStream struct {
	source Source
	state  *evalState
	query  *core.Query
	skip   int
	remain int // -1 means unbounded

	cur  core.Record
	err  error
	done bool
}

func (s *lazyStream) Next(ctx context.Context) bool {
	if s.done || s.err != nil {
		return false
	}
	if s.remain == 0 {
		s.done = true
		return false
	}
	for {
		rec, ok, err := s.source.Next(ctx)
		if err != nil {
			s.err = err
			return false
		}
		if !ok {
			s.done = true
			return false
		}
		hit, err := s.state.evalQuery(s.query, rec)
		if err != nil {
			s.err = err
			return false
		}
		if !hit {
			continue
		}
		if s.skip > 0 {
			s.skip--
			continue
		}
		s.cur = rec
		if s.remain > 0 {
			s.remain--
		}
		return true
	}
}

func (s *lazyStream) Record() core.Record { return s.cur }
func (s *lazyStream) Err() error          { return s.err }
func (s *lazyStream) Close() error {
	s.done = true
	return nil
}

// sliceStream serves an already-materialized, already-paged result.
type sliceStream struct {
	records []core.Record
	pos     int
	cur     core.Record
}

func (s *sliceStream) Next(ctx context.Context) bool {
	if ctx.Err() != nil || s.pos >= len(s.records) {
		return false
	}
	s.cur = s.records[s.pos]
	s.pos++
	return true
}

func (s *sliceStream) Record() core.Record { return s.cur }
func (s *sliceStream) Err() error          { return nil }
func (s *sliceStream) Close() error        { return nil }
