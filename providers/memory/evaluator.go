// Package memory evaluates queries against in-process dynamic records:
// a predicate interpreter with implicit existential list traversal,
// stable multi-key ordering, and a lazy streaming path.
package memory

import (
	"context"
	"sort"

	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/providers"
	"github.com/oxhq/searchq/registry"
	"github.com/oxhq/searchq/resolve"
)

// Provider is the in-memory backend over one iterable source. A
// provider is good for a single search invocation: the source is
// consumed as the query runs.
type Provider struct {
	source Source
}

// New adapts the source (see NewSource for accepted shapes).
func New(source any) (*Provider, error) {
	src, err := NewSource(source)
	if err != nil {
		return nil, err
	}
	return &Provider{source: src}, nil
}

// Backend reports the memory operator subset.
func (p *Provider) Backend() registry.Backend { return registry.Memory }

// Search filters the source, sorts the full matching set by the order
// keys, then applies offset and limit.
func (p *Provider) Search(ctx context.Context, q *core.Query) ([]core.Record, error) {
	state := newEvalState()

	// Without ordering the scan can stop as soon as the page is full.
	stopAfter := -1
	if len(q.OrderBy) == 0 && q.Limit != nil {
		stopAfter = *q.Limit
		if q.Offset != nil {
			stopAfter += *q.Offset
		}
	}

	var matched []core.Record
	for {
		rec, ok, err := p.source.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		hit, err := state.evalQuery(q, rec)
		if err != nil {
			return nil, err
		}
		if hit {
			matched = append(matched, rec)
			if stopAfter >= 0 && len(matched) >= stopAfter {
				break
			}
		}
	}

	sortRecords(matched, q.OrderBy)
	return page(matched, q.Offset, q.Limit), nil
}

// SearchStream filters lazily. When order keys are present the filtered
// set is buffered and sorted first; otherwise records flow through
// without materialization.
func (p *Provider) SearchStream(ctx context.Context, q *core.Query) (providers.Stream, error) {
	if len(q.OrderBy) == 0 {
		return &lazyStream{
			source: p.source,
			state:  newEvalState(),
			query:  q,
			skip:   offsetOf(q),
			remain: limitOf(q),
		}, nil
	}
	records, err := p.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return &sliceStream{records: records}, nil
}

func offsetOf(q *core.Query) int {
	if q.Offset != nil {
		return *q.Offset
	}
	return 0
}

func limitOf(q *core.Query) int {
	if q.Limit != nil {
		return *q.Limit
	}
	return -1
}

func page(records []core.Record, offset, limit *int) []core.Record {
	start := 0
	if offset != nil {
		start = *offset
	}
	if start >= len(records) {
		return nil
	}
	records = records[start:]
	if limit != nil && *limit < len(records) {
		records = records[:*limit]
	}
	return records
}

// sortRecords stably sorts by the order keys in declared order.
// Missing or unordered values sort last ascending, first descending.
func sortRecords(records []core.Record, keys []core.OrderKey) {
	if len(keys) == 0 {
		return
	}
	segments := make([][]string, len(keys))
	for i, k := range keys {
		segments[i] = core.Segments(k.Path)
	}
	sort.SliceStable(records, func(i, j int) bool {
		for k, key := range keys {
			cmp := compareByKey(records[i], records[j], segments[k], key.Desc)
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
}

func compareByKey(a, b core.Record, segments []string, desc bool) int {
	av, aok := sortValue(a, segments)
	bv, bok := sortValue(b, segments)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		if desc {
			return -1 // missing first
		}
		return 1 // missing last
	case !bok:
		if desc {
			return 1
		}
		return -1
	}
	cmp, ordered := order(av, bv)
	if !ordered {
		return 0
	}
	if desc {
		return -cmp
	}
	return cmp
}

func sortValue(rec core.Record, segments []string) (scalar, bool) {
	leaves := resolve.Access(rec, segments)
	for _, leaf := range leaves {
		if leaf == nil {
			continue
		}
		if v, ok := normalize(leaf); ok {
			return v, true
		}
	}
	return scalar{}, false
}
