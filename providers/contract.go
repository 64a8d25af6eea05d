// Package providers defines the contract shared by the query backends:
// a provider consumes an already-validated AST and produces records
// eagerly or as a lazy stream.
package providers

import (
	"context"

	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/registry"
)

// Stream is a pull-based record cursor in the shape of sql.Rows. Next
// reports false at exhaustion or on error; Err distinguishes the two.
// Close releases backend resources and is safe to call more than once.
type Stream interface {
	Next(ctx context.Context) bool
	Record() core.Record
	Err() error
	Close() error
}

// Provider is one evaluator backend.
type Provider interface {
	// Backend reports which operator subset this provider accepts.
	Backend() registry.Backend

	// Search runs the query and materializes the matching records,
	// bounded by the query's limit.
	Search(ctx context.Context, q *core.Query) ([]core.Record, error)

	// SearchStream runs the query lazily. The caller owns the stream
	// and must close it.
	SearchStream(ctx context.Context, q *core.Query) (Stream, error)
}

// Drain collects a stream into a slice, closing it afterwards.
func Drain(ctx context.Context, s Stream) ([]core.Record, error) {
	defer s.Close()
	var out []core.Record
	for s.Next(ctx) {
		out = append(out, s.Record())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
