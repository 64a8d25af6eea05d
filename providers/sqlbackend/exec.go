package sqlbackend

import (
	"context"
	"database/sql"
	"time"

	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/providers"
)

// Search translates and executes, materializing every row.
func (p *Provider) Search(ctx context.Context, q *core.Query) ([]core.Record, error) {
	stream, err := p.SearchStream(ctx, q)
	if err != nil {
		return nil, err
	}
	return providers.Drain(ctx, stream)
}

// SearchStream translates and executes, returning a cursor over the
// live result set. Rows are scanned one at a time; nothing is buffered
// client-side.
func (p *Provider) SearchStream(ctx context.Context, q *core.Query) (providers.Stream, error) {
	stmt, err := p.Translate(ctx, q)
	if err != nil {
		return nil, err
	}
	rows, err := p.db.WithContext(ctx).Raw(stmt.SQL, stmt.Params...).Rows()
	if err != nil {
		return nil, core.ExecutionFailed(err)
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, core.ExecutionFailed(err)
	}
	return &rowStream{rows: rows, columns: columns}, nil
}

// rowStream adapts *sql.Rows to the Stream contract.
type rowStream struct {
	rows    *sql.Rows
	columns []string
	cur     core.Record
	err     error
}

func (s *rowStream) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			s.err = core.ExecutionFailed(err)
		}
		return false
	}
	values := make([]any, len(s.columns))
	ptrs := make([]any, len(s.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		s.err = core.ExecutionFailed(err)
		return false
	}
	rec := make(core.Record, len(s.columns))
	for i, col := range s.columns {
		rec[col] = normalizeColumn(values[i])
	}
	s.cur = rec
	return true
}

func (s *rowStream) Record() core.Record { return s.cur }
func (s *rowStream) Err() error          { return s.err }
func (s *rowStream) Close() error        { return s.rows.Close() }

func normalizeColumn(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t
	}
	return v
}
