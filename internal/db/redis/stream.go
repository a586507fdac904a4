package redis

import (
	"context"
	"strconv"

	"github.com/lodestone-search/lodestone/internal/db"
)

// StreamAdd appends an entry to a stream with approximate MAXLEN trimming.
func (s *Store) StreamAdd(ctx context.Context, stream string, fields map[string]string, maxLen int64) error {
	cmd := s.b().Xadd().Key(stream).Maxlen().Almost().Threshold(formatInt(maxLen)).Id("*")
	fv := cmd.FieldValue()
	for k, v := range fields {
		fv = fv.FieldValue(k, v)
	}
	if err := s.do(ctx, fv.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpStreamAdd, Err: err}
	}
	return nil
}

// StreamRevRange reads the newest entries from a stream, most recent first.
func (s *Store) StreamRevRange(ctx context.Context, stream string, count int64) ([]db.StreamEntry, error) {
	cmd := s.b().Xrevrange().Key(stream).End("+").Start("-").Count(count).Build()
	raw, err := s.do(ctx, cmd).AsXRange()
	if err != nil {
		return nil, &db.Error{Op: db.OpStreamRange, Err: err}
	}

	entries := make([]db.StreamEntry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, db.StreamEntry{ID: e.ID, Fields: e.FieldValues})
	}
	return entries, nil
}

func formatInt(n int64) string {
	if n <= 0 {
		n = 1
	}
	return strconv.FormatInt(n, 10)
}
