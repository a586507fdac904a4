// Package audit appends audit events to a capped stream and reads them back
// for the activity log endpoint.
package audit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lodestone-search/lodestone/internal/db"
	"github.com/lodestone-search/lodestone/internal/domain"
)

// DefaultMaxLen caps the audit stream length; older entries are trimmed.
const DefaultMaxLen = 100_000

// store is the consumer interface for the audit stream (ISP).
type store interface {
	StreamAdd(ctx context.Context, stream string, fields map[string]string, maxLen int64) error
	StreamRevRange(ctx context.Context, stream string, count int64) ([]db.StreamEntry, error)
}

// Sink appends audit events to one stream per tenant index.
type Sink struct {
	store  store
	maxLen int64
}

// New creates an audit sink.
func New(s store) *Sink {
	return &Sink{store: s, maxLen: DefaultMaxLen}
}

// WithMaxLen overrides the stream trim threshold.
func (s *Sink) WithMaxLen(n int64) *Sink {
	if n > 0 {
		s.maxLen = n
	}
	return s
}

// Append writes one audit event. Events land in the stream keyed by the
// tenant's resolved index, so a tenant's activity log reads back only its
// own records.
func (s *Sink) Append(ctx context.Context, ev domain.Event) error {
	index, err := domain.ResolveIndex(ev.Tenant, ev.EntityType)
	if err != nil {
		return fmt.Errorf("resolve audit stream: %w", err)
	}

	if err := s.store.StreamAdd(ctx, streamKey(index), eventToFields(ev), s.maxLen); err != nil {
		return fmt.Errorf("xadd audit %s: %w", index, err)
	}
	return nil
}

// Recent returns up to count events for a tenant's index, newest first.
func (s *Sink) Recent(ctx context.Context, t domain.Tenant, entityType string, count int) ([]domain.Event, error) {
	index, err := domain.ResolveIndex(t, entityType)
	if err != nil {
		return nil, fmt.Errorf("resolve audit stream: %w", err)
	}

	entries, err := s.store.StreamRevRange(ctx, streamKey(index), int64(count))
	if err != nil {
		return nil, fmt.Errorf("xrevrange audit %s: %w", index, err)
	}

	events := make([]domain.Event, 0, len(entries))
	for _, entry := range entries {
		events = append(events, eventFromFields(entry.Fields))
	}
	return events, nil
}

func streamKey(index string) string {
	return fmt.Sprintf("%saudit:%s", domain.KeyPrefix, index)
}

func eventToFields(ev domain.Event) map[string]string {
	fields := map[string]string{
		"ts":          ev.Timestamp.UTC().Format(time.RFC3339Nano),
		"client_name": ev.Tenant.ClientName,
		"app_name":    ev.Tenant.AppName,
		"stack":       string(ev.Tenant.Stack),
		"entity_type": ev.EntityType,
		"kind":        string(ev.Kind),
		"status":      string(ev.Status),
	}
	if ev.Tenant.AppURL != "" {
		fields["app_url"] = ev.Tenant.AppURL
	}
	if ev.EntityID != "" {
		fields["entity_id"] = ev.EntityID
	}
	if ev.Query != "" {
		fields["query"] = ev.Query
		fields["result_count"] = strconv.Itoa(ev.ResultCount)
	}
	if ev.Error != "" {
		fields["error"] = ev.Error
	}
	return fields
}

func eventFromFields(fields map[string]string) domain.Event {
	ev := domain.Event{
		Tenant: domain.Tenant{
			ClientName: fields["client_name"],
			AppName:    fields["app_name"],
			Stack:      domain.Stack(fields["stack"]),
			AppURL:     fields["app_url"],
		},
		EntityType: fields["entity_type"],
		Kind:       domain.EventKind(fields["kind"]),
		Status:     domain.EventStatus(fields["status"]),
		EntityID:   fields["entity_id"],
		Query:      fields["query"],
		Error:      fields["error"],
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["ts"]); err == nil {
		ev.Timestamp = ts
	}
	if n, err := strconv.Atoi(fields["result_count"]); err == nil {
		ev.ResultCount = n
	}
	return ev
}
