package domain

import "time"

// EventKind classifies audit events.
type EventKind string

const (
	// EventEntityCreated is emitted on entity create attempts.
	EventEntityCreated EventKind = "entity_created"
	// EventEntityUpdated is emitted on entity update attempts.
	EventEntityUpdated EventKind = "entity_updated"
	// EventEntityDeleted is emitted on entity delete attempts.
	EventEntityDeleted EventKind = "entity_deleted"
	// EventEmbeddingFailure is emitted when the embedding pipeline aborts a write.
	EventEmbeddingFailure EventKind = "embedding_failure"
	// EventIndexCreated is emitted when a new index is provisioned.
	EventIndexCreated EventKind = "index_created"
	// EventSearch is emitted on search attempts.
	EventSearch EventKind = "search"
)

// EventStatus is the terminal outcome recorded in an audit event.
type EventStatus string

const (
	// StatusSuccess marks a successful operation.
	StatusSuccess EventStatus = "success"
	// StatusFailure marks a failed operation.
	StatusFailure EventStatus = "failure"
)

// Event is one append-only audit record. Events are returned by business
// operations as a side-channel and delivered by a separate dispatcher, so a
// sink failure cannot affect the primary result.
type Event struct {
	Timestamp   time.Time
	Tenant      Tenant
	EntityType  string
	Kind        EventKind
	Status      EventStatus
	EntityID    string
	Query       string
	ResultCount int
	Error       string
}

// NewEvent creates an audit event stamped with the current time.
func NewEvent(t Tenant, entityType string, kind EventKind, status EventStatus) Event {
	return Event{
		Timestamp:  time.Now().UTC(),
		Tenant:     t,
		EntityType: entityType,
		Kind:       kind,
		Status:     status,
	}
}

// WithEntity attaches the subject entity ID.
func (e Event) WithEntity(id string) Event {
	e.EntityID = id
	return e
}

// WithError attaches a failure detail.
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithQuery attaches the search query and result count.
func (e Event) WithQuery(query string, count int) Event {
	e.Query = query
	e.ResultCount = count
	return e
}
