package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

// Event types emitted by the engine.
const (
	// TypeInteractionRecorded is emitted after every committed ledger
	// append, once per interaction.
	TypeInteractionRecorded = "interaction_recorded"
)

// LedgerEvent is the envelope every emitted event travels in. The payload
// is serialized JSON so handlers can be added without the emitter knowing
// their concrete types.
type LedgerEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates which payload the event carries
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *LedgerEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewLedgerEvent creates a new LedgerEvent with the specified type and payload.
func NewLedgerEvent(eventType string, payload interface{}) (*LedgerEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &LedgerEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// InteractionRecordedPayload carries everything the gamification consumer
// needs to apply an interaction without reading the ledger back.
type InteractionRecordedPayload struct {
	StudentID      uuid.UUID           `json:"student_id"`
	NodeID         uuid.UUID           `json:"node_id"`
	NodeDomain     string              `json:"node_domain"`
	NodeDifficulty int                 `json:"node_difficulty"`
	Correct        bool                `json:"correct"`
	MasteryLevel   domain.MasteryLevel `json:"mastery_level"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *LedgerEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *LedgerEvent) error
}
