package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslearn/nexus-api/internal/domain"
)

func TestNewLedgerEvent(t *testing.T) {
	payload := InteractionRecordedPayload{
		StudentID:      uuid.New(),
		NodeID:         uuid.New(),
		NodeDomain:     "math",
		NodeDifficulty: 3,
		Correct:        true,
		MasteryLevel:   domain.MasteryDeveloping,
		OccurredAt:     time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
	}

	event, err := NewLedgerEvent(TypeInteractionRecorded, payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeInteractionRecorded, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded InteractionRecordedPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewLedgerEventRejectsUnserializablePayload(t *testing.T) {
	_, err := NewLedgerEvent(TypeInteractionRecorded, make(chan int))
	assert.Error(t, err)
}

func TestUnmarshalPayloadInvalidTarget(t *testing.T) {
	event, err := NewLedgerEvent(TypeInteractionRecorded, InteractionRecordedPayload{})
	require.NoError(t, err)

	var wrongShape []string
	assert.Error(t, event.UnmarshalPayload(&wrongShape))
}
