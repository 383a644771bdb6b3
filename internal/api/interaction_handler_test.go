package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/platform/metrics"
	"github.com/nexuslearn/nexus-api/internal/service"
)

func testDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func recordInteractionRequest(t *testing.T, studentID uuid.UUID, payload map[string]interface{}) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/students/me/interactions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if studentID != uuid.Nil {
		req = withStudentID(req, studentID)
	}
	return req
}

func TestRecordInteractionHandlerSuccess(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()
	nodeID := uuid.New()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	due := now.Add(24 * time.Hour)

	var gotInput service.InteractionInput
	learning := &fakeLearningService{
		RecordInteractionFn: func(ctx context.Context, sid, nid uuid.UUID, input service.InteractionInput) (*service.RecordInteractionResult, error) {
			assert.Equal(t, studentID, sid)
			assert.Equal(t, nodeID, nid)
			gotInput = input
			return &service.RecordInteractionResult{
				Record: &domain.MasteryRecord{
					StudentID:          sid,
					NodeID:             nid,
					MasteryLevel:       domain.MasteryMastered,
					NextReviewDue:      &due,
					ReviewIntervalDays: 1,
					Revision:           6,
				},
				PreviousLevel: domain.MasteryProficient,
				LevelChanged:  true,
				NewlyAvailable: []*domain.BranchEdge{
					{ID: uuid.New(), FromNodeID: nodeID, ToNodeID: uuid.New(), Label: "visual path"},
				},
			}, nil
		},
	}

	handler := NewInteractionHandler(learning, metrics.New(), testDiscardLogger())

	req := recordInteractionRequest(t, studentID, map[string]interface{}{
		"node_id":     nodeID.String(),
		"correctness": 1.0,
		"latency_ms":  4000,
		"hint_count":  0,
	})
	recorder := httptest.NewRecorder()
	handler.RecordInteraction(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, 1.0, gotInput.Correctness)
	assert.Equal(t, 4000, gotInput.LatencyMs)

	var resp RecordInteractionResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, nodeID, resp.NodeID)
	assert.Equal(t, domain.MasteryMastered, resp.MasteryLevel)
	assert.Equal(t, domain.MasteryProficient, resp.PreviousLevel)
	assert.True(t, resp.LevelChanged)
	require.NotNil(t, resp.NextReviewDue)
	assert.Len(t, resp.NewlyAvailable, 1)
}

func TestRecordInteractionHandlerValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{
			name: "correctness above one",
			payload: map[string]interface{}{
				"node_id":     uuid.New().String(),
				"correctness": 1.5,
			},
		},
		{
			name: "negative hint count",
			payload: map[string]interface{}{
				"node_id":     uuid.New().String(),
				"correctness": 0.5,
				"hint_count":  -1,
			},
		},
		{
			name: "missing node id",
			payload: map[string]interface{}{
				"correctness": 0.5,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			learning := &fakeLearningService{
				RecordInteractionFn: func(ctx context.Context, sid, nid uuid.UUID, input service.InteractionInput) (*service.RecordInteractionResult, error) {
					t.Fatal("service should not be called for invalid input")
					return nil, nil
				},
			}
			handler := NewInteractionHandler(learning, metrics.New(), testDiscardLogger())

			recorder := httptest.NewRecorder()
			handler.RecordInteraction(recorder, recordInteractionRequest(t, uuid.New(), tt.payload))
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestRecordInteractionHandlerServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown node", service.ErrNodeNotFound, http.StatusNotFound},
		{"unknown student", service.ErrStudentNotFound, http.StatusNotFound},
		{"retry budget exhausted", service.ErrConcurrentModification, http.StatusConflict},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			learning := &fakeLearningService{
				RecordInteractionFn: func(ctx context.Context, sid, nid uuid.UUID, input service.InteractionInput) (*service.RecordInteractionResult, error) {
					return nil, tt.err
				},
			}
			handler := NewInteractionHandler(learning, metrics.New(), testDiscardLogger())

			req := recordInteractionRequest(t, uuid.New(), map[string]interface{}{
				"node_id":     uuid.New().String(),
				"correctness": 1.0,
			})
			recorder := httptest.NewRecorder()
			handler.RecordInteraction(recorder, req)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestRecordInteractionHandlerRequiresAuth(t *testing.T) {
	t.Parallel()

	learning := &fakeLearningService{
		RecordInteractionFn: func(ctx context.Context, sid, nid uuid.UUID, input service.InteractionInput) (*service.RecordInteractionResult, error) {
			t.Fatal("service should not be called without an authenticated student")
			return nil, nil
		},
	}
	handler := NewInteractionHandler(learning, metrics.New(), testDiscardLogger())

	req := recordInteractionRequest(t, uuid.Nil, map[string]interface{}{
		"node_id":     uuid.New().String(),
		"correctness": 1.0,
	})
	recorder := httptest.NewRecorder()
	handler.RecordInteraction(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
