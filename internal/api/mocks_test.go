package api

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/domain/nexus"
	"github.com/nexuslearn/nexus-api/internal/service"
)

// Function-field fakes for the engine services, so each test swaps in just
// the behavior it needs.

type fakeLearningService struct {
	RecordInteractionFn func(ctx context.Context, studentID, nodeID uuid.UUID, input service.InteractionInput) (*service.RecordInteractionResult, error)
}

func (f *fakeLearningService) RecordInteraction(
	ctx context.Context,
	studentID, nodeID uuid.UUID,
	input service.InteractionInput,
) (*service.RecordInteractionResult, error) {
	return f.RecordInteractionFn(ctx, studentID, nodeID, input)
}

type fakeProgressionService struct {
	ChooseBranchFn       func(ctx context.Context, studentID, branchID uuid.UUID) (*service.BranchChoiceResult, error)
	CheckBranchUnlockFn  func(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchEdge, error)
	ListBranchStatusesFn func(ctx context.Context, studentID uuid.UUID) ([]service.BranchStatus, error)
}

func (f *fakeProgressionService) ChooseBranch(
	ctx context.Context,
	studentID, branchID uuid.UUID,
) (*service.BranchChoiceResult, error) {
	return f.ChooseBranchFn(ctx, studentID, branchID)
}

func (f *fakeProgressionService) CheckBranchUnlock(
	ctx context.Context,
	studentID uuid.UUID,
) ([]*domain.BranchEdge, error) {
	return f.CheckBranchUnlockFn(ctx, studentID)
}

func (f *fakeProgressionService) ListBranchStatuses(
	ctx context.Context,
	studentID uuid.UUID,
) ([]service.BranchStatus, error) {
	return f.ListBranchStatusesFn(ctx, studentID)
}

type fakeReviewService struct {
	GetUpcomingReviewsFn  func(ctx context.Context, studentID uuid.UUID, days int) ([]service.ReviewForecastEntry, error)
	GetDueReviewSummaryFn func(ctx context.Context, studentID uuid.UUID) (*service.ReviewSummary, error)
}

func (f *fakeReviewService) GetUpcomingReviews(
	ctx context.Context,
	studentID uuid.UUID,
	days int,
) ([]service.ReviewForecastEntry, error) {
	return f.GetUpcomingReviewsFn(ctx, studentID, days)
}

func (f *fakeReviewService) GetDueReviewSummary(
	ctx context.Context,
	studentID uuid.UUID,
) (*service.ReviewSummary, error) {
	return f.GetDueReviewSummaryFn(ctx, studentID)
}

type fakeNexusService struct {
	CalculateNexusScoreFn func(ctx context.Context, studentID, nodeID uuid.UUID) (*nexus.Score, error)
	GetAllNexusScoresFn   func(ctx context.Context, studentID uuid.UUID) ([]nexus.Score, error)
}

func (f *fakeNexusService) CalculateNexusScore(
	ctx context.Context,
	studentID, nodeID uuid.UUID,
) (*nexus.Score, error) {
	return f.CalculateNexusScoreFn(ctx, studentID, nodeID)
}

func (f *fakeNexusService) GetAllNexusScores(
	ctx context.Context,
	studentID uuid.UUID,
) ([]nexus.Score, error) {
	return f.GetAllNexusScoresFn(ctx, studentID)
}

// withStudentID attaches an authenticated student ID to the request context
// the same way the auth middleware does.
func withStudentID(r *http.Request, studentID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.StudentIDContextKey, studentID)
	return r.WithContext(ctx)
}

// withChiParam attaches a chi route parameter to the request context, so
// handlers can be exercised without mounting a full router.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// newAuthedRequest builds a request carrying an authenticated student ID.
func newAuthedRequest(method, target string, studentID uuid.UUID) *http.Request {
	return withStudentID(httptest.NewRequest(method, target, nil), studentID)
}
