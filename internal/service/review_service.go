package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// defaultForecastDays is the horizon used when a caller asks for an
// upcoming-review forecast without specifying one.
const defaultForecastDays = 7

// ReviewForecastEntry is one scheduled node in a review forecast.
type ReviewForecastEntry struct {
	NodeID       uuid.UUID           `json:"node_id"`
	NodeCode     string              `json:"node_code"`
	NodeTitle    string              `json:"node_title"`
	MasteryLevel domain.MasteryLevel `json:"mastery_level"`
	DueAt        time.Time           `json:"due_at"`
	IntervalDays int                 `json:"interval_days"`
	Overdue      bool                `json:"overdue"`
}

// ReviewSummary buckets a student's scheduled reviews by urgency.
type ReviewSummary struct {
	Overdue     int `json:"overdue"`
	DueToday    int `json:"due_today"`
	DueThisWeek int `json:"due_this_week"`
	Scheduled   int `json:"scheduled"`
}

// ReviewService answers review forecast queries. Forecasts are pure
// projections over the persisted NextReviewDue fields; nothing here writes.
type ReviewService interface {
	// GetUpcomingReviews lists the student's scheduled nodes due within
	// the given number of days, ordered soonest first. Overdue nodes are
	// always included. days 0 uses the default horizon.
	// Returns ErrInvalidForecast for a negative horizon.
	GetUpcomingReviews(ctx context.Context, studentID uuid.UUID, days int) ([]ReviewForecastEntry, error)

	// GetDueReviewSummary buckets the student's schedule into overdue,
	// due today and due this week.
	GetDueReviewSummary(ctx context.Context, studentID uuid.UUID) (*ReviewSummary, error)
}

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

type reviewServiceImpl struct {
	ledger store.MasteryStore
	nodes  store.KnowledgeGraphStore
	clock  Clock
	logger *slog.Logger
}

// NewReviewService creates the review forecast service.
func NewReviewService(
	ledger store.MasteryStore,
	nodes store.KnowledgeGraphStore,
	clock Clock,
	log *slog.Logger,
) ReviewService {
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if nodes == nil {
		panic("nodes cannot be nil")
	}

	if clock == nil {
		clock = NewSystemClock()
	}
	if log == nil {
		log = slog.Default()
	}

	return &reviewServiceImpl{
		ledger: ledger,
		nodes:  nodes,
		clock:  clock,
		logger: log.With(slog.String("component", "review_service")),
	}
}

// GetUpcomingReviews implements ReviewService.GetUpcomingReviews.
func (s *reviewServiceImpl) GetUpcomingReviews(
	ctx context.Context,
	studentID uuid.UUID,
	days int,
) ([]ReviewForecastEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < 0 {
		return nil, ErrInvalidForecast
	}
	if days == 0 {
		days = defaultForecastDays
	}

	now := s.clock.Now()
	horizon := now.AddDate(0, 0, days)

	scheduled, err := s.scheduledRecords(ctx, studentID)
	if err != nil {
		return nil, err
	}

	entries := make([]ReviewForecastEntry, 0, len(scheduled))
	for _, record := range scheduled {
		due := *record.NextReviewDue
		if due.After(horizon) {
			continue
		}

		entry := ReviewForecastEntry{
			NodeID:       record.NodeID,
			MasteryLevel: record.MasteryLevel,
			DueAt:        due,
			IntervalDays: record.ReviewIntervalDays,
			Overdue:      due.Before(now),
		}

		node, err := s.nodes.GetNodeByID(ctx, record.NodeID)
		if err == nil {
			entry.NodeCode = node.Code
			entry.NodeTitle = node.Title
		} else if !errors.Is(err, store.ErrNodeNotFound) {
			return nil, NewServiceError("get_upcoming_reviews", "failed to load knowledge node", err)
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].DueAt.Equal(entries[j].DueAt) {
			return entries[i].DueAt.Before(entries[j].DueAt)
		}
		return entries[i].NodeCode < entries[j].NodeCode
	})

	log.Debug("review forecast served",
		slog.String("student_id", studentID.String()),
		slog.Int("days", days),
		slog.Int("count", len(entries)))

	return entries, nil
}

// GetDueReviewSummary implements ReviewService.GetDueReviewSummary.
func (s *reviewServiceImpl) GetDueReviewSummary(
	ctx context.Context,
	studentID uuid.UUID,
) (*ReviewSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.clock.Now()
	endOfToday := endOfUTCDay(now)
	endOfWeek := endOfToday.AddDate(0, 0, 6)

	scheduled, err := s.scheduledRecords(ctx, studentID)
	if err != nil {
		return nil, err
	}

	summary := &ReviewSummary{Scheduled: len(scheduled)}
	for _, record := range scheduled {
		due := *record.NextReviewDue
		switch {
		case due.Before(now):
			summary.Overdue++
		case !due.After(endOfToday):
			summary.DueToday++
		case !due.After(endOfWeek):
			summary.DueThisWeek++
		}
	}

	log.Debug("review summary served",
		slog.String("student_id", studentID.String()),
		slog.Int("overdue", summary.Overdue),
		slog.Int("due_today", summary.DueToday))

	return summary, nil
}

// scheduledRecords loads the ledger entries with an active review schedule,
// guarding the schedule invariant on the way out.
func (s *reviewServiceImpl) scheduledRecords(
	ctx context.Context,
	studentID uuid.UUID,
) ([]*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	records, err := s.ledger.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, NewServiceError("review_forecast", "failed to read ledger", err)
	}

	scheduled := make([]*domain.MasteryRecord, 0, len(records))
	for _, record := range records {
		if record.NextReviewDue == nil {
			continue
		}
		if record.NextReviewDue.Before(record.LastReviewedAt) {
			// A due date behind its own review time means the stored
			// schedule is corrupt; surface it rather than forecast
			// nonsense.
			log.Error("corrupt review schedule",
				slog.String("student_id", studentID.String()),
				slog.String("node_id", record.NodeID.String()),
				slog.Time("next_review_due", *record.NextReviewDue),
				slog.Time("last_reviewed_at", record.LastReviewedAt))
			return nil, NewServiceError("review_forecast", "stored schedule is corrupt", ErrInvariantViolation)
		}
		scheduled = append(scheduled, record)
	}
	return scheduled, nil
}

// endOfUTCDay returns the last instant of the UTC calendar day containing t.
func endOfUTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
