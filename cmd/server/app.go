package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nexuslearn/nexus-api/internal/config"
	"github.com/nexuslearn/nexus-api/internal/domain/gamification"
	"github.com/nexuslearn/nexus-api/internal/domain/mastery"
	"github.com/nexuslearn/nexus-api/internal/domain/nexus"
	"github.com/nexuslearn/nexus-api/internal/domain/srs"
	"github.com/nexuslearn/nexus-api/internal/events"
	"github.com/nexuslearn/nexus-api/internal/lessonplan"
	"github.com/nexuslearn/nexus-api/internal/platform/gemini"
	"github.com/nexuslearn/nexus-api/internal/platform/metrics"
	"github.com/nexuslearn/nexus-api/internal/platform/postgres"
	"github.com/nexuslearn/nexus-api/internal/service"
	"github.com/nexuslearn/nexus-api/internal/service/auth"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	students store.StudentRegistry
	nodes    store.KnowledgeGraphStore
	ledger   store.MasteryStore
	branches store.BranchStore
	states   store.GamificationStore

	// Auth
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	// Engine services
	learningService     service.LearningService
	nexusService        service.NexusService
	progressionService  service.ProgressionService
	reviewService       service.ReviewService
	gamificationService service.GamificationService

	// Lesson plan generation; nil when no LLM key is configured.
	planGenerator lessonplan.Generator

	eventEmitter events.EventEmitter
	metrics      *metrics.Metrics
}

// newApplication creates an application instance with all dependencies
// initialized. Core dependencies like configuration, logger, and the
// database connection must be established before calling this.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.students = postgres.NewPostgresStudentRegistry(db, logger, cfg.Auth.BcryptCost)
	app.nodes = postgres.NewPostgresKnowledgeGraphStore(db, logger)
	app.ledger = postgres.NewPostgresMasteryStore(db, logger)
	app.branches = postgres.NewPostgresBranchStore(db, logger)
	app.states = postgres.NewPostgresGamificationStore(db, logger)

	app.metrics = metrics.New()
	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	clock := service.NewSystemClock()

	masteryParams := mastery.NewParams(mastery.ParamsConfig{
		WindowSize:          cfg.Engine.MasteryWindowSize,
		CorrectThreshold:    cfg.Engine.CorrectThreshold,
		AdvanceRatio:        cfg.Engine.AdvanceRatio,
		RegressRatio:        cfg.Engine.RegressRatio,
		MaxHintedForAdvance: cfg.Engine.MaxHintedForAdvance,
	})

	srsService, err := srs.NewService(srs.NewParams(srs.ParamsConfig{
		BaseIntervalDays: cfg.Engine.SRSBaseIntervalDays,
		GrowthFactor:     cfg.Engine.SRSGrowthFactor,
		MaxIntervalDays:  cfg.Engine.SRSMaxIntervalDays,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create SRS service: %w", err)
	}

	// Transactional writes in the progression service go through a single
	// runner so unlock and choice rows commit atomically.
	runTx := func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, db, fn)
	}

	app.progressionService = service.NewProgressionService(
		app.nodes,
		app.ledger,
		app.branches,
		runTx,
		clock,
		logger,
	)

	app.learningService = service.NewLearningService(
		app.students,
		app.nodes,
		app.ledger,
		srsService,
		app.eventEmitter,
		app.progressionService,
		service.LearningServiceConfig{
			MasteryParams: masteryParams,
			RetryLimit:    cfg.Engine.WriteRetryLimit,
			Clock:         clock,
		},
		logger,
	)

	app.nexusService = service.NewNexusService(
		app.students,
		app.nodes,
		app.ledger,
		nexus.NewDefaultParams(),
		logger,
	)

	app.reviewService = service.NewReviewService(app.ledger, app.nodes, clock, logger)

	app.gamificationService = service.NewGamificationService(
		app.states,
		app.ledger,
		app.nodes,
		gamification.NewDefaultParams(),
		clock,
		logger,
	)
	emitter.RegisterHandler(app.gamificationService)

	if cfg.LLM.GeminiAPIKey != "" {
		planner, err := gemini.NewGeminiPlanner(
			ctx,
			logger.With(slog.String("component", "lessonplan_generator")),
			cfg.LLM,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize lesson plan generator: %w", err)
		}
		app.planGenerator = planner
		logger.Info("lesson plan generator initialized", slog.String("model", cfg.LLM.ModelName))
	} else {
		logger.Info("no LLM API key configured, lesson plan generation disabled")
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
