package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nexuslearn/nexus-api/internal/api"
	apiMiddleware "github.com/nexuslearn/nexus-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(app.metrics.Middleware)

	authHandler := api.NewAuthHandler(app.students, app.jwtService, app.passwordVerifier)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	nodeHandler := api.NewNodeHandler(app.nodes, app.logger)
	interactionHandler := api.NewInteractionHandler(app.learningService, app.metrics, app.logger)
	nexusHandler := api.NewNexusHandler(app.nexusService, app.logger)
	branchHandler := api.NewBranchHandler(app.progressionService, app.metrics, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.metrics, app.logger)
	gamificationHandler := api.NewGamificationHandler(app.gamificationService, app.logger)
	lessonPlanHandler := api.NewLessonPlanHandler(
		app.planGenerator,
		app.students,
		app.nodes,
		app.ledger,
		app.nexusService,
		app.reviewService,
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Knowledge graph
			r.Get("/nodes", nodeHandler.ListNodes)
			r.Get("/nodes/{id}", nodeHandler.GetNode)

			// Mastery ledger write path
			r.Post("/students/me/interactions", interactionHandler.RecordInteraction)

			// Nexus score projections
			r.Get("/students/me/nexus", nexusHandler.GetAllScores)
			r.Get("/students/me/nexus/{nodeID}", nexusHandler.GetNodeScore)

			// Branch progression
			r.Get("/students/me/branches", branchHandler.ListBranches)
			r.Post("/students/me/branches/check", branchHandler.CheckUnlocks)
			r.Post("/students/me/branches/{branchID}/choose", branchHandler.ChooseBranch)

			// Review forecasts
			r.Get("/students/me/reviews", reviewHandler.GetUpcomingReviews)
			r.Get("/students/me/reviews/summary", reviewHandler.GetReviewSummary)

			// Gamification read model
			r.Get("/students/me/gamification", gamificationHandler.GetGamificationData)

			// Lesson plan generation
			r.Post("/students/me/lesson-plan", lessonPlanHandler.GeneratePlan)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	// Prometheus scrape endpoint
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
