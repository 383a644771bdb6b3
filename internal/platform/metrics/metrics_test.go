package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	t.Parallel()

	m := New()

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/api/nodes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/nodes/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	count := testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/api/nodes/{id}", "200"))
	assert.Equal(t, float64(1), count)
}

func TestMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	m := New()

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/api/nodes", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/nodes", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/api/nodes", "404"))
	assert.Equal(t, float64(1), count)
}

func TestEngineCounters(t *testing.T) {
	t.Parallel()

	m := New()

	m.InteractionsRecorded.WithLabelValues("PROFICIENT").Inc()
	m.InteractionsRecorded.WithLabelValues("PROFICIENT").Inc()
	m.BranchUnlocks.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.InteractionsRecorded.WithLabelValues("PROFICIENT")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BranchUnlocks))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ReviewsServed))
}

func TestHandlerServesScrape(t *testing.T) {
	t.Parallel()

	m := New()
	m.ReviewsServed.Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "engine_reviews_served_total 1")
}
