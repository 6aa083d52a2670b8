package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCartOp(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCartOp("add_item", "added")
	m.ObserveCartOp("add_item", "added")
	m.ObserveCartOp("add_item", "exists")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartOps.WithLabelValues("add_item", "added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartOps.WithLabelValues("add_item", "exists")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCartOp("add_item", "added")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Delete("/carts/{owner}/{petId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/carts/a@x.com/p1", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.httpRequests.WithLabelValues(http.MethodDelete, "/carts/{owner}/{petId}", "200")))
}
