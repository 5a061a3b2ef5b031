package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("results"))
	})
	r.Get("/files/{id}/server", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Post("/blocks", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return r
}

func serve(h http.Handler, method, target string) {
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, target, http.NoBody))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	h := newTestRouter()

	tests := []struct {
		method, target, route, code string
	}{
		{"GET", "/search?q=a", "/search", "200"},
		{"GET", "/files/AAAAAAAAAAAAAAAA/server", "/files/{id}/server", "404"},
		{"POST", "/blocks", "/blocks", "503"},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			c := apiRequests.WithLabelValues(tt.method, tt.route, tt.code)
			before := testutil.ToFloat64(c)
			serve(h, tt.method, tt.target)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("requests_total delta = %v, want 1", got)
			}
		})
	}

	if testutil.CollectAndCount(apiLatency) == 0 {
		t.Error("expected latency observations")
	}
}

func TestMiddleware_ImplicitOKAndBytes(t *testing.T) {
	h := newTestRouter()
	bytes := apiResponseBytes.WithLabelValues("/search")
	before := testutil.ToFloat64(bytes)

	serve(h, "GET", "/search")

	if got := testutil.ToFloat64(bytes) - before; got != float64(len("results")) {
		t.Errorf("response bytes delta = %v, want %d", got, len("results"))
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	h := newTestRouter()
	c := apiRequests.WithLabelValues("GET", unmatchedRoute, "404")
	before := testutil.ToFloat64(c)

	serve(h, "GET", "/no/such/path/123")

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("unmatched delta = %v, want 1", got)
	}
	if v := testutil.ToFloat64(apiInFlight); v != 0 {
		t.Errorf("in-flight = %v after request, want 0", v)
	}
}

func TestRouteLabel_NoRouteContext(t *testing.T) {
	if got := routeLabel(httptest.NewRequest("GET", "/x", http.NoBody)); got != unmatchedRoute {
		t.Errorf("routeLabel = %q", got)
	}
}
