package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"nutriportions/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRequestIDEchoedOrGenerated(t *testing.T) {
	t.Parallel()
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("requestID")) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" || w.Body.String() != "abc-123" {
		t.Fatalf("expected the caller's id to be kept, got header %q body %q", got, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Fatalf("expected a generated uuid, got %q", w.Header().Get("X-Request-ID"))
	}
}

func TestMetricsObservesRouteTemplate(t *testing.T) {
	t.Parallel()
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if n := testutil.CollectAndCount(utils.RequestDuration); n < 1 {
		t.Fatalf("expected at least one latency series, got %d", n)
	}
}
