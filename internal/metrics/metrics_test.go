package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewHTTP(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/interviews/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler(reg))

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/interviews/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/interviews/:id", "204")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), "interviewflow_http_requests_total"))
}

func TestDomainCounters(t *testing.T) {
	d := NewDomain(prometheus.NewRegistry())
	d.Scheduled()
	d.Transition("cancel")
	d.Transition("cancel")
	d.NotifyFailed("interview.cancelled")

	assert.Equal(t, 1.0, testutil.ToFloat64(d.scheduled))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.transitions.WithLabelValues("cancel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.notifyFailures.WithLabelValues("interview.cancelled")))

	var nilDomain *Domain
	assert.NotPanics(t, func() { nilDomain.Scheduled() })
}
