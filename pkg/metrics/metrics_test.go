package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveHTTP(t *testing.T) {
	c := NewCollector("harness")

	c.ObserveHTTP("GET", "/api/users/:id", "200", 10*time.Millisecond)
	c.ObserveHTTP("GET", "/api/users/:id", "200", 20*time.Millisecond)
	c.ObserveHTTP("GET", "/api/users/:id", "404", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/users/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/users/:id", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.HTTPDuration))
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("harness")

	c.UserCreated()
	c.CacheHit()
	c.CacheHit()
	c.CacheMiss()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.UsersCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheMisses))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveHTTP("GET", "/", "200", time.Millisecond)
		c.UserCreated()
		c.CacheHit()
		c.CacheMiss()
	})
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("harness")
	b := NewCollector("harness")

	a.UserCreated()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.UsersCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.UsersCreated))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("harness")
	c.UserCreated()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "harness_users_created_total 1")
}
