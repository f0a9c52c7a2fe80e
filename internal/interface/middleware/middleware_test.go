package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcmp123/marketplace/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id")+"|"+helpers.RequestIDFromContext(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id+"|"+id, w.Body.String())

	upstream := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, upstream)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, upstream, w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid\n")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid\n", w.Header().Get(HeaderRequestID))
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	cases := map[string]struct {
		header, value, want string
	}{
		"cloudflare":     {"CF-Connecting-IP", "203.0.113.7", "203.0.113.7"},
		"x-real-ip":      {"X-Real-IP", "198.51.100.2", "198.51.100.2"},
		"forwarded-for":  {"X-Forwarded-For", "192.0.2.1, 10.0.0.1", "192.0.2.1"},
		"garbage header": {"X-Real-IP", "nope", "192.0.2.99"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.99:1234"
			req.Header.Set(tc.header, tc.value)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}

func TestRateLimit_NilClientPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int
	ttl    time.Duration
	err    error
}

func (m *memCounter) Hit(_ context.Context, key string, _ time.Duration) (int, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, 0, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[key]++
	return m.counts[key], m.ttl, nil
}

func limitedEngine(counter Counter, max int) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Any("/register", RateLimitWith(counter, max, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func hitFrom(r *gin.Engine, method, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/register", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_CountsAndRejects(t *testing.T) {
	counter := &memCounter{ttl: 29500 * time.Millisecond}
	r := limitedEngine(counter, 2)

	for i, wantRemaining := range []string{"1", "0"} {
		w := hitFrom(r, http.MethodPost, "203.0.113.5:1000")
		require.Equal(t, http.StatusNoContent, w.Code, "request %d", i)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, wantRemaining, w.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "30", w.Header().Get("X-RateLimit-Reset"))
		assert.Empty(t, w.Header().Get("Retry-After"))
	}

	w := hitFrom(r, http.MethodPost, "203.0.113.5:1000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate limit exceeded", body["message"])
	assert.Equal(t, false, body["success"])

	// other clients keep their own budget
	w = hitFrom(r, http.MethodPost, "198.51.100.9:1000")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 3, counter.counts["rl:path:/register:ip:203.0.113.5"])
}

func TestRateLimit_BypassesAndFailsOpen(t *testing.T) {
	counter := &memCounter{}
	r := limitedEngine(counter, 1)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, hitFrom(r, http.MethodOptions, "203.0.113.5:1000").Code)
	}
	assert.Empty(t, counter.counts)

	r = limitedEngine(&memCounter{err: errors.New("connection refused")}, 1)
	for i := 0; i < 3; i++ {
		w := hitFrom(r, http.MethodPost, "203.0.113.5:1000")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	allowAll := RateLimitWith(counter, 1, time.Minute, KeyByIP(), func(*gin.Context) bool { return true })
	r = gin.New()
	r.GET("/", allowAll, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Empty(t, counter.counts)
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 7, toInt(int64(7)))
	assert.Equal(t, 3, toInt("3"))
	assert.Equal(t, 0, toInt(nil))
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	for ip, want := range map[string]bool{"127.0.0.1": true, "10.1.2.3": true, "8.8.8.8": false, "junk": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set("real_ip", ip)
		assert.Equal(t, want, allow(c), ip)
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/", BodyLimit(4), func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var mbe *http.MaxBytesError
		if assert.ErrorAs(t, err, &mbe) {
			assert.Equal(t, int64(4), mbe.Limit)
		}
		c.Status(http.StatusRequestEntityTooLarge)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("0123456789"))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAccessLog(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := gin.New()
	r.Use(RequestIDMiddleware(), AccessLog(logger))
	r.GET("/missing", func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"x": 1}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing?password=hunter2", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "/missing", entry.Data["path"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, w.Header().Get(HeaderRequestID), entry.Data["request_id"])
	raw, err := json.Marshal(entry.Data)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
}
