package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/spiral-worksheets/pkg/ctxutil"
)

// fakeClock is a manually advanced clock for the limiter.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T) (*RateLimiter, *fakeClock) {
	t.Helper()
	rl := NewRateLimiter(time.Hour)
	t.Cleanup(rl.Stop)
	clock := &fakeClock{t: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)}
	rl.now = clock.Now
	return rl, clock
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type limitedRequest struct {
	remoteAddr string
	operator   string
}

func (lr limitedRequest) send(h http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/stages/import", nil)
	req.RemoteAddr = lr.remoteAddr
	if lr.operator != "" {
		req = req.WithContext(ctxutil.WithOperator(req.Context(), lr.operator))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_Budget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		perMinute int
		requests  []limitedRequest
		want      []int
	}{
		{
			name:      "burst then blocked",
			perMinute: 2,
			requests:  []limitedRequest{{remoteAddr: "1.2.3.4:1"}, {remoteAddr: "1.2.3.4:1"}, {remoteAddr: "1.2.3.4:1"}},
			want:      []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:      "ips are independent",
			perMinute: 1,
			requests:  []limitedRequest{{remoteAddr: "1.1.1.1:1"}, {remoteAddr: "2.2.2.2:1"}},
			want:      []int{http.StatusOK, http.StatusOK},
		},
		{
			name:      "ports share the host bucket",
			perMinute: 1,
			requests:  []limitedRequest{{remoteAddr: "1.2.3.4:1000"}, {remoteAddr: "1.2.3.4:2000"}},
			want:      []int{http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:      "operators behind one ip are independent",
			perMinute: 1,
			requests: []limitedRequest{
				{remoteAddr: "1.2.3.4:1", operator: "ms-chan"},
				{remoteAddr: "1.2.3.4:1", operator: "mr-lee"},
				{remoteAddr: "1.2.3.4:1", operator: "ms-chan"},
			},
			want: []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:      "disabled",
			perMinute: 0,
			requests:  []limitedRequest{{remoteAddr: "1.2.3.4:1"}, {remoteAddr: "1.2.3.4:1"}, {remoteAddr: "1.2.3.4:1"}},
			want:      []int{http.StatusOK, http.StatusOK, http.StatusOK},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rl, _ := newTestLimiter(t)
			h := rl.Limit(tt.perMinute)(okHandler())

			got := make([]int, 0, len(tt.requests))
			for _, r := range tt.requests {
				got = append(got, r.send(h).Code)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t)
	h := rl.Limit(4)(okHandler())
	req := limitedRequest{remoteAddr: "1.2.3.4:1"}

	for range 4 {
		require.Equal(t, http.StatusOK, req.send(h).Code)
	}
	rec := req.send(h)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "15", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_Refill(t *testing.T) {
	t.Parallel()
	rl, clock := newTestLimiter(t)
	h := rl.Limit(60)(okHandler())
	req := limitedRequest{operator: "ms-chan", remoteAddr: "1.2.3.4:1"}

	for range 60 {
		require.Equal(t, http.StatusOK, req.send(h).Code)
	}
	require.Equal(t, http.StatusTooManyRequests, req.send(h).Code)

	clock.Advance(time.Second)
	assert.Equal(t, http.StatusOK, req.send(h).Code)
	assert.Equal(t, http.StatusTooManyRequests, req.send(h).Code)
}

func TestRateLimiter_SeparateBudgets(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t)
	stages := rl.Limit(1)(okHandler())
	worksheets := rl.Limit(2)(okHandler())
	req := limitedRequest{operator: "ms-chan", remoteAddr: "1.2.3.4:1"}

	assert.Equal(t, http.StatusOK, req.send(stages).Code)
	assert.Equal(t, http.StatusOK, req.send(worksheets).Code)
}

func TestRateLimiter_ForgetIdle(t *testing.T) {
	t.Parallel()
	rl, clock := newTestLimiter(t)
	h := rl.Limit(1)(okHandler())

	limitedRequest{remoteAddr: "1.2.3.4:1"}.send(h)
	clock.Advance(idleClientTTL + time.Second)
	limitedRequest{remoteAddr: "5.6.7.8:1"}.send(h)

	rl.forgetIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "1/ip:5.6.7.8")
}
