package audio_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"voicenav/internal/application"
	"voicenav/internal/infra/audio"
)

func TestMain(m *testing.M) {
	// The expiring LRU behind the rate limiter runs a cleanup goroutine for
	// the life of the process.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1"))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeControl struct {
	mu        sync.Mutex
	listening bool
}

func (f *fakeControl) Start()          { f.mu.Lock(); f.listening = true; f.mu.Unlock() }
func (f *fakeControl) Abort()          { f.mu.Lock(); f.listening = false; f.mu.Unlock() }
func (f *fakeControl) Listening() bool { f.mu.Lock(); defer f.mu.Unlock(); return f.listening }

type fakePages struct{}

func (fakePages) Snapshot() application.PageState {
	return application.PageState{Path: "/stocks.html", Background: "teal", LookupDays: 30}
}

func TestHTTPSource_StartStop(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", 4, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, source.Start(ctx))
	require.NoError(t, source.Start(ctx))

	go func() {
		time.Sleep(50 * time.Millisecond)
		source.Inject("hello")
	}()

	payload, err := source.Next(ctx)
	require.NoError(t, err)
	text, ok := application.SplitPayload(payload)
	require.True(t, ok)
	assert.Equal(t, "hello", text)

	require.NoError(t, source.Stop())
	require.NoError(t, source.Stop())

	_, err = source.Next(ctx)
	assert.ErrorIs(t, err, application.ErrSourceClosed)
	assert.False(t, source.Inject("too late"))
}

func TestHTTPSource_TextEndpoint(t *testing.T) {
	source := audio.NewHTTPSource(":0", 4, discardLogger())
	handler := source.Handler()

	req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader("  navigate to dogs \n"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "navigate to dogs", body["text"])
	assert.NotEmpty(t, body["id"])

	payload, err := source.Next(context.Background())
	require.NoError(t, err)
	text, ok := application.SplitPayload(payload)
	require.True(t, ok)
	assert.Equal(t, "navigate to dogs", text)
}

func TestHTTPSource_RejectsEmptyBodies(t *testing.T) {
	source := audio.NewHTTPSource(":0", 4, discardLogger())
	handler := source.Handler()

	for _, path := range []string{"/text", "/audio"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader("")))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestHTTPSource_AudioEndpointQueueFull(t *testing.T) {
	source := audio.NewHTTPSource(":0", 1, discardLogger())
	handler := source.Handler()

	codes := make([]int, 0, 2)
	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/audio", strings.NewReader("RIFF data")))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusAccepted, http.StatusServiceUnavailable}, codes)

	payload, err := source.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "RIFF data", string(payload))
}

func TestHTTPSource_ListenControls(t *testing.T) {
	source := audio.NewHTTPSource(":0", 4, discardLogger())
	handler := source.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/listen", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	control := &fakeControl{}
	source.Attach(control, fakePages{})

	tests := []struct {
		method string
		want   bool
	}{
		{http.MethodPost, true},
		{http.MethodPost, true},
		{http.MethodDelete, false},
		{http.MethodDelete, false},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/listen", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Listening bool `json:"listening"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.want, body.Listening)
		assert.Equal(t, tt.want, control.Listening())
	}
}

func TestHTTPSource_Page(t *testing.T) {
	source := audio.NewHTTPSource(":0", 4, discardLogger())
	source.Attach(&fakeControl{}, fakePages{})

	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var state application.PageState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "/stocks.html", state.Path)
	assert.Equal(t, "teal", state.Background)
}

func TestHTTPSource_HealthNotRunning(t *testing.T) {
	source := audio.NewHTTPSource(":0", 4, discardLogger())

	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"not_ready"`)
}

func TestRateLimiter(t *testing.T) {
	rl := audio.NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	rl := audio.NewRateLimiter(1, 20*time.Millisecond)

	assert.True(t, rl.Allow("client"))
	assert.False(t, rl.Allow("client"))

	assert.Eventually(t, func() bool {
		return rl.Allow("client")
	}, time.Second, 10*time.Millisecond)
}

func TestHTTPSource_RestartAfterStop(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", 4, discardLogger())
	ctx := context.Background()

	require.NoError(t, source.Start(ctx))
	require.NoError(t, source.Stop())
	require.NoError(t, source.Start(ctx))
	defer source.Stop()

	require.True(t, source.Inject("hello"))

	payload, err := source.Next(ctx)
	require.NoError(t, err)
	text, ok := application.SplitPayload(payload)
	require.True(t, ok)
	assert.Equal(t, "hello", text)
}
