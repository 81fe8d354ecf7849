package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs swaps the default logger for one writing JSON to a buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/gate", nil)

	RespondWithJSON(w, r, http.StatusOK, map[string]any{"busy": true, "queued": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"busy":true,"queued":2}`, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	r = r.WithContext(WithTraceID(r.Context(), "0123456789abcdef0123456789abcdef"))

	RespondWithError(w, r, http.StatusBadRequest, "Missing prompt in form data")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Missing prompt in form data", resp.Error)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", resp.TraceID)
	assert.NotContains(t, w.Body.String(), "400", "status code is not serialized")
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error logs at error", status: http.StatusBadGateway, wantLevel: "ERROR"},
		{name: "client error logs at debug", status: http.StatusConflict, wantLevel: "DEBUG"},
		{name: "elevated client error logs at warn", status: http.StatusConflict, opts: []ResponseOption{WithElevatedLogLevel()}, wantLevel: "WARN"},
		{name: "rate limit logs at warn", status: http.StatusTooManyRequests, wantLevel: "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
			err := errors.New("upstream rejected ?key=supersecretvalue")

			RespondWithErrorAndLog(w, r, tt.status, "Image generation failed", err, tt.opts...)

			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "supersecretvalue")
			assert.Contains(t, w.Body.String(), "Image generation failed")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "API error response", entry["msg"])
			assert.NotContains(t, entry["error"], "supersecretvalue")
			assert.Contains(t, entry["error"], "[REDACTED_KEY]")
		})
	}
}
