package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("x"), http.StatusBadRequest},
		{NotFoundWrap(nil, "x"), http.StatusNotFound},
		{RateLimit("x"), http.StatusTooManyRequests},
		{Internal("x"), http.StatusInternalServerError},
		{RenderWrap(stderrors.New("svg"), "x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if tt.err.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", tt.err.StatusCode, tt.want)
			}
		})
	}
}

func TestWrap_Unwraps(t *testing.T) {
	cause := stderrors.New("bad index")
	err := BadRequestWrap(cause, "invalid date_index")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if err.Details != "bad index" {
		t.Errorf("details = %q, want cause text", err.Details)
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, testLogger(), fmt.Errorf("lookup: %w", BadRequest("nope")), "req-1")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Success || resp.Error.Code != string(CodeBadRequest) || resp.Error.RequestID != "req-1" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestWriteError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, testLogger(), stderrors.New("secret internals"), "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if body := w.Body.String(); strings.Contains(body, "secret internals") {
		t.Errorf("plain error text leaked: %s", body)
	}
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, map[string]int{"n": 1}, map[string]string{"Cache-Control": "no-store"})

	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("custom header not set")
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Error("content type not set")
	}
}
