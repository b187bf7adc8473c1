package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrIndexNotReady, http.StatusServiceUnavailable},
		{ErrCatalogUnavailable, http.StatusServiceUnavailable},
		{ErrRebuildInProgress, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusCode(tc.err); got != tc.want {
			t.Errorf("HTTPStatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHTTPStatusCodeWrappedSentinel(t *testing.T) {
	err := fmt.Errorf("loading snapshot: %w", ErrIndexNotReady)
	if got := HTTPStatusCode(err); got != http.StatusServiceUnavailable {
		t.Errorf("wrapped sentinel mapped to %d, want 503", got)
	}
}

func TestAppErrorOverridesSentinelMapping(t *testing.T) {
	err := New(ErrInvalidInput, http.StatusUnprocessableEntity, "top_n out of range")
	if got := HTTPStatusCode(err); got != http.StatusUnprocessableEntity {
		t.Errorf("AppError mapped to %d, want 422", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("AppError does not unwrap to its sentinel")
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(ErrInternal, http.StatusInternalServerError, "shard %d failed", 3)
	if err.Message != "shard 3 failed" {
		t.Errorf("Message = %q", err.Message)
	}
}
