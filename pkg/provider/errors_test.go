package provider

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   Kind
	}{
		{http.StatusTooManyRequests, "", KindRateLimit},
		{http.StatusTooManyRequests, `{"error":"RESOURCE_EXHAUSTED"}`, KindQuota},
		{http.StatusUnauthorized, "", KindUnauthorized},
		{http.StatusForbidden, "nope", KindUnauthorized},
		{http.StatusNotFound, "", KindNotFound},
		{http.StatusBadRequest, "API key not valid", KindInvalidCredential},
		{http.StatusBadRequest, "prompt blocked by safety system", KindSafety},
		{http.StatusBadRequest, "width must be a multiple of 16", KindInvalidInput},
		{http.StatusBadGateway, "", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d %s", tt.status, tt.body), func(t *testing.T) {
			e := FromHTTPStatus("together", tt.status, []byte(tt.body))
			assert.Equal(t, tt.want, e.Kind)
			assert.Equal(t, tt.status, e.StatusCode)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindRateLimit, KindOf(errors.New("Error: 429 Too Many Requests")))
	assert.Equal(t, KindSafety, KindOf(fmt.Errorf("wrapped: %w", NewError("gemini", KindSafety, "x", nil))))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("gemini", nil))

	base := errors.New("quota exceeded")
	err := Wrap("gemini", base)
	var pe *Error
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, KindQuota, pe.Kind)
	assert.ErrorIs(t, err, base)

	typed := NewError("gemini", KindSafety, "blocked", nil)
	assert.Same(t, typed, Wrap("other", typed))
}

func TestError_Error(t *testing.T) {
	e := FromHTTPStatus("together", http.StatusTooManyRequests, []byte("slow down"))
	assert.Equal(t, "together: rate_limit (status=429): slow down", e.Error())
	assert.Equal(t, "gemini: safety: boom", NewError("gemini", KindSafety, "", errors.New("boom")).Error())
}

func TestStripVendorPrefix(t *testing.T) {
	assert.Equal(t, "hello", StripVendorPrefix("[A]: [B] hello"))
	assert.Equal(t, "no prefix [kept]", StripVendorPrefix("no prefix [kept]"))
}
