package trigger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/portfolio-site/portfolio-api/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastWebhook(url string) *Webhook {
	w := NewWebhook(url, httpclient.NewStandardClient())
	w.retryConfig.InitialDelay = time.Millisecond
	w.retryConfig.MaxDelay = time.Millisecond
	w.retryConfig.Jitter = false
	return w
}

func TestWebhook_Disabled(t *testing.T) {
	w := NewWebhook("", httpclient.NewStandardClient())
	assert.False(t, w.Enabled())
	assert.Equal(t, "disabled", w.State())
	assert.NoError(t, w.Send(context.Background(), "contact.created", nil))
	w.SendAsync("contact.created", nil)
}

func TestWebhook_Send(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		rw.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	w := fastWebhook(server.URL)
	require.NoError(t, w.Send(context.Background(), "contact.created", map[string]string{"id": "abc"}))
	assert.Equal(t, "abc", received["id"])
	assert.Equal(t, "closed", w.State())
}

func TestWebhook_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			rw.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		rw.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, fastWebhook(server.URL).Send(context.Background(), "contact.created", struct{}{}))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhook_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		rw.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	assert.Error(t, fastWebhook(server.URL).Send(context.Background(), "contact.created", struct{}{}))
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhook_StopsRetryingWhenCircuitOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		rw.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	w := fastWebhook(server.URL)
	err := w.Send(context.Background(), "contact.created", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is open")
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "open", w.State())
}
