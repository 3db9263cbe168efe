package recaptcha

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/portfolio-site/portfolio-api/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T, body string) *Verifier {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		assert.Equal(t, "token", r.PostForm.Get("response"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	v := NewVerifier("secret", httpclient.NewStandardClient())
	v.verifyURL = server.URL
	return v
}

func TestVerify_Disabled(t *testing.T) {
	v := NewVerifier("", httpclient.NewStandardClient())
	assert.False(t, v.Enabled())
	assert.NoError(t, v.Verify(context.Background(), "", ""))
}

func TestVerify_MissingToken(t *testing.T) {
	v := NewVerifier("secret", httpclient.NewStandardClient())
	assert.ErrorIs(t, v.Verify(context.Background(), "", ""), ErrVerificationFailed)
}

func TestVerify_Success(t *testing.T) {
	v := newTestVerifier(t, `{"success": true, "hostname": "example.dev"}`)
	assert.NoError(t, v.Verify(context.Background(), "token", "10.0.0.1"))
}

func TestVerify_Rejected(t *testing.T) {
	v := newTestVerifier(t, `{"success": false, "error-codes": ["timeout-or-duplicate"]}`)
	err := v.Verify(context.Background(), "token", "")
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Contains(t, err.Error(), "timeout-or-duplicate")
}

func TestVerify_BadJSON(t *testing.T) {
	v := newTestVerifier(t, `not json`)
	err := v.Verify(context.Background(), "token", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVerificationFailed)
}

func TestVerify_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	t.Cleanup(server.Close)

	v := NewVerifier("secret", httpclient.NewStandardClient())
	v.verifyURL = server.URL

	err := v.Verify(context.Background(), "token", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVerificationFailed)
	assert.NotContains(t, err.Error(), "decode")

	var statusErr *httpclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}
