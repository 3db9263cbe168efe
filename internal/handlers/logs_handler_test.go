package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogsHandler_ReceiveFrontendLogs(t *testing.T) {
	var out bytes.Buffer
	handler := NewLogsHandler(&out)
	router := gin.New()
	router.POST("/api/v1/logs", handler.ReceiveFrontendLogs)

	w := postJSON(router, "/api/v1/logs", `{"logs":[
		{"timestamp":"2026-01-01T00:00:00Z","level":"WARNING","message":"slow render","context":{"route":"/projects","level":"ignored"}},
		{"timestamp":"2026-01-01T00:00:01Z","level":"error","message":"boom"}
	]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"received":2}`, w.Body.String())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "warn", first["level"])
	assert.Equal(t, "slow render", first["msg"])
	assert.Equal(t, "spa", first["service"])
	assert.Equal(t, "/projects", first["route"])
	assert.Equal(t, "2026-01-01T00:00:00Z", first["client_ts"])
	assert.NotEmpty(t, first["timestamp"])

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "error", second["level"])
	assert.Equal(t, "boom", second["msg"])
}

func TestLogsHandler_DebugEntriesAreKept(t *testing.T) {
	var out bytes.Buffer
	handler := NewLogsHandler(&out)
	router := gin.New()
	router.POST("/api/v1/logs", handler.ReceiveFrontendLogs)

	w := postJSON(router, "/api/v1/logs", `{"logs":[{"level":"debug","message":"mounted","context":{"service":"spoofed"}}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "spa", line["service"])
	assert.NotContains(t, line, "client_ts")
}

func TestLogsHandler_InvalidRequests(t *testing.T) {
	handler := NewLogsHandler(&bytes.Buffer{})
	router := gin.New()
	router.POST("/api/v1/logs", handler.ReceiveFrontendLogs)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"logs":`},
		{name: "missing logs", body: `{}`},
		{name: "empty batch", body: `{"logs":[]}`},
		{name: "missing message", body: `{"logs":[{"level":"info"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/v1/logs", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestNormalizeLevel(t *testing.T) {
	assert.Equal(t, "warn", normalizeLevel(" Warning "))
	assert.Equal(t, "error", normalizeLevel("ERROR"))
	assert.Equal(t, "info", normalizeLevel("trace"))
	assert.Equal(t, "info", normalizeLevel(""))
}
