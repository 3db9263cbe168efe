package middleware

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
)

const (
	routeUnmatched = "unmatched"
	routeSPA       = "spa"
)

// redactedQueryKeys never reach the request log
var redactedQueryKeys = map[string]bool{
	"token": true, "password": true, "secret": true, "key": true,
	"auth": true, "api_key": true, "apikey": true,
	"captcha": true, "recaptchatoken": true, "session": true,
}

// routeLabel returns the route template used as a metric label.
// Requests served by the NoRoute handler share one label per kind.
func routeLabel(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return routeUnmatched
	}
	return routeSPA
}

// ObservabilityMiddleware records request metrics and logs API calls.
// Successful SPA page and asset loads are counted but not logged.
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		route := routeLabel(c)
		status := c.Writer.Status()
		duration := metrics.MeasureDuration(start)

		statusLabel := strconv.Itoa(status)
		metrics.HTTPRequestDuration.WithLabelValues(method, route, statusLabel).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, statusLabel).Inc()

		if route == routeSPA && status < 400 {
			return
		}

		logger.LogHTTPRequest(c.Request.Context(), method, c.Request.URL.Path, status, duration, requestFields(c, status)...)
	}
}

func requestFields(c *gin.Context, status int) []zap.Field {
	fields := []zap.Field{
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.Int("response_size", c.Writer.Size()),
	}

	if session, err := GetAdminSession(c); err == nil {
		fields = append(fields, zap.String("admin_subject", session.Subject))
	}

	if status < 400 {
		return fields
	}

	if params := routeParams(c.Params); len(params) > 0 {
		fields = append(fields, zap.Any("route_params", params))
	}
	if query := sanitizedQuery(c.Request.URL.Query()); len(query) > 0 {
		fields = append(fields, zap.Any("query_params", query))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("error", c.Errors.String()))
	}

	return fields
}

func routeParams(params gin.Params) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for _, p := range params {
		out[p.Key] = p.Value
	}
	return out
}

// sanitizedQuery keeps the first value of every non-sensitive parameter
func sanitizedQuery(query url.Values) map[string]string {
	out := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) == 0 || redactedQueryKeys[strings.ToLower(key)] {
			continue
		}
		out[key] = values[0]
	}
	return out
}
