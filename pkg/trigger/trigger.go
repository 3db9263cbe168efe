package trigger

import (
	"context"
	"time"

	"github.com/portfolio-site/portfolio-api/pkg/circuitbreaker"
	"github.com/portfolio-site/portfolio-api/pkg/httpclient"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"github.com/portfolio-site/portfolio-api/pkg/retry"
	"go.uber.org/zap"
)

const asyncTimeout = 30 * time.Second

// Webhook posts JSON events to a configured URL.
// A Webhook with an empty URL is disabled and every call is a no-op.
type Webhook struct {
	url         string
	httpClient  httpclient.Client
	breaker     *circuitbreaker.Breaker
	retryConfig retry.Config
}

// NewWebhook creates a webhook trigger guarded by its own circuit breaker
func NewWebhook(url string, httpClient httpclient.Client) *Webhook {
	return &Webhook{
		url:         url,
		httpClient:  httpClient,
		breaker:     circuitbreaker.New("contact-webhook", circuitbreaker.Settings{}),
		retryConfig: retry.WebhookConfig(),
	}
}

// Enabled reports whether a URL is configured
func (w *Webhook) Enabled() bool {
	return w != nil && w.url != ""
}

// State returns the circuit breaker state for health reporting
func (w *Webhook) State() string {
	if !w.Enabled() {
		return "disabled"
	}
	return w.breaker.State()
}

// Send posts payload, retrying transient failures
func (w *Webhook) Send(ctx context.Context, event string, payload any) error {
	if !w.Enabled() {
		return nil
	}

	start := time.Now()
	err := retry.Do(ctx, w.retryConfig, "webhook."+event, func() error {
		return w.breaker.Run(func() error {
			return httpclient.PostJSON(ctx, w.httpClient, w.url, payload)
		})
	})
	duration := metrics.MeasureDuration(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.NotificationsTotal.WithLabelValues("webhook", status).Inc()
	logger.LogAPICall(ctx, "webhook", event, status, duration, zap.Error(err))

	return err
}

// SendAsync sends payload in the background. Failures are logged and
// never reach the caller.
func (w *Webhook) SendAsync(event string, payload any) {
	if !w.Enabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := w.Send(ctx, event, payload); err != nil {
			logger.Error("Webhook delivery failed",
				zap.String("event", event),
				zap.Error(err))
		}
	}()
}
