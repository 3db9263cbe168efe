package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FrontendLogFile is the file the SPA log batches are appended to
const FrontendLogFile = "frontend.log"

var frontendLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// reservedLogKeys are written by the sink and cannot come from client context
var reservedLogKeys = map[string]bool{
	"timestamp": true, "level": true, "msg": true, "service": true, "client_ts": true,
}

type LogsHandler struct {
	sink *zap.Logger
}

type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message" binding:"required"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

type LogBatchRequest struct {
	Logs []LogEntry `json:"logs" binding:"required,max=100,dive"`
}

// NewLogsHandler writes received entries to out as JSON lines with the same
// keys as the backend logs. In production out is a rotating file writer.
func NewLogsHandler(out io.Writer) *LogsHandler {
	return &LogsHandler{sink: logger.NewJSONSink(out, "spa")}
}

func (h *LogsHandler) ReceiveFrontendLogs(c *gin.Context) {
	var req LogBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if rejectOversizedBody(c, err) {
			return
		}
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if len(req.Logs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No logs provided"})
		return
	}

	if err := h.writeLogs(req.Logs); err != nil {
		logger.Error("Failed to write frontend logs", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to write logs", err)
		return
	}

	logger.Debug("Received frontend logs", zap.Int("count", len(req.Logs)))
	c.JSON(http.StatusOK, gin.H{"success": true, "received": len(req.Logs)})
}

func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	if _, ok := frontendLevels[level]; !ok {
		return "info"
	}
	return level
}

func (h *LogsHandler) writeLogs(logs []LogEntry) error {
	for _, entry := range logs {
		level := normalizeLevel(entry.Level)

		fields := make([]zap.Field, 0, len(entry.Context)+1)
		if entry.Timestamp != "" {
			fields = append(fields, zap.String("client_ts", entry.Timestamp))
		}
		for key, value := range entry.Context {
			if !reservedLogKeys[key] {
				fields = append(fields, zap.Any(key, value))
			}
		}

		h.sink.Log(frontendLevels[level], entry.Message, fields...)
		metrics.FrontendLogEntries.WithLabelValues(level).Inc()
	}

	return h.sink.Sync()
}
