package respond

import (
	"github.com/gin-gonic/gin"

	"holiday-backend/internal/shared/telemetry"
)

// Context keys read for error logs. They mirror the keys the middleware
// package sets; respond cannot import it without a cycle.
const (
	requestIDKey = "requestId"
	filenameKey  = "filename"
	kindKey      = "artifactKind"
)

// ErrorResponse is the error envelope. Error is shown to users verbatim.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Error logs the failure and aborts with the envelope. 5xx are logged at
// error level, everything else at warn.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"route":      c.FullPath(),
		"method":     c.Request.Method,
		"request_id": c.GetString(requestIDKey),
	}
	for field, key := range map[string]string{"filename": filenameKey, "kind": kindKey} {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code, Details: details})
}
