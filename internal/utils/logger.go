package utils

import (
	"strings"

	"carpool/internal/logger"
)

// LogEvent writes a standardized module/action line tagged with request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(log logger.Logger, requestID, module, action, message string) {
	if log == nil {
		return
	}
	log.Info(message,
		"module", strings.ToUpper(module),
		"action", action,
		"request_id", strings.TrimSpace(requestID),
	)
}
