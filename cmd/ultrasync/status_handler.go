package main

import (
	"log/slog"

	"github.com/nebari-dev/ultrasync/pkg/status"
)

// statusLogHandler returns a status.Handler that logs updates using slog
func statusLogHandler(logger *slog.Logger) status.Handler {
	return func(update status.Update) {
		attrs := []any{
			"message", update.Message,
		}

		if update.Zone != "" {
			attrs = append(attrs, "zone", update.Zone)
		}

		if update.Action != "" {
			attrs = append(attrs, "action", update.Action)
		}

		if update.Record != "" {
			attrs = append(attrs, "record", update.Record)
		}

		// Log at appropriate level
		switch update.Level {
		case status.LevelInfo:
			logger.Info("Status", attrs...)
		case status.LevelProgress:
			logger.Info("Progress", attrs...)
		case status.LevelSuccess:
			logger.Info("Success", attrs...)
		case status.LevelWarning:
			logger.Warn("Warning", attrs...)
		case status.LevelError:
			logger.Error("Error", attrs...)
		default:
			logger.Info("Status", attrs...)
		}
	}
}
