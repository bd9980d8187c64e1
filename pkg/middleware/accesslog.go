package middleware

import (
	"log/slog"

	"github.com/trellis-web/trellis/pkg/server"
)

// AccessLog creates a recorder that writes one structured access-log line
// per dispatch. Useful when access logs should go to a different handler
// than the dispatcher's own operational log.
func AccessLog(logger *slog.Logger) server.Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "access")

	return func(rec server.Record) {
		attrs := []any{
			"method", rec.Method,
			"path", rec.Path,
			"source", rec.SourceAddr,
			"duration", rec.Duration,
		}
		if rec.Route != "" {
			attrs = append(attrs, "route", rec.Route)
		}
		if rec.Hijacked {
			attrs = append(attrs, "hijacked", true)
		} else {
			attrs = append(attrs, "status", rec.Status)
		}

		if rec.Err != nil {
			attrs = append(attrs, "error", rec.Err)
			logger.Warn("access", attrs...)
			return
		}
		logger.Info("access", attrs...)
	}
}
