package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// Redactor strips PII from arbitrary payloads before they are logged.
// Satisfied by the privacy redaction engine.
type Redactor interface {
	RedactAny(raw any) any
}

// RedactingLoggerMiddleware logs requests with structured fields. Query
// parameters pass through the redactor first, so an email or token in a query
// string never reaches the log stream. Paths in excludedPaths are not logged
// at all; the probe and scrape endpoints would otherwise drown the output.
func RedactingLoggerMiddleware(logger *slog.Logger, redactor Redactor, excludedPaths []string) gin.HandlerFunc {
	excluded := make(map[string]struct{}, len(excludedPaths))
	for _, path := range excludedPaths {
		excluded[path] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if _, skip := excluded[path]; skip {
			return
		}

		attrs := []any{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}

		if rawQuery := c.Request.URL.Query(); len(rawQuery) > 0 {
			query := make(map[string]any, len(rawQuery))
			for key, values := range rawQuery {
				if len(values) == 1 {
					query[key] = values[0]
					continue
				}
				items := make([]any, len(values))
				for i, value := range values {
					items[i] = value
				}
				query[key] = items
			}
			attrs = append(attrs, slog.Any("query", redactor.RedactAny(query)))
		}

		logger.Info("http request", attrs...)
	}
}
