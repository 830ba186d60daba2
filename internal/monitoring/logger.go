package monitoring

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with calculator-specific helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger on stdout at the given level
func NewLogger(level slog.Level) *Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo creates a JSON logger writing to w
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip, requestID string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"request_id", requestID,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// CalculationLogger logs one SGPA or CGPA computation. The value is
// logged unrounded.
func (l *Logger) CalculationLogger(kind string, entries int, value float64, policy string, duration time.Duration) {
	l.Info("Calculation Completed",
		"kind", kind,
		"entries", entries,
		"value", value,
		"policy", policy,
		"duration_us", duration.Microseconds(),
	)
}

// CalculationRejected logs an input the core refused to aggregate
func (l *Logger) CalculationRejected(kind string, entries int, err error) {
	l.Warn("Calculation Rejected",
		"kind", kind,
		"entries", entries,
		"error", err.Error(),
	)
}

// ReportLogger logs a generated report. The student name is not logged.
func (l *Logger) ReportLogger(lines int, size int, duration time.Duration) {
	l.Info("Report Generated",
		"lines", lines,
		"bytes", size,
		"duration_ms", duration.Milliseconds(),
	)
}

// SecurityLogger logs security-related events
func (l *Logger) SecurityLogger(event, ip, userAgent string, details map[string]interface{}) {
	attrs := []any{
		"event", event,
		"ip", ip,
		"user_agent", userAgent,
	}

	for key, value := range details {
		attrs = append(attrs, key, value)
	}

	l.Warn("Security Event", attrs...)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

var startTime = time.Now()
