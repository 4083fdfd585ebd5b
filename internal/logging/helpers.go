package logging

import (
	"maps"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

// WithFields attaches fields when the logger implements FieldsLogger and
// returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// WithRequest annotates a logger with request correlation fields. Empty values
// are skipped.
func WithRequest(logger interfaces.Logger, requestID, method, path string) interfaces.Logger {
	fields := map[string]any{}
	if requestID != "" {
		fields["request_id"] = requestID
	}
	if method != "" {
		fields["method"] = method
	}
	if path != "" {
		fields["path"] = path
	}
	return WithFields(logger, fields)
}
