package logging

import "log/slog"

// Process fields, attached once by NewLogger.
const (
	FieldService = "service"
	FieldVersion = "version"
)

// Request fields, attached by the logging middleware.
const (
	FieldRequestID  = "request_id"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldClientIP   = "client_ip"
	FieldDurationMS = "duration_ms"
)

// Domain fields shared by the sync, widget and provider layers.
const (
	FieldProvider = "provider"
	FieldLogin    = "login"
	FieldYear     = "year"
	FieldDate     = "date"
	FieldSize     = "size"
	FieldAction   = "action"
	FieldCount    = "count"
)

// WithCommon appends service/version fields when provided.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	if service != "" {
		attrs = append(attrs, slog.String(FieldService, service))
	}
	if version != "" {
		attrs = append(attrs, slog.String(FieldVersion, version))
	}
	return attrs
}
