package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, so a workspace or connection id set once
// at the edge (HTTP handler, WebSocket session) shows up on every log line below it.
type LogFields struct {
	WorkspaceID  *int64  // Workspace the operation targets
	TaskID       *int64  // Task the operation targets
	ConnectionID *string // Real-time connection id
	Method       *string // Real-time method (e.g., "UpdateTaskOrder")
	Component    string  // Component name (e.g., "taskroom.realtime.session")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.WorkspaceID != nil {
		result.WorkspaceID = next.WorkspaceID
	}
	if next.TaskID != nil {
		result.TaskID = next.TaskID
	}
	if next.ConnectionID != nil {
		result.ConnectionID = next.ConnectionID
	}
	if next.Method != nil {
		result.Method = next.Method
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}
