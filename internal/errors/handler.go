package errors

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
)

// Process exit codes of the edusight commands
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitConfig    = 2
	ExitNoInput   = 3
	ExitCancelled = 130
)

// ErrorHandler reports command failures and maps them to exit codes
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// Handle logs err with its context and returns the exit code
func (h *ErrorHandler) Handle(ctx context.Context, err error) int {
	if err == nil {
		return ExitOK
	}

	code := ExitCode(err)
	attrs := []any{
		slog.String("error", err.Error()),
		slog.Int("exit_code", code),
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		attrs = append(attrs, slog.String("error_type", string(appErr.Type)))
		if len(appErr.Context) > 0 {
			attrs = append(attrs, slog.Any("context", appErr.Context))
		}
	}
	if h.includeStack {
		attrs = append(attrs, slog.String("stack", string(debug.Stack())))
	}

	if code == ExitCancelled {
		h.logger.WarnContext(ctx, "command cancelled", attrs...)
		return code
	}
	h.logger.ErrorContext(ctx, "command failed", attrs...)
	return code
}

// ExitCode maps an error chain to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitCancelled
	case IsType(err, ErrTypeConfig), IsType(err, ErrTypeValidation):
		return ExitConfig
	case IsType(err, ErrTypeNotFound):
		return ExitNoInput
	default:
		return ExitFailure
	}
}
