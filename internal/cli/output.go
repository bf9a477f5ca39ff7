package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/zoobzio/qframe"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query or database failure
	ExitCommandError = 2 // Command error (bad config, unknown connection, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Response is the JSON envelope for command output.
type Response struct {
	Status string `json:"status"`         // "ok"
	Data   any    `json:"data,omitempty"` // success payload
}

// Success outputs a result in the configured format. Text output relies on
// the value's String method.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "ok",
			Data:   jsonSafe(data),
		})
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// jsonSafe turns byte cells into strings so they are not base64 encoded.
func jsonSafe(data any) any {
	t, ok := data.(qframe.Table)
	if !ok {
		return data
	}
	rows := make([]qframe.Row, len(t.Rows))
	for i, row := range t.Rows {
		out := make(qframe.Row, len(row))
		for j, v := range row {
			if b, ok := v.([]byte); ok {
				out[j] = string(b)
				continue
			}
			out[j] = v
		}
		rows[i] = out
	}
	return qframe.Table{Columns: t.Columns, Rows: rows}
}
