package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The collect operation failed
	ExitCommandError = 2 // Usage or configuration error
)

// ExitError carries the exit code the process should end with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error: ExitSuccess for
// nil, ExitFailure for errors that are not an ExitError.
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

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Result is the structured form of a collect run.
type Result struct {
	Run   string `json:"run" yaml:"run"`
	Count int    `json:"count" yaml:"count"`
	Value any    `json:"value" yaml:"value"`
}

// Render writes the result in the format. Text output is only the
// collected value: a joined string as is, a list one element per
// line.
func Render(w io.Writer, format string, res Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		switch val := res.Value.(type) {
		case []any:
			for _, item := range val {
				if _, err := fmt.Fprintln(w, item); err != nil {
					return err
				}
			}
			return nil
		default:
			_, err := fmt.Fprintln(w, val)
			return err
		}
	default:
		return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
	}
}
