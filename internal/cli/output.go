package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // Rejected operation (precondition failed, import rolled back, corrupted data)
	ExitCommandError = 2 // Command error (bad arguments, unreadable config, database cannot be opened)
)

// Error codes reported in CLI output.
const (
	ErrCodeRejected  = "E001" // operation refused by a precondition
	ErrCodeArgs      = "E002" // malformed argument
	ErrCodeConfig    = "E003" // configuration or logger setup failed
	ErrCodeStorage   = "E004" // a storage tier could not be opened or written
	ErrCodeImport    = "E005" // import failed and was rolled back
	ErrCodeCritical  = "E006" // import failed and the rollback failed too
	ErrCodeCorrupted = "E007" // stored state failed structural validation
	ErrCodeNoBackup  = "E008" // backup slot empty or unusable
)

// ExitError carries the process exit code a failed command should end with.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // printed by main when nothing else reported the failure
	Err     error  // cause, may be nil
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

// NewExitError returns an ExitError with no cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches code and message to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors without an
// ExitError in their chain count as rejections.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as a JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // warnings and verbose lines; nil means Writer
	Verbose   bool
}

// CLIResponse is the envelope every json-mode command prints.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the failure half of CLIResponse.
type CLIError struct {
	Code    string      `json:"code"` // ErrCode* value
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"` // e.g. a schema.Error
}

// Success prints data, wrapped in an "ok" envelope for json.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error prints a coded failure. Details are shown in text mode only
// with --verbose.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog prints a diagnostic line when --verbose is set. It never
// writes to stdout while an ErrWriter is configured, so json output stays
// parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter is where warnings go: ErrWriter, or Writer when unset.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
