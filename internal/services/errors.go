package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks failures talking to the metadata tool process:
	// spawn failures, broken pipes, streams closed mid-response.
	ErrTransport = errors.New("transport error")
	// ErrProtocol marks responses that are missing or cannot be parsed.
	ErrProtocol = errors.New("protocol error")
	// ErrExternalTool marks failures the metadata tool itself reported.
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify returns a short label for the marker carried by err.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrExternalTool):
		return "tool"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "io"
	}
}

// FileError attaches the originating file path to an error.
type FileError struct {
	Path string
	Err  error
}

// WithPath wraps err in a FileError unless it already carries a path.
func WithPath(path string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FileError
	if errors.As(err, &fe) {
		return err
	}
	return &FileError{Path: path, Err: err}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%q: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
