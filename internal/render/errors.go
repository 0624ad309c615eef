package render

import "fmt"

// ProcessingError reports input the renderer cannot work with, such as a
// degenerate crop or a mask that does not fit its crop. It is distinct
// from transient model-server failures so callers can answer with a
// client error instead of retrying.
type ProcessingError struct {
	Reason string
}

func (e *ProcessingError) Error() string {
	return "processing error: " + e.Reason
}

func processingErrorf(format string, args ...any) *ProcessingError {
	return &ProcessingError{Reason: fmt.Sprintf(format, args...)}
}
