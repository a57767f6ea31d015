package solve

import "fmt"

// PreconditionError reports a model that cannot be solved. It is returned
// before any side effect takes place.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "not ready to solve: " + e.Reason
}

// DiagnosticsParseError reports a malformed diagnostic log. It points at an
// upstream logging defect and is never recovered from.
type DiagnosticsParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *DiagnosticsParseError) Error() string {
	return fmt.Sprintf("diagnostic log line %d %q: %s", e.Line, e.Text, e.Reason)
}
