package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTerminal is returned for any action on a wizard that has already submitted.
var ErrTerminal = errors.New("wizard already submitted")

// ValidationError blocks a forward transition or a field update. Err, when
// set, is the sentinel behind the rejection.
type ValidationError struct {
	Step   Step
	Fields []string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("step %s: invalid fields %s", e.Step, strings.Join(e.Fields, ", "))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError reports a failed submission. The wizard stays on its final
// step, so the same forward action can be retried.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "submit demo request: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
