// Package simerr defines the structured error type shared by the simulator packages.
package simerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels wrapped by Error. Match them with errors.Is.
var (
	// ErrNoStore indicates a component was used without the state store it
	// must be wired to. It signals a programming defect, not a runtime condition.
	ErrNoStore = errors.New("simulation store not provided")

	// ErrAlreadyRunning indicates automatic stepping was started twice.
	ErrAlreadyRunning = errors.New("simulation already running")

	// ErrAutoStepActive indicates a manual step was requested while
	// automatic stepping is active.
	ErrAutoStepActive = errors.New("manual stepping disabled while simulation is running")

	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidDelay indicates a stepping delay outside the configured bounds.
	ErrInvalidDelay = errors.New("invalid step delay")

	// ErrUnknownFormat indicates an unsupported report export format.
	ErrUnknownFormat = errors.New("unknown export format")
)

// Kind says which side of the simulator rejected an operation.
type Kind string

const (
	// KindValidation marks arguments rejected before any state changed,
	// such as an out-of-range delay or an unknown export format.
	KindValidation Kind = "validation"

	// KindState marks calls that are valid in general but not in the
	// current lifecycle, such as a manual step while auto-stepping.
	KindState Kind = "state"

	// KindConfiguration marks a config file, scenario or option set that
	// could not be turned into a working engine.
	KindConfiguration Kind = "configuration"

	// KindInternal marks failures of wiring the simulator does not expect,
	// such as a meter refusing to create an instrument.
	KindInternal Kind = "internal"
)

// Error is returned by the engine, simulator, config and report packages.
// Callers match the sentinel with errors.Is(err, ErrAutoStepActive) or the
// whole class with errors.Is(err, &Error{Kind: KindState}).
type Error struct {
	// Op names the rejecting call, e.g. "Engine.Step" or "config.Validate".
	Op string

	Kind Kind

	// Err is usually one of the sentinels above, possibly wrapped with detail.
	Err error

	// Field names the setting or argument at fault and Value its rejected
	// value. Both are empty when the failure is not tied to one input.
	Field string
	Value any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("redsim: ")
	b.WriteString(e.Op)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	b.WriteString(" (")
	b.WriteString(string(e.Kind))
	switch {
	case e.Field != "" && e.Value != nil:
		fmt.Fprintf(&b, ", %s=%v", e.Field, e.Value)
	case e.Field != "":
		b.WriteString(", field=")
		b.WriteString(e.Field)
	}
	b.WriteString(")")
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a target *Error by Kind, and by Op when the target sets one.
// Any other target is compared against the wrapped error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind && (t.Op == "" || t.Op == e.Op)
}

// At returns a copy of e blamed on the named field and value.
func (e *Error) At(field string, value any) *Error {
	c := *e
	c.Field = field
	c.Value = value
	return &c
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewValidationError wraps err as a KindValidation failure of op.
func NewValidationError(op string, err error) *Error {
	return newError(KindValidation, op, err)
}

// NewStateError wraps err as a KindState failure of op.
func NewStateError(op string, err error) *Error {
	return newError(KindState, op, err)
}

// NewConfigurationError wraps err as a KindConfiguration failure of op.
func NewConfigurationError(op string, err error) *Error {
	return newError(KindConfiguration, op, err)
}

// NewInternalError wraps err as a KindInternal failure of op.
func NewInternalError(op string, err error) *Error {
	return newError(KindInternal, op, err)
}
