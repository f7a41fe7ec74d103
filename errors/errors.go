package errors

import (
	"errors"
	"fmt"
)

var (
	Is     = errors.Is
	Join   = errors.Join
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New

	ErrClosed            = errors.New("closed")
	ErrNotEnoughBytes    = errors.New("not enough bytes")
	ErrTooLarge          = errors.New("frame too large")
	ErrNotFound          = errors.New("not found")
	ErrBadArgument       = errors.New("bad argument")
	ErrDuplicate         = errors.New("duplicate")
	ErrInvalidType       = errors.New("invalid type")
	ErrWriteAfterEnd     = errors.New("write after end")
	ErrPushAfterEOF      = errors.New("push after EOF")
	ErrUnsupportedSource = errors.New("source supports neither pull nor push reads")

	ErrStopBits = errors.New("stop bits")
)

// TypeError reports a configuration value of the wrong type.
type TypeError struct {
	Option string
	Value  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%v is not a Boolean value. `%s` option must be Boolean (`true` by default).", e.Value, e.Option)
}

func (e *TypeError) Unwrap() error {
	return ErrInvalidType
}

func Must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}
