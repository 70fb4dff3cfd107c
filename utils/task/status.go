package task

import "fmt"

// Code classifies the outcome a Task finished with.
type Code int

const (
	OK Code = iota
	Canceled
	Unknown
	InvalidArgument
	DeadlineExceeded
	FailedPrecondition
	Internal
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case Canceled:
		return "Canceled"
	case Unknown:
		return "Unknown"
	case InvalidArgument:
		return "InvalidArgument"
	case DeadlineExceeded:
		return "DeadlineExceeded"
	case FailedPrecondition:
		return "FailedPrecondition"
	case Internal:
		return "Internal"
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Status is the terminal result of a Task. The zero value is OK.
type Status struct {
	code Code
	msg  string
}

// StatusOK is the status of a task that finished successfully.
var StatusOK = Status{}

func NewStatus(code Code, msg string) Status {
	return Status{code: code, msg: msg}
}

func Errorf(code Code, format string, args ...interface{}) Status {
	return Status{code: code, msg: fmt.Sprintf(format, args...)}
}

func (s Status) OK() bool {
	return s.code == OK
}

func (s Status) Code() Code {
	return s.code
}

func (s Status) Message() string {
	return s.msg
}

func (s Status) String() string {
	if s.code == OK {
		return "OK"
	}
	if s.msg == "" {
		return s.code.String()
	}
	return s.code.String() + ": " + s.msg
}

// Err adapts s to the error interface. It returns nil for an OK
// status.
func (s Status) Err() error {
	if s.code == OK {
		return nil
	}
	return &statusError{s}
}

type statusError struct {
	status Status
}

func (e *statusError) Error() string {
	return e.status.String()
}
