package core

import "errors"

var (
	ErrBusNotHeld       = errors.New("bus lease not held")
	ErrBusy             = errors.New("bus busy")
	ErrPinInUse         = errors.New("pin already claimed")
	ErrNoDevice         = errors.New("no device at address")
	ErrTaskTableFull    = errors.New("task table full")
	ErrSchedulerStarted = errors.New("scheduler already started")
	ErrNotManualClock   = errors.New("scheduler clock cannot be driven")
	ErrStalled          = errors.New("tasks kept yielding without time advancing")
)

// TransientError marks a peripheral failure that the caller recovers from by
// skipping the current cycle: a bus nack, a malformed reply, an ADC timeout.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a TransientError. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err, or anything it wraps, is transient.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// InitError is returned by Scheduler.Start when a task fails to bring up its
// peripheral. Nothing runs after one.
type InitError struct {
	Task string
	Err  error
}

func (e *InitError) Error() string {
	return "init " + e.Task + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
