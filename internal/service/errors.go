package service

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrDeviceNotFound     = errors.New("system not found")
	ErrAlreadyConnected   = errors.New("user is already connected to this system")
	ErrNotConnected       = errors.New("user is not connected to this system")
	ErrRateLimited        = errors.New("too many verification requests")
	ErrUnsupportedImage   = errors.New("only jpeg and png images are accepted")
)

// PartialApplyError reports a two-step write where the first step committed
// and the second did not. The store offers no cross-row atomicity for these
// operations; callers get the step name so the divergence is visible rather
// than swallowed. The nightly reconciler repairs the flag side later.
type PartialApplyError struct {
	Step string
	Err  error
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf("partially applied: %s step failed: %v", e.Step, e.Err)
}

func (e *PartialApplyError) Unwrap() error {
	return e.Err
}
