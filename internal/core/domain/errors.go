package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork          = errors.New("directory request failed")
	ErrDecode           = errors.New("credential could not be decoded")
	ErrForbidden        = errors.New("access forbidden")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotConfirmed     = errors.New("action not confirmed")
	ErrKeyNotFound      = errors.New("key not found")
	ErrUserNotFound     = errors.New("user not found")
)

// NetworkError describes a failed call to the user-directory service: either
// the transport failed (Status == 0) or the service answered with a non-2xx
// status or an unusable payload.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
}

// Is makes every NetworkError match ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func isNetwork(err error) bool          { return errors.Is(err, ErrNetwork) }
func isNotAuthenticated(err error) bool { return errors.Is(err, ErrNotAuthenticated) }
