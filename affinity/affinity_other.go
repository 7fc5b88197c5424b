//go:build !linux

package affinity

import "errors"

var errUnsupported = errors.New("CPU affinity is only supported on linux")

// Set is not supported on this platform
func Set(mask uintptr) error {
	return errUnsupported
}

// Get is not supported on this platform
func Get() (uintptr, error) {
	return 0, errUnsupported
}
