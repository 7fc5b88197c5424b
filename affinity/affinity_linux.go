//go:build linux

package affinity

import (
	"fmt"
	"syscall"
	"unsafe"
)

// Set sets the CPU affinity mask of the program to run on the specified
// cores
func Set(mask uintptr) error {

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return fmt.Errorf("failed to set CPU affinity: %w", err)
	}

	return nil
}

// Get gets the current CPU affinity mask the program is running on
func Get() (uintptr, error) {

	var mask uintptr

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return 0, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	return mask, nil
}
