// Package affinity pins the tracking process to a set of CPU cores, such as
// the fast cores of big.LITTLE ARM boards
package affinity

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"
)

// maxCores is the number of cores a mask can hold
const maxCores = int(unsafe.Sizeof(uintptr(0)) * 8)

// CoreMask calculates the core mask of the given CPU core numbers, eg:
// []int{4,5,6,7}
func CoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		mask |= 1 << core
	}

	return mask
}

// ParseCores parses a comma separated list of core numbers and ranges, eg:
// "4-7" or "0,2,4-5"
func ParseCores(s string) ([]int, error) {

	cores := make([]int, 0)

	for _, part := range strings.Split(s, ",") {

		part = strings.TrimSpace(part)

		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")

		first, err := strconv.Atoi(strings.TrimSpace(lo))

		if err != nil {
			return nil, fmt.Errorf("invalid core %q", part)
		}

		last := first

		if isRange {
			last, err = strconv.Atoi(strings.TrimSpace(hi))

			if err != nil || last < first {
				return nil, fmt.Errorf("invalid core range %q", part)
			}
		}

		if first < 0 || last >= maxCores {
			return nil, fmt.Errorf("core out of range %q", part)
		}

		for c := first; c <= last; c++ {
			cores = append(cores, c)
		}
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("no cores given")
	}

	return cores, nil
}

// SetCores pins the program to the cores listed in s, see ParseCores
func SetCores(s string) error {

	cores, err := ParseCores(s)

	if err != nil {
		return err
	}

	return Set(CoreMask(cores))
}
