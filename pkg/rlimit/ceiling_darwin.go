package rlimit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// On macOS, setrlimit fails if the soft limit exceeds kern.maxfilesperproc.
func systemCeiling() (uint64, error) {
	n, err := unix.SysctlUint32("kern.maxfilesperproc")
	if err != nil {
		return 0, fmt.Errorf("sysctl: %w", err)
	}
	return uint64(n), nil
}
