//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package rlimit

import (
	"fmt"
	"syscall"
)

func ensureOpenFiles(want uint64) (uint64, error) {
	var rlimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("getrlimit: %w", err)
	}
	if uint64(rlimit.Cur) >= want {
		return uint64(rlimit.Cur), nil
	}
	ceiling, err := systemCeiling()
	if err != nil {
		return 0, err
	}
	if ceiling < want {
		want = ceiling
	}
	rlimit.Cur = target(rlimit.Max, want)
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("setrlimit: %w", err)
	}
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("getrlimit: %w", err)
	}
	return uint64(rlimit.Cur), nil
}
