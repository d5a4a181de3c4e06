// Package rlimit raises the limit on open files for commands that keep many
// files open at once.
package rlimit

// Reserve is the number of descriptors assumed to be in use apart from the
// ones a caller asks for, such as the standard streams and a log file.
const Reserve = 16

// EnsureOpenFiles raises the soft limit on open files, if needed, so that
// want more files can be opened, and returns the soft limit in effect.  The
// soft limit is never raised past the hard limit, so the result may fall
// short of want+Reserve without an error.
func EnsureOpenFiles(want uint64) (uint64, error) {
	return ensureOpenFiles(want + Reserve)
}

// target returns the soft limit that admits want files without passing the
// hard limit.  Rlimit fields are signed on some systems.
func target[T ~int64 | ~uint64](hard T, want uint64) T {
	if uint64(hard) > want {
		return T(want)
	}
	return hard
}
