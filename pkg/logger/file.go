package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/brimdata/nibs/pkg/fs"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type FileMode string

const (
	// FileModeAppend appends to an existing log file.
	FileModeAppend FileMode = "append"
	// FileModeTruncate truncates an existing log file.  This is the default.
	FileModeTruncate FileMode = "truncate"
	// FileModeRotate rotates log files by size.
	FileModeRotate FileMode = "rotate"
)

func (m *FileMode) Set(s string) error {
	switch FileMode(s) {
	case FileModeAppend, FileModeTruncate, FileModeRotate:
		*m = FileMode(s)
	case "":
		*m = FileModeTruncate
	default:
		return fmt.Errorf("invalid file mode: %s", s)
	}
	return nil
}

func (m *FileMode) UnmarshalText(text []byte) error {
	return m.Set(string(text))
}

func (m FileMode) String() string {
	return string(m)
}

// OpenFile returns a WriteSyncer for path, which may also be one of
// "stdout", "stderr" or "/dev/null".
func OpenFile(path string, mode FileMode) (zapcore.WriteSyncer, error) {
	switch path {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr", "":
		return zapcore.Lock(os.Stderr), nil
	case "/dev/null":
		return zapcore.AddSync(io.Discard), nil
	}
	switch mode {
	case FileModeRotate:
		return logrotate(path)
	case FileModeAppend:
		return fs.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	default:
		return fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	}
}

func logrotate(path string) (zapcore.WriteSyncer, error) {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, err
	}
	// lumberjack.Logger is safe for concurrent use.
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}), nil
}
