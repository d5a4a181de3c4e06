// Package logger builds zap loggers from command-line configuration.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level   zapcore.Level `yaml:"level"`
	Path    string        `yaml:"path"`
	Mode    FileMode      `yaml:"mode"`
	DevMode bool          `yaml:"devmode"`
}

// New returns a logger writing JSON lines to the destination in c.
func New(c Config) (*zap.Logger, error) {
	ws, err := OpenFile(c.Path, c.Mode)
	if err != nil {
		return nil, err
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), ws, c.Level)
	opts := []zap.Option{zap.ErrorOutput(ws)}
	if c.DevMode {
		opts = append(opts, zap.Development(), zap.AddCaller())
	}
	return zap.New(core, opts...), nil
}
