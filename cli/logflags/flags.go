// Package logflags configures the logger of every nibs command from flags
// and an optional YAML file.
package logflags

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/brimdata/nibs/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Flags struct {
	Config     logger.Config
	configFile string
	verbose    bool
	flags      *flag.FlagSet
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.flags = fs
	f.Config.Level = zap.WarnLevel
	f.Config.Mode = logger.FileModeTruncate
	fs.BoolVar(&f.verbose, "v", false, "log at debug level (same as -log.level debug)")
	fs.Var(&f.Config.Level, "log.level", "logging level (values: debug, info, warn, error)")
	fs.StringVar(&f.Config.Path, "log.path", "stderr", "where to send logs (values: stderr, stdout, path in file system)")
	fs.Var(&f.Config.Mode, "log.filemode", "log file write mode (values: append, truncate, rotate)")
	fs.BoolVar(&f.Config.DevMode, "log.devmode", false, "development mode (dpanic level logs panic and entries carry their caller)")
	fs.StringVar(&f.configFile, "log.config", "", "YAML file with keys level, path, mode and devmode (flags given on the command line take precedence)")
}

// Open applies the config file, if any, and returns the configured logger.
func (f *Flags) Open() (*zap.Logger, error) {
	if f.configFile != "" {
		if err := f.load(); err != nil {
			return nil, err
		}
	}
	if f.verbose {
		f.Config.Level = zap.DebugLevel
	}
	return logger.New(f.Config)
}

func (f *Flags) load() error {
	explicit := make(map[string]string)
	if f.flags != nil {
		f.flags.Visit(func(fl *flag.Flag) {
			explicit[fl.Name] = fl.Value.String()
		})
	}
	b, err := os.ReadFile(f.configFile)
	if err != nil {
		return err
	}
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	if err := d.Decode(&f.Config); err != nil {
		return fmt.Errorf("%s: %w", f.configFile, err)
	}
	for name, val := range explicit {
		if err := f.flags.Set(name, val); err != nil {
			return err
		}
	}
	return nil
}
