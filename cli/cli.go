// Package cli holds the flags shared by every nibs command.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"syscall"

	"github.com/brimdata/nibs/cli/logflags"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Version is set via the Go linker.
var Version string

type Flags struct {
	Log            logflags.Flags
	showVersion    bool
	cpuprofile     string
	memprofile     string
	cpuProfileFile *os.File
	logger         *zap.Logger
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")
	fs.StringVar(&f.cpuprofile, "cpuprofile", "", "write cpu profile to given file name")
	fs.StringVar(&f.memprofile, "memprofile", "", "write memory profile to given file name")
	f.Log.SetFlags(fs)
}

type Initializer interface {
	Init() error
}

// Init initializes all, opens the logger and starts any profiling.  It returns a context canceled on SIGINT, SIGPIPE or
// SIGTERM along with the logger and a cleanup function to call before exit.
func (f *Flags) Init(all ...Initializer) (context.Context, *zap.Logger, func() error, error) {
	if f.showVersion {
		fmt.Printf("Version: %s\n", version())
		os.Exit(0)
	}
	var err error
	for _, flags := range all {
		err = multierr.Append(err, flags.Init())
	}
	if err != nil {
		return nil, nil, nil, err
	}
	if f.logger, err = f.Log.Open(); err != nil {
		return nil, nil, nil, err
	}
	if f.cpuprofile != "" {
		if err := f.runCPUProfile(f.cpuprofile); err != nil {
			return nil, nil, nil, err
		}
	}
	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGPIPE, syscall.SIGTERM)
	cleanup := func() error {
		cancel()
		return f.cleanup()
	}
	return &interruptedContext{ctx}, f.logger, cleanup, nil
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		// This will be "(devel)" for binaries not built
		// by "go install PACKAGE@VERSION".
		return info.Main.Version
	}
	return "unknown"
}

type interruptedContext struct{ context.Context }

func (i *interruptedContext) Err() error {
	err := i.Context.Err()
	if errors.Is(err, context.Canceled) {
		return errors.New("interrupted")
	}
	return err
}

func (f *Flags) cleanup() error {
	var err error
	if f.cpuProfileFile != nil {
		pprof.StopCPUProfile()
		err = multierr.Append(err, f.cpuProfileFile.Close())
	}
	if f.memprofile != "" {
		err = multierr.Append(err, runMemProfile(f.memprofile))
	}
	if f.logger != nil {
		// Syncing stderr fails on some platforms.
		_ = f.logger.Sync()
	}
	return err
}

func (f *Flags) runCPUProfile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	f.cpuProfileFile = file
	return pprof.StartCPUProfile(file)
}

func runMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	runtime.GC()
	return multierr.Append(pprof.Lookup("allocs").WriteTo(f, 0), f.Close())
}
