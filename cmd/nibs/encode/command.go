package encode

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brimdata/nibs"
	"github.com/brimdata/nibs/cli/encodeflags"
	"github.com/brimdata/nibs/cli/inputflags"
	"github.com/brimdata/nibs/cli/outputflags"
	"github.com/brimdata/nibs/cmd/nibs/root"
	"github.com/brimdata/nibs/nio"
	"github.com/brimdata/nibs/nio/anyio"
	"github.com/brimdata/nibs/pkg/charm"
	"github.com/brimdata/nibs/pkg/display"
	"github.com/brimdata/nibs/pkg/fs"
	"github.com/brimdata/nibs/pkg/plural"
	"github.com/brimdata/nibs/pkg/rlimit"
	"github.com/paulbellamy/ratecounter"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

var Cmd = &charm.Spec{
	Name:  "encode",
	Usage: "encode [options] [file ...]",
	Short: "encode documents as binary Nibs",
	Long: `
The encode command reads documents from each file, or from standard input
when no file is given, and writes them as concatenated binary Nibs.  Input
may be Tibs (and so JSON), hex or binary Nibs and is detected unless -i is
given.

Lists and maps with at least -indexlimit entries are written as indexed
arrays and tries.  With -optimize, repeated strings and shared containers
are stored once and referenced.  Settings may also be read from a YAML file
with -config, whose keys are index_limit, seed_start, trial_budget,
min_scalar_size and optimize.

With -outdir, each input file is encoded to a file of the same name in that
directory, and up to -P files are encoded at once.`,
	New: New,
}

type Command struct {
	*root.Command
	inputFlags  inputflags.Flags
	outputFlags outputflags.Flags
	encodeFlags encodeflags.Flags
	outdir      string
	parallel    int
	stats       bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.inputFlags.SetFlags(f, false)
	c.outputFlags.DefaultFormat = "nibs"
	c.outputFlags.SetFlags(f)
	c.encodeFlags.SetFlags(f)
	f.StringVar(&c.outdir, "outdir", "", "encode each input to a file of the same name in this directory")
	f.IntVar(&c.parallel, "P", runtime.GOMAXPROCS(0), "number of files encoded at once with -outdir")
	f.BoolVar(&c.stats, "stats", false, "display progress on stderr")
	return c, nil
}

func (c *Command) Run(args []string) (err error) {
	c.outputFlags.ToFiles = c.outdir != ""
	ctx, logger, cleanup, err := c.Init(&c.inputFlags, &c.outputFlags, &c.encodeFlags)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, cleanup())
	}()
	if len(args) == 0 {
		args = []string{anyio.Stdin}
	}
	c.outputFlags.Nibs = c.encodeFlags.WriterOpts(logger)
	p := &progress{
		ctx:   ctx,
		total: len(args),
		rate:  ratecounter.NewRateCounter(time.Second),
	}
	if c.stats {
		d := display.New(p, time.Second/2, os.Stderr)
		d.Start()
		defer d.Close()
	}
	if c.outdir != "" {
		if c.outputFlags.FileName() != "" {
			return errors.New("cannot use -o with -outdir")
		}
		return c.encodeFiles(ctx, logger, args, p)
	}
	return c.encodeStream(ctx, logger, args, p)
}

func (c *Command) encodeStream(ctx context.Context, logger *zap.Logger, paths []string, p *progress) error {
	readers, err := c.inputFlags.Open(paths, true)
	if err != nil {
		return err
	}
	out, err := c.outputFlags.Open()
	if err != nil {
		return err
	}
	for k, r := range readers {
		readers[k] = p.track(r)
	}
	if err := nio.CopyWithContext(ctx, out, nio.ConcatReader(readers...)); err != nil {
		out.Abort()
		return err
	}
	logger.Debug("Encoded stream", zap.Int("inputs", len(paths)), zap.Int64("documents", atomic.LoadInt64(&p.docs)))
	return out.Close()
}

func (c *Command) encodeFiles(ctx context.Context, logger *zap.Logger, paths []string, p *progress) error {
	if err := os.MkdirAll(c.outdir, 0755); err != nil {
		return err
	}
	opts := c.outputFlags.Options()
	inputOpts := c.inputFlags.Options()
	ext := nio.Extension(opts.Format)
	if slices.Contains(paths, anyio.Stdin) {
		return errors.New("cannot encode standard input with -outdir")
	}
	workers := len(paths)
	if c.parallel > 0 && c.parallel < workers {
		workers = c.parallel
	}
	ensureOpenFiles(logger, workers)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, path := range paths {
		path := path
		name := filepath.Join(c.outdir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+ext)
		group.Go(func() error {
			r, err := anyio.Open(path, inputOpts)
			if err != nil {
				return err
			}
			err = fs.ReplaceFile(name, 0644, func(w io.Writer) error {
				// Each file gets its own writer and so its own encoder.
				out, err := anyio.NewWriter(nio.NopCloser(w), opts)
				if err != nil {
					return err
				}
				return multierr.Append(nio.CopyWithContext(ctx, out, p.track(r)), out.Close())
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Debug("Encoded file", zap.String("input", path), zap.String("output", name))
			return nil
		})
	}
	return group.Wait()
}

// ensureOpenFiles makes room for an input and a temporary output per worker.
func ensureOpenFiles(logger *zap.Logger, workers int) {
	want := uint64(2 * workers)
	n, err := rlimit.EnsureOpenFiles(want)
	switch {
	case err != nil:
		logger.Warn("Raising open files limit failed", zap.Error(err))
	case n < want+rlimit.Reserve:
		logger.Warn("Open files limit is low for -P", zap.Uint64("limit", n), zap.Int("workers", workers))
	default:
		logger.Debug("Open files limit", zap.Uint64("limit", n), zap.Int("workers", workers))
	}
}

type progress struct {
	ctx       context.Context
	total     int
	completed int64
	docs      int64
	last      int64
	rate      *ratecounter.RateCounter
}

func (p *progress) track(r nio.Reader) nio.Reader {
	return &tracker{nio.NewCounter(r, &p.docs), p}
}

// Display prints progress in the form "(1/4 files) 1200 documents 300/s".
func (p *progress) Display(w io.Writer) bool {
	docs := atomic.LoadInt64(&p.docs)
	p.rate.Incr(docs - p.last)
	p.last = docs
	fmt.Fprintf(w, "(%d/%d file%s) %d document%s %d/s\n",
		atomic.LoadInt64(&p.completed), p.total, plural.Int(p.total, "s"),
		docs, plural.Int(docs, "s"), p.rate.Rate())
	return p.ctx.Err() == nil
}

type tracker struct {
	*nio.Counter
	progress *progress
}

func (t *tracker) Read() (nibs.Value, error) {
	v, err := t.Counter.Read()
	if v == nil && err == nil {
		atomic.AddInt64(&t.progress.completed, 1)
	}
	return v, err
}
