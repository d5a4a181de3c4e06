package get

import (
	"errors"
	"flag"
	"fmt"

	"github.com/brimdata/nibs"
	"github.com/brimdata/nibs/cli/inputflags"
	"github.com/brimdata/nibs/cli/outputflags"
	"github.com/brimdata/nibs/cmd/nibs/root"
	"github.com/brimdata/nibs/nio"
	"github.com/brimdata/nibs/pkg/charm"
	"github.com/brimdata/nibs/tibs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var Cmd = &charm.Spec{
	Name:  "get",
	Usage: "get [options] path [file ...]",
	Short: "look up values inside documents",
	Long: `
The get command looks up a value in each document and writes the results
as Tibs.  The path is a Tibs list of keys and indexes applied in turn,
e.g.,

    nibs get '["users", 0, "name"]' users.nibs

Binary input is not decoded beyond what the lookup reads: arrays and tries
are indexed directly and other containers are scanned without decoding
the values skipped.

A document without the path is an error unless -missing is given, in
which case null is written in its place.`,
	New: New,
}

type Command struct {
	*root.Command
	inputFlags  inputflags.Flags
	outputFlags outputflags.Flags
	missing     bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.inputFlags.SetFlags(f, false)
	c.outputFlags.DefaultFormat = "tibs"
	c.outputFlags.SetFlags(f)
	f.BoolVar(&c.missing, "missing", false, "write null for documents without the path")
	return c, nil
}

func (c *Command) Run(args []string) (err error) {
	ctx, logger, cleanup, err := c.Init(&c.inputFlags, &c.outputFlags)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, cleanup())
	}()
	if len(args) == 0 {
		return errors.New("path argument required")
	}
	path, err := ParsePath(args[0])
	if err != nil {
		return err
	}
	paths := args[1:]
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	readers, err := c.inputFlags.Open(paths, true)
	if err != nil {
		return err
	}
	out, err := c.outputFlags.Open()
	if err != nil {
		return err
	}
	r := &getter{nio.ConcatReader(readers...), path, c.missing, 0}
	if err := nio.CopyWithContext(ctx, out, r); err != nil {
		out.Abort()
		return err
	}
	logger.Debug("Looked up path", zap.String("path", args[0]), zap.Int("documents", r.n))
	return out.Close()
}

// ParsePath parses a Tibs list of path elements.
func ParsePath(s string) ([]nibs.Value, error) {
	v, err := tibs.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}
	list, ok := v.(nibs.List)
	if !ok {
		return nil, fmt.Errorf("path must be a list: %s", s)
	}
	return list, nil
}

type getter struct {
	nio.Reader
	path    []nibs.Value
	missing bool
	n       int
}

func (g *getter) Read() (nibs.Value, error) {
	v, err := g.Reader.Read()
	if v == nil || err != nil {
		return nil, err
	}
	g.n++
	result, err := nibs.Lookup(v, g.path...)
	if err != nil {
		if g.missing && (errors.Is(err, nibs.ErrNotFound) || errors.Is(err, nibs.ErrIndexRange)) {
			return nibs.Null{}, nil
		}
		return nil, fmt.Errorf("document %d: %w", g.n, err)
	}
	return result, nil
}
