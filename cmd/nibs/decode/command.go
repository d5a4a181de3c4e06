package decode

import (
	"flag"

	"github.com/brimdata/nibs/cli/inputflags"
	"github.com/brimdata/nibs/cli/outputflags"
	"github.com/brimdata/nibs/cmd/nibs/root"
	"github.com/brimdata/nibs/nio"
	"github.com/brimdata/nibs/pkg/charm"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var Cmd = &charm.Spec{
	Name:  "decode",
	Usage: "decode [options] [file ...]",
	Short: "decode documents to Tibs",
	Long: `
The decode command reads documents from each file, or from standard input
when no file is given, and writes them as indented Tibs.  Use -t for one
document per line or -f to choose another format.

Binary input is validated by default so that malformed values are reported
with the offset of the document holding them.  Refs are resolved in the
output.  A document that refers to itself cannot be written as Tibs and
is reported as an error.`,
	New: New,
}

type Command struct {
	*root.Command
	inputFlags  inputflags.Flags
	outputFlags outputflags.Flags
	stopOnErr   bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.inputFlags.SetFlags(f, true)
	c.outputFlags.DefaultFormat = "tibs"
	c.outputFlags.SetFlags(f)
	f.BoolVar(&c.stopOnErr, "e", true, "stop upon input errors")
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
		args = []string{"-"}
	}
	readers, err := c.inputFlags.Open(args, c.stopOnErr)
	if err != nil {
		return err
	}
	out, err := c.outputFlags.Open()
	if err != nil {
		return err
	}
	var n int64
	if err := nio.CopyWithContext(ctx, out, nio.NewCounter(nio.ConcatReader(readers...), &n)); err != nil {
		out.Abort()
		return err
	}
	logger.Debug("Decoded", zap.Int("inputs", len(readers)), zap.Int64("documents", n))
	return out.Close()
}
