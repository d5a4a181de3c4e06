package hash

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/brimdata/nibs/cmd/nibs/root"
	"github.com/brimdata/nibs/pkg/charm"
	"github.com/brimdata/nibs/xxh64"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var Cmd = &charm.Spec{
	Name:  "hash",
	Usage: "hash [options] [string ...]",
	Short: "print XXH64 hashes",
	Long: `
The hash command prints the 64-bit xxHash of each argument in hex, one per
line.  With no arguments, it hashes standard input.  With -x, arguments are
hex byte strings (whitespace is not allowed) rather than text.

Tries use this hash with a per-trie seed to place their keys, so hash is
handy for checking the seed a trie was built with.`,
	New: New,
}

type Command struct {
	*root.Command
	seed uint64
	hex  bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.Uint64Var(&c.seed, "seed", 0, "hash seed")
	f.BoolVar(&c.hex, "x", false, "arguments are hex bytes")
	return c, nil
}

func (c *Command) Run(args []string) (err error) {
	_, logger, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, cleanup())
	}()
	if len(args) == 0 {
		d := xxh64.New(c.seed)
		n, err := io.Copy(d, os.Stdin)
		if err != nil {
			return err
		}
		logger.Debug("Hashed standard input", zap.Int64("bytes", n))
		fmt.Printf("%016x\n", d.Sum64())
		return nil
	}
	for _, arg := range args {
		b := []byte(arg)
		if c.hex {
			if b, err = hex.DecodeString(arg); err != nil {
				return fmt.Errorf("%q: %w", arg, err)
			}
		}
		fmt.Printf("%016x\n", xxh64.Sum64(b, c.seed))
	}
	return nil
}
