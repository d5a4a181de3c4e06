package root

import (
	"flag"

	"github.com/brimdata/nibs/cli"
	"github.com/brimdata/nibs/pkg/charm"
)

var Nibs = &charm.Spec{
	Name:  "nibs",
	Usage: "nibs <command> [options] [arguments...]",
	Short: "encode, decode and inspect Nibs documents",
	Long: `
nibs converts documents between the binary Nibs format, its Tibs text
notation and hex, and looks up values inside encoded documents without
decoding the rest.

Tibs is JSON with a few additions: nan, inf and -inf floats, <hex> byte
strings, &N refs, [# ...] arrays, {# ...} tries and (value, refs...)
scopes.  Comments and trailing commas are allowed.`,
	New: New,
}

type Command struct {
	cli.Flags
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{}
	c.SetFlags(f)
	return c, nil
}

func (c *Command) Run(args []string) error {
	if len(args) == 0 {
		return charm.NeedHelp
	}
	return charm.ErrNoRun
}
