package inputflags

import (
	"flag"
	"fmt"
	"os"

	"github.com/alecthomas/units"
	"github.com/brimdata/nibs/nio"
	"github.com/brimdata/nibs/nio/anyio"
	"github.com/pbnjay/memory"
)

// DefaultMaxInput returns the default input size limit: a quarter of system
// memory, or 1GiB if that cannot be determined.
func DefaultMaxInput() units.Base2Bytes {
	if total := memory.TotalMemory(); total > 0 {
		return units.Base2Bytes(total / 4)
	}
	return units.GiB
}

type Flags struct {
	anyio.ReaderOpts
	maxInput string
}

func (f *Flags) Options() anyio.ReaderOpts {
	return f.ReaderOpts
}

func (f *Flags) SetFlags(fs *flag.FlagSet, validate bool) {
	fs.StringVar(&f.Format, "i", "auto", "format of input data [auto,nibs,tibs,hex]")
	fs.BoolVar(&f.Nibs.Validate, "validate", validate, "check the full structure of binary input as it is read")
	fs.StringVar(&f.maxInput, "maxinput", DefaultMaxInput().String(), "maximum size of each input, as '64MiB' or '2GB', etc.")
}

// Init is called after flags have been parsed.
func (f *Flags) Init() error {
	max, err := units.ParseStrictBytes(f.maxInput)
	if err != nil {
		return fmt.Errorf("invalid -maxinput: %w", err)
	}
	if max <= 0 {
		return fmt.Errorf("-maxinput must be positive: %s", f.maxInput)
	}
	f.MaxSize = max
	return nil
}

// Open returns a reader for each path.  When stopOnErr is false, paths that
// fail to open are reported on stderr and skipped.
func (f *Flags) Open(paths []string, stopOnErr bool) ([]nio.Reader, error) {
	var readers []nio.Reader
	for _, path := range paths {
		opts := f.ReaderOpts
		opts.Name = path
		r, err := anyio.Open(path, opts)
		if err != nil {
			if stopOnErr {
				return nil, err
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		readers = append(readers, r)
	}
	return readers, nil
}
