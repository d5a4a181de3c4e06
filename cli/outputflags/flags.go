package outputflags

import (
	"errors"
	"flag"
	"os"

	"github.com/brimdata/nibs/nio"
	"github.com/brimdata/nibs/nio/anyio"
	"github.com/brimdata/nibs/pkg/fs"
	"github.com/brimdata/nibs/pkg/terminal"
)

type Flags struct {
	anyio.WriterOpts
	DefaultFormat string
	// ToFiles is set by commands that write to files of their own
	// rather than to -o or stdout.
	ToFiles       bool
	outputFile    string
	forceBinary   bool
	tibsShortcut  bool
	tibsPretty    bool
}

func (f *Flags) Options() anyio.WriterOpts {
	return f.WriterOpts
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	if f.DefaultFormat == "" {
		f.DefaultFormat = "nibs"
	}
	fs.StringVar(&f.Format, "f", f.DefaultFormat, "format for output data [nibs,tibs,hex]")
	fs.BoolVar(&f.tibsShortcut, "t", false, "use line-oriented Tibs output independent of -f option")
	fs.BoolVar(&f.tibsPretty, "T", false, "use indented Tibs output independent of -f option")
	fs.IntVar(&f.Tibs.Pretty, "pretty", 4, "tab size to pretty print Tibs output (0 for one document per line)")
	fs.BoolVar(&f.forceBinary, "B", false, "allow binary nibs to be sent to a terminal output")
	fs.StringVar(&f.outputFile, "o", "", "write data to output file")
}

func (f *Flags) Init() error {
	if f.tibsShortcut || f.tibsPretty {
		if f.Format != f.DefaultFormat {
			return errors.New("cannot use -t or -T with -f")
		}
		f.Format = "tibs"
		if !f.tibsPretty {
			f.Tibs.Pretty = 0
		}
	}
	if f.outputFile == "-" {
		f.outputFile = ""
	}
	if f.outputFile == "" && !f.ToFiles && f.Format == "nibs" && !f.forceBinary &&
		terminal.IsTerminalFile(os.Stdout) {
		f.Format = "tibs"
		f.Tibs.Pretty = 0
	}
	return nil
}

func (f *Flags) FileName() string {
	return f.outputFile
}

// Output is a writer opened from the flags.
type Output struct {
	nio.WriteCloser
	replacer *fs.Replacer
}

// Abort discards the output file, leaving any previous content in place.
// It has no effect on stdout.
func (o *Output) Abort() {
	if o.replacer != nil {
		o.replacer.Abort()
	}
}

// Open returns a writer to stdout or to the output file.  The output file
// is replaced atomically when the writer is closed.
func (f *Flags) Open() (*Output, error) {
	if f.outputFile == "" {
		w, err := anyio.NewWriter(nio.NopCloser(os.Stdout), f.WriterOpts)
		if err != nil {
			return nil, err
		}
		return &Output{WriteCloser: w}, nil
	}
	r, err := fs.NewFileReplacer(f.outputFile, 0644)
	if err != nil {
		return nil, err
	}
	w, err := anyio.NewWriter(r, f.WriterOpts)
	if err != nil {
		r.Abort()
		return nil, err
	}
	return &Output{w, r}, nil
}
