// Package encodeflags configures the encoder and optimizer from flags and an
// optional YAML file.
package encodeflags

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/brimdata/nibs"
	"github.com/brimdata/nibs/nio/nibsio"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Settings are the encoder settings that may appear in a config file.
type Settings struct {
	IndexLimit    int    `yaml:"index_limit"`
	SeedStart     uint64 `yaml:"seed_start"`
	TrialBudget   int    `yaml:"trial_budget"`
	MinScalarSize int    `yaml:"min_scalar_size"`
	Optimize      bool   `yaml:"optimize"`
}

type Flags struct {
	Settings
	configFile string
	flags      *flag.FlagSet
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.flags = fs
	fs.StringVar(&f.configFile, "config", "", "YAML file of encoder settings (flags given on the command line take precedence)")
	fs.IntVar(&f.IndexLimit, "indexlimit", nibs.DefaultIndexLimit, "length at which lists and maps are indexed (negative to never index)")
	fs.Uint64Var(&f.SeedStart, "seed", 0, "first hash seed tried for trie indexes")
	fs.IntVar(&f.TrialBudget, "trials", 0, "number of hash seeds tried per trie (0 for a size-based default, negative for one)")
	fs.IntVar(&f.MinScalarSize, "minscalar", nibs.DefaultMinScalarSize, "smallest encoded scalar replaced by a ref when optimizing")
	fs.BoolVar(&f.Optimize, "optimize", false, "deduplicate repeated values into refs")
}

// Init loads the config file, if any.
func (f *Flags) Init() error {
	if f.configFile == "" {
		return nil
	}
	explicit := make(map[string]string)
	if f.flags != nil {
		f.flags.Visit(func(fl *flag.Flag) {
			explicit[fl.Name] = fl.Value.String()
		})
	}
	if err := f.load(f.configFile); err != nil {
		return err
	}
	for name, val := range explicit {
		if err := f.flags.Set(name, val); err != nil {
			return err
		}
	}
	return nil
}

func (f *Flags) load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	if err := d.Decode(&f.Settings); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (f *Flags) Config(logger *zap.Logger) nibs.Config {
	return nibs.Config{
		IndexLimit:  f.IndexLimit,
		SeedStart:   f.SeedStart,
		TrialBudget: f.TrialBudget,
		Logger:      logger,
	}
}

func (f *Flags) WriterOpts(logger *zap.Logger) nibsio.WriterOpts {
	return nibsio.WriterOpts{
		Encoder:  f.Config(logger),
		Optimize: f.Optimize,
		OptimizeOptions: nibs.OptimizeOptions{
			IndexLimit:    f.IndexLimit,
			MinScalarSize: f.MinScalarSize,
			Logger:        logger,
		},
	}
}
