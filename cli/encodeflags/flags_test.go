package encodeflags

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nibs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index_limit: 4\ntrial_budget: 9\noptimize: true\n"), 0644))
	var f Flags
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-trials", "2"}))
	require.NoError(t, f.Init())
	assert.Equal(t, 4, f.IndexLimit)
	// The command line wins over the file.
	assert.Equal(t, 2, f.TrialBudget)
	assert.True(t, f.Optimize)
	opts := f.WriterOpts(nil)
	assert.Equal(t, 4, opts.Encoder.IndexLimit)
	assert.Equal(t, 4, opts.OptimizeOptions.IndexLimit)
	assert.Equal(t, 3, opts.OptimizeOptions.MinScalarSize)
}

func TestConfigFileUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nibs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indexlimit: 4\n"), 0644))
	var f Flags
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-config", path}))
	assert.Error(t, f.Init())
}
