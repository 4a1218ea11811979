package apt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/apt/pkg/apt/config"
	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/store/memstore"
)

func TestNewRequiresOptions(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestLoadAndRunFlatFiles(t *testing.T) {
	dir := t.TempDir()
	nouns := "dog/N\tamod:red/J\t2\tnn:house/N\t1\n" +
		"cat/N\tamod:big/J\t1\tnn:house/N\t1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corpus.nouns"), []byte(nouns), 0o644))

	cfg := `stages: [maketotals, filter, revectorise]
filename: corpus
frequency_threshold: 0
workers: 2
`
	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	a, err := Load(config.Loader{ConfigPath: cfgPath}, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "N", a.Options().POS)

	rep, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Stages, 3)

	data, err := os.ReadFile(filepath.Join(dir, "corpus.nouns.filtered.ppmi"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "cat/N\tamod:big/J\t"))
	assert.True(t, strings.HasPrefix(lines[1], "dog/N\tamod:red/J\t"))
}

func TestRunWithStore(t *testing.T) {
	opts := config.DefaultOptions()
	opts.Stages = []string{"rewrite"}
	opts.Filename = "missing"
	comp, err := config.Build(&opts)
	require.NoError(t, err)

	a, err := New(Options{Components: comp, Store: memstore.New()})
	require.NoError(t, err)

	_, err = a.Run(context.Background())
	var se *internalerr.StageError
	assert.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, internalerr.ErrResource)
}
