package tsvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/store"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

var _ store.Store = (*Store)(nil)

func TestWriteVectorsFormat(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)

	c := vector.Collection{
		"dog/N": {"nn:house/N": 1, "amod:red/J": 2.5},
		"cat/N": {":cat/N": 0.125},
		"emu/N": {},
	}
	require.NoError(t, s.WriteVectors(context.Background(), "out.vec", c))

	data, err := os.ReadFile(filepath.Join(dir, "out.vec"))
	require.NoError(t, err)
	assert.Equal(t, "cat/N\t:cat/N\t0.125\ndog/N\tamod:red/J\t2.5\tnn:house/N\t1\n", string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".out.vec.*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temporary file should be renamed away")
}

func TestVectorsRoundTrip(t *testing.T) {
	s := New(t.TempDir(), nil)
	ctx := context.Background()

	c := vector.Collection{
		"dog/N": {"amod:red/J": 2, "_dobj»nsubj:man/N": 1e-7, ":dog/N": 3},
	}
	require.NoError(t, s.WriteVectors(ctx, "v", c))

	got, counts, err := s.ReadVectors(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.Empty(t, counts)
}

func TestReadVectorsRecoversFromBadFields(t *testing.T) {
	dir := t.TempDir()
	content := "dog/N\tamod:red/J\t2\tnn:house/N\tlots\n" +
		"\n" +
		"cat/N\tamod:black/J\t1\tdangling\n" +
		"dog/N\tamod:red/J\t3\r\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in"), []byte(content), 0o644))

	got, counts, err := New(dir, nil).ReadVectors(context.Background(), "in")
	require.NoError(t, err)

	assert.Equal(t, vector.Collection{
		"dog/N": {"amod:red/J": 5},
		"cat/N": {"amod:black/J": 1},
	}, got)
	assert.Equal(t, 2, counts.Get(report.ParseError))
}

func TestReadDropsNonFiniteWeights(t *testing.T) {
	dir := t.TempDir()
	content := "dog/N\tamod:red/J\tInf\tnn:house/N\t3\n" +
		"cat/N\tamod:red/J\t-inf\tnn:house/N\tNaN\tamod:big/J\t+Inf\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in.rtot"), []byte("dog/N\t+Inf\ncat/N\tNaN\nemu/N\t2\n"), 0o644))

	s := New(dir, nil)
	got, counts, err := s.ReadVectors(context.Background(), "in")
	require.NoError(t, err)
	assert.Equal(t, vector.Collection{
		"dog/N": {"nn:house/N": 3},
		"cat/N": {},
	}, got)
	assert.Equal(t, 4, counts.Get(report.ParseError))

	rows, counts, err := s.ReadTotals(context.Background(), "in.rtot")
	require.NoError(t, err)
	assert.Equal(t, totals.Totals{"emu/N": 2}, rows)
	assert.Equal(t, 2, counts.Get(report.ParseError))
}

func TestTotalsRoundTrip(t *testing.T) {
	s := New(t.TempDir(), nil)
	ctx := context.Background()

	in := totals.Totals{"dog/N": 3, "cat/N": 1.5}
	require.NoError(t, s.WriteTotals(ctx, "t.rtot", in))

	got, counts, err := s.ReadTotals(ctx, "t.rtot")
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.Empty(t, counts)
}

func TestReadTotalsRecovers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t"), []byte("dog/N\t3\ncat/N\nemu/N\tmany\n"), 0o644))

	got, counts, err := New(dir, nil).ReadTotals(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, totals.Totals{"dog/N": 3}, got)
	assert.Equal(t, 2, counts.Get(report.ParseError))
}

func TestMissingFile(t *testing.T) {
	s := New(t.TempDir(), nil)
	_, _, err := s.ReadVectors(context.Background(), "missing")
	assert.ErrorIs(t, err, internalerr.ErrResource)

	_, _, err = s.ReadTotals(context.Background(), "missing")
	assert.ErrorIs(t, err, internalerr.ErrResource)
}

func TestPath(t *testing.T) {
	assert.Equal(t, "corpus.nouns", New("", nil).Path("corpus.nouns"))
	assert.Equal(t, filepath.Join("data", "corpus.nouns"), New("data", nil).Path("corpus.nouns"))
	assert.Equal(t, "/abs/corpus", New("data", nil).Path("/abs/corpus"))
}
