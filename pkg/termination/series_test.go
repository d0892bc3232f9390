package termination

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeriesFile_Sample(t *testing.T) {
	rows, err := ReadSeriesFile(filepath.Join("testdata", "alpha.dat"), DefaultReadOptions())
	require.NoError(t, err)

	want := []Row{
		{0.0, 0.91}, {0.1, 0.88}, {0.2, 0.61}, {0.3, 0.42},
		{0.4, 0.41}, {0.5, 0.41}, {0.6, 0.40},
	}
	assert.Equal(t, want, rows)
}

func TestReadSeries_Columns(t *testing.T) {
	in := "hdr\nhdr\n1 2 3\n4 5 6\n"

	rows, err := ReadSeries(strings.NewReader(in), ReadOptions{SkipRows: 2, TimeColumn: 0, ValueColumn: 2, Comment: '#'})
	require.NoError(t, err)
	assert.Equal(t, []Row{{1, 3}, {4, 6}}, rows)

	rows, err = ReadSeries(strings.NewReader(in), ReadOptions{SkipRows: 2, TimeColumn: 1, ValueColumn: 0})
	require.NoError(t, err)
	assert.Equal(t, []Row{{2, 1}, {5, 4}}, rows)
}

func TestReadSeries_SkipRowsCountsPhysicalLines(t *testing.T) {
	in := "0 9\n1 8\n2 7\n"
	rows, err := ReadSeries(strings.NewReader(in), ReadOptions{SkipRows: 2, ValueColumn: 1})
	require.NoError(t, err)
	assert.Equal(t, []Row{{2, 7}}, rows)

	rows, err = ReadSeries(strings.NewReader(in), ReadOptions{SkipRows: 0, ValueColumn: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReadSeries_Malformed(t *testing.T) {
	t.Run("non_numeric", func(t *testing.T) {
		in := "a\nb\n0.1 0.5\n0.2 oops\n"
		rows, err := ReadSeries(strings.NewReader(in), DefaultReadOptions())
		require.ErrorIs(t, err, ErrMalformedRow)
		assert.Nil(t, rows)
		assert.Contains(t, err.Error(), "line 4")
	})
	t.Run("short_row", func(t *testing.T) {
		in := "a\nb\n0.1 0.5\n0.2\n"
		_, err := ReadSeries(strings.NewReader(in), DefaultReadOptions())
		require.ErrorIs(t, err, ErrMalformedRow)
		assert.Contains(t, err.Error(), "1 columns, need 2")
	})
	t.Run("bad_options", func(t *testing.T) {
		_, err := ReadSeries(strings.NewReader(""), ReadOptions{SkipRows: -1})
		require.ErrorIs(t, err, ErrBadOptions)
	})
}

func TestReadSeries_EmptyAndHeaderOnly(t *testing.T) {
	rows, err := ReadSeries(strings.NewReader(""), DefaultReadOptions())
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = ReadSeries(strings.NewReader("# a\n# b\n# c\n\n"), DefaultReadOptions())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadSeriesFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.dat")
	_, err := ReadSeriesFile(path, DefaultReadOptions())
	require.ErrorIs(t, err, ErrInputUnavailable)
	assert.Contains(t, err.Error(), path)
}

func TestReadSeries_NaNThenScan(t *testing.T) {
	in := "#\n#\n0 0.9\n0.5 nan\n1 0.2\n1.5 0.2\n"
	rows, err := ReadSeries(strings.NewReader(in), DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.True(t, math.IsNaN(rows[1].Value))

	tm, ok := FindStabilizationTime(rows, 0.5, 0.1, 2)
	require.True(t, ok)
	assert.Equal(t, 1.5, tm)
}
