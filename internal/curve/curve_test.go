package curve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `x,fIn,fSet
0,100,110
0,100,110
0,100,110
25.6,200,210
51.2,400,410
76.8,600,610
`

func TestParsePreparesSeries(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV), ',')
	require.NoError(t, err)

	// The repeated-zero approach prefix collapses to a single sample.
	require.Equal(t, 4, c.Len())
	assert.InDeltaSlice(t, []float64{0, 1, 2, 3}, c.Um, 1e-9)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.4, 0.6}, c.FIn, 1e-9)
	assert.InDeltaSlice(t, []float64{0.11, 0.21, 0.41, 0.61}, c.FSet, 1e-9)
}

func TestParseFlipsNegativeDisplacement(t *testing.T) {
	in := "x\tfIn\n0\t100\n-25.6\t200\n-51.2\t400\n"
	c, err := Parse(strings.NewReader(in), '\t')
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0, 1, 2}, c.Um, 1e-9)
	assert.Nil(t, c.FSet)
}

func TestForceAtInterpolates(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV), ',')
	require.NoError(t, err)

	assert.InDelta(t, 0.3, c.ForceAt(1.5), 1e-9)
	assert.InDelta(t, 0.1, c.ForceAt(0), 1e-9)
	assert.InDelta(t, 0.6, c.ForceAt(3), 1e-9)
}

func TestForceAtOutsideRangeIsZero(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV), ',')
	require.NoError(t, err)

	assert.Zero(t, c.ForceAt(-1))
	assert.Zero(t, c.ForceAt(10))
}

func TestRanges(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV), ',')
	require.NoError(t, err)

	lo, hi := c.UmRange()
	assert.InDelta(t, 0, lo, 1e-9)
	assert.InDelta(t, 3, hi, 1e-9)

	lo, hi = c.ForceRange()
	assert.InDelta(t, 0.1, lo, 1e-9)
	assert.InDelta(t, 0.61, hi, 1e-9)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("x,fSet\n1,2\n"), ',')
	assert.ErrorContains(t, err, `missing column "fIn"`)

	_, err = Parse(strings.NewReader("x,fIn\n1,oops\n"), ',')
	assert.ErrorContains(t, err, "bad value")

	_, err = Parse(strings.NewReader("x,fIn\n"), ',')
	assert.ErrorContains(t, err, "no data rows")
}

func TestLoadPicksDelimiterAndTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scratch_A1.tsv")
	require.NoError(t, os.WriteFile(path, []byte("x\tfIn\n0\t100\n25.6\t200\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scratch_A1", c.Title)
	require.Equal(t, 2, c.Len())
	assert.InDelta(t, 1, c.Um[1], 1e-9)
}
