// Package curve loads and prepares scratch-test force measurements: a
// force-vs-displacement series read from CSV/TSV files exported by the test
// rig, converted to micrometers and newtons, with force lookup at an
// arbitrary displacement for status readouts and plot cursors.
package curve

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

// DefaultCountsPerMicron converts raw displacement counts to micrometers.
const DefaultCountsPerMicron = 25.6

// Required and optional column names in the rig's export files.
const (
	colDisplacement = "x"
	colForceIn      = "fIn"
	colForceSet     = "fSet"
)

// Curve is a prepared force-vs-displacement measurement. Um holds the
// displacement in micrometers, FIn the measured force and FSet the setpoint
// force, both in newtons.
type Curve struct {
	Title string

	Um   []float64
	FIn  []float64
	FSet []float64

	pred   interp.PiecewiseLinear
	fitted bool
}

// Load reads a measurement from a CSV (comma) or TSV (tab) file, picking the
// delimiter from the extension.
func Load(path string) (*Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open curve file: %w", err)
	}
	defer f.Close()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	c, err := Parse(f, comma)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	c.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return c, nil
}

// Parse reads a measurement from r using the given field delimiter. The
// first record must be a header naming at least the displacement and
// measured-force columns.
func Parse(r io.Reader, comma rune) (*Curve, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	xCol, ok := cols[colDisplacement]
	if !ok {
		return nil, fmt.Errorf("missing column %q", colDisplacement)
	}
	fInCol, ok := cols[colForceIn]
	if !ok {
		return nil, fmt.Errorf("missing column %q", colForceIn)
	}
	fSetCol, haveFSet := cols[colForceSet]

	n := len(records) - 1
	c := &Curve{
		Um:  make([]float64, 0, n),
		FIn: make([]float64, 0, n),
	}
	if haveFSet {
		c.FSet = make([]float64, 0, n)
	}

	for line, rec := range records[1:] {
		x, err := parseField(rec, xCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line+2, err)
		}
		fIn, err := parseField(rec, fInCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line+2, err)
		}
		c.Um = append(c.Um, x)
		c.FIn = append(c.FIn, fIn)
		if haveFSet {
			fSet, err := parseField(rec, fSetCol)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line+2, err)
			}
			c.FSet = append(c.FSet, fSet)
		}
	}

	c.prepare()
	return c, nil
}

func parseField(rec []string, col int) (float64, error) {
	if col >= len(rec) {
		return 0, fmt.Errorf("short record")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", rec[col])
	}
	return v, nil
}

// prepare converts the raw series to its display form: displacement sign
// fixed, the approach/stabilization prefix dropped, counts scaled to
// micrometers and forces from millinewtons to newtons.
func (c *Curve) prepare() {
	if len(c.Um) == 0 {
		return
	}

	// The stage reports displacement negative on some rigs.
	if stat.Mean(c.Um, nil) < -1 {
		floats.Scale(-1, c.Um)
	}

	// The approach and stabilization phase shows up as repeated zero
	// displacement; keep only the last zero sample as the curve start.
	zeros := 0
	for _, x := range c.Um {
		if x == 0 {
			zeros++
		}
	}
	if drop := zeros - 1; drop > 0 && drop < len(c.Um) {
		c.Um = c.Um[drop:]
		c.FIn = c.FIn[drop:]
		if c.FSet != nil {
			c.FSet = c.FSet[drop:]
		}
	}

	floats.Scale(1/DefaultCountsPerMicron, c.Um)
	floats.Scale(1e-3, c.FIn)
	if c.FSet != nil {
		floats.Scale(1e-3, c.FSet)
	}

	c.fit()
}

// fit builds the force interpolant over a strictly increasing subset of the
// displacement series, as required by the predictor.
func (c *Curve) fit() {
	xs := make([]float64, 0, len(c.Um))
	ys := make([]float64, 0, len(c.FIn))
	for i := range c.Um {
		if len(xs) > 0 && c.Um[i] <= xs[len(xs)-1] {
			continue
		}
		xs = append(xs, c.Um[i])
		ys = append(ys, c.FIn[i])
	}
	if len(xs) < 2 {
		c.fitted = false
		return
	}
	if err := c.pred.Fit(xs, ys); err != nil {
		c.fitted = false
		return
	}
	c.fitted = true
}

// Len returns the number of samples.
func (c *Curve) Len() int {
	return len(c.Um)
}

// ForceAt returns the measured force, in newtons, at the given displacement
// in micrometers, linearly interpolated between samples. Returns 0 outside
// the measured range or when too little data was loaded.
func (c *Curve) ForceAt(um float64) float64 {
	if !c.fitted || um < c.Um[0] || um > c.Um[len(c.Um)-1] {
		return 0
	}
	return c.pred.Predict(um)
}

// UmRange returns the displacement extent of the curve.
func (c *Curve) UmRange() (min, max float64) {
	if len(c.Um) == 0 {
		return 0, 0
	}
	return floats.Min(c.Um), floats.Max(c.Um)
}

// ForceRange returns the extent of measured and setpoint force combined,
// used to scale plot axes.
func (c *Curve) ForceRange() (min, max float64) {
	if len(c.FIn) == 0 {
		return 0, 0
	}
	min, max = floats.Min(c.FIn), floats.Max(c.FIn)
	if len(c.FSet) > 0 {
		if m := floats.Min(c.FSet); m < min {
			min = m
		}
		if m := floats.Max(c.FSet); m > max {
			max = m
		}
	}
	return min, max
}
