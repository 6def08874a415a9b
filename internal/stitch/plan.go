// Package stitch assembles microscope tile folders into a single image by
// driving an external Fiji/ImageJ installation. Planning inspects a folder
// of numbered tiles and derives the grid layout, tile name pattern and
// output path; running invokes the Grid/Collection stitching plugin
// headlessly and watching waits for the stitched file to appear.
package stitch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Order is the direction tiles were captured in along the scratch.
type Order int

const (
	RightDown Order = iota
	LeftDown
)

// String returns the plugin's name for the capture order.
func (o Order) String() string {
	if o == LeftDown {
		return "Left & Down"
	}
	return "Right & Down"
}

// DefaultOverlapPct is the tile overlap the capture procedure produces.
const DefaultOverlapPct = 20

var tileExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".png":  true,
}

var tileNameRe = regexp.MustCompile(`^(.*?)(\d+)(\D*)$`)

// Plan describes one stitching job over a folder of numbered tiles.
type Plan struct {
	Dir        string
	Tiles      []string // base names, in capture order
	Pattern    string   // plugin file name pattern, e.g. img_{i}.jpg
	FirstIndex int
	GridX      int // tiles per row; rows are always 1
	OverlapPct int
	Order      Order
	OutputPath string

	// MeasurementPath is the force spreadsheet found among the tiles, if any.
	MeasurementPath string
}

// PlanFolder scans dir for numbered image tiles and builds a stitching plan.
// Tiles must share a common name prefix and suffix around a numeric index.
// The output lands next to the tile folder, named after the measurement
// spreadsheet found in the folder, or after the folder itself when there is
// none.
func PlanFolder(dir string, order Order, overlapPct int) (*Plan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tile folder: %w", err)
	}

	type tile struct {
		name  string
		index int
	}
	var (
		tiles          []tile
		prefix, suffix string
		measurement    string
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".csv" || ext == ".tsv" {
			if measurement == "" {
				measurement = name
			}
			continue
		}
		if !tileExts[ext] {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		m := tileNameRe.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		p, s := m[1], m[3]+filepath.Ext(name)
		if len(tiles) == 0 {
			prefix, suffix = p, s
		} else if p != prefix || s != suffix {
			return nil, fmt.Errorf("mixed tile names in %s: %q does not match %s{i}%s", dir, name, prefix, suffix)
		}
		tiles = append(tiles, tile{name: name, index: idx})
	}
	if len(tiles) < 2 {
		return nil, fmt.Errorf("%s: need at least two tiles to stitch, found %d", dir, len(tiles))
	}

	sort.Slice(tiles, func(i, j int) bool { return tiles[i].index < tiles[j].index })
	names := make([]string, len(tiles))
	for i, t := range tiles {
		names[i] = t.name
	}

	if overlapPct <= 0 || overlapPct >= 100 {
		overlapPct = DefaultOverlapPct
	}

	outStem := filepath.Base(dir)
	measurementPath := ""
	if measurement != "" {
		outStem = strings.TrimSuffix(measurement, filepath.Ext(measurement))
		measurementPath = filepath.Join(dir, measurement)
	}

	return &Plan{
		Dir:             dir,
		Tiles:           names,
		Pattern:         prefix + "{i}" + suffix,
		FirstIndex:      tiles[0].index,
		GridX:           len(tiles),
		OverlapPct:      overlapPct,
		Order:           order,
		OutputPath:      filepath.Join(filepath.Dir(dir), outStem+".jpg"),
		MeasurementPath: measurementPath,
	}, nil
}

// MacroArgs returns the script parameter string handed to the stitching
// macro, in ImageJ's key='value' form.
func (p *Plan) MacroArgs() string {
	return fmt.Sprintf(
		"dir='%s',pattern='%s',first=%d,gridx=%d,overlap=%d,order='%s',output='%s'",
		p.Dir, p.Pattern, p.FirstIndex, p.GridX, p.OverlapPct, p.Order, p.OutputPath,
	)
}
