// Package calibration maps image pixel positions to physical micrometers.
// A calibration holds a registry of named scales (micrometers per pixel,
// one per microscope or objective) and an optional zero point on the image
// that position readouts are measured from.
package calibration

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"scratch-view/pkg/geometry"
)

// DefaultScaleName is the scale selected when nothing else is configured.
const DefaultScaleName = "olympus"

// DefaultScaleUmPerPixel is the factory value for the default scale.
const DefaultScaleUmPerPixel = 0.44

// Calibration converts pixel coordinates to micrometers relative to a zero
// point. Safe for concurrent use.
type Calibration struct {
	mu      sync.RWMutex
	scales  map[string]float64
	current string
	zero    geometry.Point2D
	hasZero bool
}

// New returns a calibration seeded with the default scale.
func New() *Calibration {
	return &Calibration{
		scales:  map[string]float64{DefaultScaleName: DefaultScaleUmPerPixel},
		current: DefaultScaleName,
	}
}

// SetScale adds or replaces a named scale. The value is micrometers per
// image pixel and must be positive.
func (c *Calibration) SetScale(name string, umPerPixel float64) error {
	if name == "" {
		return fmt.Errorf("scale name is empty")
	}
	if umPerPixel <= 0 || math.IsNaN(umPerPixel) || math.IsInf(umPerPixel, 0) {
		return fmt.Errorf("scale %q: value %v is not a positive number", name, umPerPixel)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scales[name] = umPerPixel
	return nil
}

// RemoveScale deletes a named scale. The last remaining scale cannot be
// removed; removing the current scale selects another one.
func (c *Calibration) RemoveScale(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.scales[name]; !ok {
		return fmt.Errorf("scale %q not found", name)
	}
	if len(c.scales) == 1 {
		return fmt.Errorf("cannot remove the only scale %q", name)
	}
	delete(c.scales, name)
	if c.current == name {
		for n := range c.scales {
			c.current = n
			break
		}
	}
	return nil
}

// Select makes a named scale current.
func (c *Calibration) Select(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.scales[name]; !ok {
		return fmt.Errorf("scale %q not found", name)
	}
	c.current = name
	return nil
}

// Current returns the name and value of the selected scale.
func (c *Calibration) Current() (name string, umPerPixel float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.scales[c.current]
}

// Names lists the registered scale names, sorted.
func (c *Calibration) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.scales))
	for n := range c.scales {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Scales returns a copy of the full registry, for persistence.
func (c *Calibration) Scales() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]float64, len(c.scales))
	for n, v := range c.scales {
		out[n] = v
	}
	return out
}

// Restore replaces the registry and selection, used when loading saved
// preferences. Invalid input leaves the calibration untouched.
func (c *Calibration) Restore(scales map[string]float64, current string) error {
	if len(scales) == 0 {
		return fmt.Errorf("empty scale registry")
	}
	if _, ok := scales[current]; !ok {
		return fmt.Errorf("current scale %q not in registry", current)
	}
	for n, v := range scales {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scale %q: value %v is not a positive number", n, v)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scales = make(map[string]float64, len(scales))
	for n, v := range scales {
		c.scales[n] = v
	}
	c.current = current
	return nil
}

// SetZero records the zero point in image pixel coordinates.
func (c *Calibration) SetZero(p geometry.Point2D) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zero = p
	c.hasZero = true
}

// ClearZero removes the zero point; positions map relative to the image
// origin again.
func (c *Calibration) ClearZero() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zero = geometry.Point2D{}
	c.hasZero = false
}

// Zero returns the zero point and whether one is set.
func (c *Calibration) Zero() (geometry.Point2D, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zero, c.hasZero
}

// ToMicrons converts an image pixel position to micrometers relative to the
// zero point, rounded to two decimals for display.
func (c *Calibration) ToMicrons(p geometry.Point2D) geometry.Point2D {
	c.mu.RLock()
	defer c.mu.RUnlock()
	scale := c.scales[c.current]
	um := p.Sub(c.zero).Scale(scale)
	return geometry.Point2D{
		X: math.Round(um.X*100) / 100,
		Y: math.Round(um.Y*100) / 100,
	}
}
