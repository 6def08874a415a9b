// Package app holds the shared application state and its event bus: the
// loaded micrograph, the force curve, calibration, regions of interest and
// marked positions along the scratch.
package app

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"scratch-view/internal/calibration"
	"scratch-view/internal/curve"
	"scratch-view/internal/imagefile"
	"scratch-view/internal/roi"
	"scratch-view/internal/stitch"
	"scratch-view/pkg/geometry"
)

// MarkRemoveProximityUm is how close, in micrometers, a toggle must land to
// an existing mark to remove it instead of adding a new one.
const MarkRemoveProximityUm = 20.0

// EventType identifies different application events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventCurveLoaded
	EventViewChanged
	EventZeroChanged
	EventMarksChanged
	EventStitchStarted
	EventStitchFinished
	EventMousePosition
	EventScalesChanged
	EventError
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Position is the payload of EventMousePosition: the hovered image pixel,
// its calibrated position and the force measured at that displacement.
type Position struct {
	Pixel  geometry.PointInt
	Um     geometry.Point2D
	ForceN float64
}

// State holds the open documents and settings. Safe for concurrent use.
type State struct {
	mu sync.RWMutex

	Doc         *imagefile.Document
	Curve       *curve.Curve
	Calibration *calibration.Calibration
	ROIs        *roi.List

	marks   []float64 // marked scratch positions, micrometers
	lastDir string

	Log *logrus.Logger

	listeners map[EventType][]EventListener
}

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		Calibration: calibration.New(),
		ROIs:        roi.NewList(),
		Log:         logrus.StandardLogger(),
		listeners:   make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// OpenPaths dispatches each path by extension: images go to the viewer,
// spreadsheets to the curve plot. Unknown extensions are reported as errors
// but do not stop the remaining paths from loading.
func (s *State) OpenPaths(paths []string) error {
	var firstErr error
	for _, path := range paths {
		var err error
		switch {
		case imagefile.Supported(path):
			err = s.LoadImage(path)
		case isCurveFile(path):
			err = s.LoadCurve(path)
		default:
			err = fmt.Errorf("%s: don't know how to open this file", filepath.Base(path))
		}
		if err != nil {
			s.Log.WithError(err).WithField("path", path).Error("open failed")
			s.Emit(EventError, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func isCurveFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return true
	}
	return false
}

// LoadImage opens a micrograph and makes it the displayed document. The
// zero point and regions of interest belong to the previous image and are
// discarded.
func (s *State) LoadImage(path string) error {
	doc, err := imagefile.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Doc = doc
	s.lastDir = filepath.Dir(path)
	s.mu.Unlock()

	s.Calibration.ClearZero()
	s.ROIs.Clear()

	s.Log.WithFields(logrus.Fields{
		"path": path,
		"size": fmt.Sprintf("%dx%d", doc.Image.Bounds().Dx(), doc.Image.Bounds().Dy()),
	}).Info("image loaded")
	s.Emit(EventImageLoaded, doc)
	return nil
}

// LoadCurve opens a force measurement spreadsheet.
func (s *State) LoadCurve(path string) error {
	c, err := curve.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Curve = c
	s.lastDir = filepath.Dir(path)
	s.mu.Unlock()

	s.Log.WithFields(logrus.Fields{"path": path, "samples": c.Len()}).Info("curve loaded")
	s.Emit(EventCurveLoaded, c)
	return nil
}

// Document returns the displayed image, or nil.
func (s *State) Document() *imagefile.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Doc
}

// ForceCurve returns the loaded measurement, or nil.
func (s *State) ForceCurve() *curve.Curve {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Curve
}

// LastDir returns the directory of the most recently opened file.
func (s *State) LastDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDir
}

// SetLastDir restores the file dialog starting directory from preferences.
func (s *State) SetLastDir(dir string) {
	s.mu.Lock()
	s.lastDir = dir
	s.mu.Unlock()
}

// PositionAt builds the readout for a hovered image pixel: calibrated
// micrometers and, when a curve is loaded, the force at that displacement.
func (s *State) PositionAt(pixel geometry.PointInt) Position {
	um := s.Calibration.ToMicrons(geometry.Point2D{X: float64(pixel.X), Y: float64(pixel.Y)})
	pos := Position{Pixel: pixel, Um: um}
	if c := s.ForceCurve(); c != nil {
		pos.ForceN = c.ForceAt(um.X)
	}
	return pos
}

// SetZero records the zero point and notifies listeners.
func (s *State) SetZero(p geometry.Point2D) {
	s.Calibration.SetZero(p)
	s.Emit(EventZeroChanged, p)
}

// ClearZero removes the zero point.
func (s *State) ClearZero() {
	s.Calibration.ClearZero()
	s.Emit(EventZeroChanged, nil)
}

// ToggleMark adds a marked position at um, or removes the nearest existing
// mark when one lies within MarkRemoveProximityUm.
func (s *State) ToggleMark(um float64) {
	s.mu.Lock()
	nearest, dist := -1, math.Inf(1)
	for i, m := range s.marks {
		if d := math.Abs(m - um); d < dist {
			nearest, dist = i, d
		}
	}
	if nearest >= 0 && dist <= MarkRemoveProximityUm {
		s.marks = append(s.marks[:nearest], s.marks[nearest+1:]...)
	} else {
		s.marks = append(s.marks, um)
	}
	marks := append([]float64(nil), s.marks...)
	s.mu.Unlock()

	s.Emit(EventMarksChanged, marks)
}

// Marks returns a copy of the marked positions, micrometers.
func (s *State) Marks() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.marks...)
}

// ClearMarks removes all marked positions.
func (s *State) ClearMarks() {
	s.mu.Lock()
	s.marks = nil
	s.mu.Unlock()
	s.Emit(EventMarksChanged, []float64(nil))
}

// Stitch plans and runs a stitching job over a tile folder, then loads the
// stitched overview as the displayed image. Blocks until the stitcher exits;
// callers run it from a goroutine.
func (s *State) Stitch(ctx context.Context, runner *stitch.Runner, dir string, order stitch.Order) error {
	plan, err := stitch.PlanFolder(dir, order, stitch.DefaultOverlapPct)
	if err != nil {
		s.Emit(EventError, err)
		return err
	}

	s.Emit(EventStitchStarted, plan)
	if err := runner.Run(ctx, plan); err != nil {
		s.Emit(EventError, err)
		return err
	}
	s.Emit(EventStitchFinished, plan.OutputPath)

	// The measurement found among the tiles belongs to the stitched scratch.
	if plan.MeasurementPath != "" {
		if err := s.LoadCurve(plan.MeasurementPath); err != nil {
			s.Log.WithError(err).Warn("measurement next to tiles not loaded")
		}
	}
	return s.LoadImage(plan.OutputPath)
}
