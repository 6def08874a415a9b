// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"scratch-view/internal/app"
	"scratch-view/internal/roi"
	"scratch-view/internal/stitch"
	"scratch-view/internal/version"
	"scratch-view/internal/viewport"
	"scratch-view/pkg/geometry"
	"scratch-view/ui/dialogs"
	"scratch-view/ui/plot"
	"scratch-view/ui/prefs"
	"scratch-view/ui/viewer"
)

// clickMode is what the next primary click on the image does.
type clickMode int

const (
	modeNone clickMode = iota
	modeSetZero
	modeMark
)

// SpotRadius is the radius of a quick-placed spot region, scene units.
const SpotRadius = 10.0

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	viewer    *viewer.Viewer
	plot      *plot.Plot
	statusBar *widget.Label

	runner *stitch.Runner
	mode   clickMode
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Scratch View")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		runner: stitch.NewRunner(p.String(prefs.KeyStitchMacro, "")),
	}
	mw.runner.Command = p.String(prefs.KeyFijiCommand, stitch.DefaultFijiCommand)

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restorePrefs()

	win.SetCloseIntercept(func() {
		mw.savePrefs()
		win.Close()
	})
	win.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		go state.OpenPaths(uriPaths(uris))
	})
	return mw
}

func uriPaths(uris []fyne.URI) []string {
	paths := make([]string, 0, len(uris))
	for _, u := range uris {
		paths = append(paths, u.Path())
	}
	return paths
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.viewer = viewer.New()
	mw.viewer.SetROIs(mw.state.ROIs)

	// Right clicks place regions here; zooming out goes through the wheel,
	// the primary double click and the View menu instead.
	cfg := mw.viewer.Dispatcher().Config()
	cfg.ZoomOutButton = viewport.ButtonNone
	cfg.AddROIButton = viewport.ButtonRight
	mw.viewer.Dispatcher().SetConfig(cfg)
	mw.plot = plot.New()
	mw.statusBar = widget.NewLabel("Ready")

	mw.viewer.OnClick = mw.onImageClick
	mw.viewer.OnPosition = mw.onImagePosition

	mw.plot.OnMark = mw.state.ToggleMark
	mw.plot.OnHover = func(um, forceN float64) {
		mw.updateStatus(plot.FormatReadout(um, forceN))
	}

	split := container.NewVSplit(mw.viewer, mw.plot)
	split.SetOffset(0.72)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)
	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", mw.onOpen),
		fyne.NewMenuItem("Stitch Tile Folder...", mw.onStitchFolder),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.savePrefs()
			mw.app.Quit()
		}),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.wheelZoom(1) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.wheelZoom(-1) }),
		fyne.NewMenuItem("Reset View", mw.viewer.ResetView),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Set Zero Point", func() {
			mw.mode = modeSetZero
			mw.updateStatus("Click the scratch start on the image")
		}),
		fyne.NewMenuItem("Clear Zero Point", func() {
			mw.state.ClearZero()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Mark Position", func() {
			mw.mode = modeMark
			mw.updateStatus("Click the image to mark a position")
		}),
		fyne.NewMenuItem("Clear Marks", mw.state.ClearMarks),
		fyne.NewMenuItem("Clear Regions", func() {
			mw.state.ROIs.Clear()
			mw.viewer.SetSelected(-1)
			mw.viewer.Refresh()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Scales...", mw.onScales),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, toolsMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		doc := mw.state.Document()
		mw.viewer.SetDocument(doc)
		if doc != nil {
			mw.SetTitle("Scratch View - " + doc.Name())
			mw.updateStatus("Image loaded: " + filepath.Base(doc.Path))
		}
	})

	mw.state.On(app.EventCurveLoaded, func(data interface{}) {
		c := mw.state.ForceCurve()
		mw.plot.SetCurve(c)
		if c != nil {
			mw.updateStatus(fmt.Sprintf("Curve loaded: %s (%d samples)", c.Title, c.Len()))
		}
	})

	mw.state.On(app.EventMarksChanged, func(data interface{}) {
		if marks, ok := data.([]float64); ok {
			mw.plot.SetMarks(marks)
		}
	})

	mw.state.On(app.EventZeroChanged, func(data interface{}) {
		if p, ok := data.(geometry.Point2D); ok {
			mw.viewer.SetZeroMarker(&p)
			mw.updateStatus(fmt.Sprintf("Zero point set at pixel (%.0f, %.0f)", p.X, p.Y))
		} else {
			mw.viewer.SetZeroMarker(nil)
		}
	})

	mw.state.On(app.EventStitchStarted, func(data interface{}) {
		if plan, ok := data.(*stitch.Plan); ok {
			mw.updateStatus(fmt.Sprintf("Stitching %d tiles...", plan.GridX))
		}
	})

	mw.state.On(app.EventStitchFinished, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Stitched: " + filepath.Base(path))
		}
	})

	mw.state.On(app.EventError, func(data interface{}) {
		if err, ok := data.(error); ok {
			dialog.ShowError(err, mw.Window)
		}
	})
}

func (mw *MainWindow) onImageClick(btn viewport.MouseButton, scene geometry.Point2D) {
	switch {
	case btn == viewport.ButtonLeft && mw.mode == modeSetZero:
		mw.mode = modeNone
		mw.state.SetZero(scene)
	case btn == viewport.ButtonLeft && mw.mode == modeMark:
		mw.mode = modeNone
		mw.state.ToggleMark(mw.state.Calibration.ToMicrons(scene).X)
	case btn != viewport.ButtonNone && btn == mw.viewer.Dispatcher().Config().AddROIButton:
		mw.state.ROIs.Add(roi.NewSpot(scene, SpotRadius))
		mw.viewer.Refresh()
	case btn == viewport.ButtonLeft:
		mw.viewer.SetSelected(mw.state.ROIs.HitTest(scene))
	}
}

func (mw *MainWindow) onImagePosition(idx geometry.PointInt) {
	if !idx.Valid() {
		mw.plot.SetCursor(nil)
		return
	}
	pos := mw.state.PositionAt(idx)
	mw.updateStatus(fmt.Sprintf("x=%.2f µm  y=%.2f µm  F=%.3f N  (px %d,%d)",
		pos.Um.X, pos.Um.Y, pos.ForceN, idx.X, idx.Y))
	um := pos.Um.X
	mw.plot.SetCursor(&um)
}

func (mw *MainWindow) wheelZoom(direction float64) {
	if mw.state.Document() == nil {
		return
	}
	mw.viewer.Dispatcher().Wheel(direction)
	mw.viewer.Refresh()
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// lastDirURI returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDirURI() fyne.ListableURI {
	path := mw.state.LastDir()
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) onOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.state.OpenPaths([]string{reader.URI().Path()})
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{
		".jpg", ".jpeg", ".png", ".bmp", ".csv", ".tsv",
	}))
	if loc := mw.lastDirURI(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onStitchFolder() {
	fd := dialog.NewFolderOpen(func(list fyne.ListableURI, err error) {
		if err != nil || list == nil {
			return
		}
		dir := list.Path()
		go func() {
			// Errors surface through the state's error event.
			_ = mw.state.Stitch(context.Background(), mw.runner, dir, stitch.RightDown)
		}()
	}, mw.Window)
	if loc := mw.lastDirURI(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onScales() {
	dialogs.NewScalesDialog(mw.state.Calibration, mw.Window, func() {
		name, v := mw.state.Calibration.Current()
		mw.updateStatus(fmt.Sprintf("Scale: %s (%g µm/px)", name, v))
	}).Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Scratch View",
		fmt.Sprintf("Scratch View %s\n\n"+
			"Viewer for scratch-test micrographs and force curves.",
			version.Full()),
		mw.Window)
}

// restorePrefs applies saved preferences to the window and state.
func (mw *MainWindow) restorePrefs() {
	w := mw.prefs.Float(prefs.KeyWindowWidth, 1200)
	h := mw.prefs.Float(prefs.KeyWindowHeight, 900)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))

	if dir := mw.prefs.String(prefs.KeyLastDir, ""); dir != "" {
		mw.state.SetLastDir(dir)
	}
	if scales := mw.prefs.FloatMap(prefs.KeyScales); scales != nil {
		current := mw.prefs.String(prefs.KeyCurrentScale, "")
		if err := mw.state.Calibration.Restore(scales, current); err != nil {
			mw.state.Log.WithError(err).Warn("saved scales ignored")
		}
	}
}

// savePrefs persists window and calibration settings.
func (mw *MainWindow) savePrefs() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	mw.prefs.SetString(prefs.KeyLastDir, mw.state.LastDir())
	mw.prefs.SetFloatMap(prefs.KeyScales, mw.state.Calibration.Scales())
	name, _ := mw.state.Calibration.Current()
	mw.prefs.SetString(prefs.KeyCurrentScale, name)
	if err := mw.prefs.Save(); err != nil {
		mw.state.Log.WithError(err).Warn("preferences not saved")
	}
}
