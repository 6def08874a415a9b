// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"scratch-view/internal/calibration"
)

// ScalesDialog edits the calibration scale registry: named micrometer per
// pixel values, one of which is current.
type ScalesDialog struct {
	cal    *calibration.Calibration
	window fyne.Window

	selector   *widget.Select
	nameEntry  *widget.Entry
	valueEntry *widget.Entry

	// onChange is called after any edit, e.g. to refresh readouts.
	onChange func()
}

// NewScalesDialog creates a scale registry dialog.
func NewScalesDialog(cal *calibration.Calibration, window fyne.Window, onChange func()) *ScalesDialog {
	return &ScalesDialog{
		cal:      cal,
		window:   window,
		onChange: onChange,
	}
}

// Show displays the dialog.
func (d *ScalesDialog) Show() {
	d.selector = widget.NewSelect(d.cal.Names(), func(name string) {
		if err := d.cal.Select(name); err == nil {
			d.changed()
		}
	})
	current, _ := d.cal.Current()
	d.selector.SetSelected(current)

	d.nameEntry = widget.NewEntry()
	d.nameEntry.SetPlaceHolder("name")
	d.valueEntry = widget.NewEntry()
	d.valueEntry.SetPlaceHolder("µm per pixel")

	addBtn := widget.NewButton("Add", d.onAdd)
	removeBtn := widget.NewButton("Remove Selected", d.onRemove)

	content := container.NewVBox(
		widget.NewLabel("Current scale:"),
		d.selector,
		widget.NewSeparator(),
		widget.NewLabel("Add or replace a scale:"),
		container.NewGridWithColumns(3, d.nameEntry, d.valueEntry, addBtn),
		removeBtn,
	)

	dialog.ShowCustom("Scales", "Close", content, d.window)
}

func (d *ScalesDialog) onAdd() {
	value, err := strconv.ParseFloat(d.valueEntry.Text, 64)
	if err != nil {
		dialog.ShowError(fmt.Errorf("scale value %q is not a number", d.valueEntry.Text), d.window)
		return
	}
	if err := d.cal.SetScale(d.nameEntry.Text, value); err != nil {
		dialog.ShowError(err, d.window)
		return
	}
	if err := d.cal.Select(d.nameEntry.Text); err == nil {
		d.refreshSelector()
		d.changed()
	}
}

func (d *ScalesDialog) onRemove() {
	if d.selector.Selected == "" {
		return
	}
	if err := d.cal.RemoveScale(d.selector.Selected); err != nil {
		dialog.ShowError(err, d.window)
		return
	}
	d.refreshSelector()
	d.changed()
}

func (d *ScalesDialog) refreshSelector() {
	d.selector.Options = d.cal.Names()
	current, _ := d.cal.Current()
	d.selector.SetSelected(current)
	d.selector.Refresh()
}

func (d *ScalesDialog) changed() {
	if d.onChange != nil {
		d.onChange()
	}
}
