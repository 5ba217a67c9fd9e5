// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/colorutil"
)

// RacewaySizes are the EMT trade sizes offered in the raceway selector.
var RacewaySizes = []string{`1/2"`, `3/4"`, `1"`, `1-1/4"`, `1-1/2"`, `2"`, `2-1/2"`, `3"`, `4"`}

// ConductorSizes are the conductor sizes offered per group.
var ConductorSizes = []string{"14 AWG", "12 AWG", "10 AWG", "8 AWG", "6 AWG", "4 AWG", "3 AWG", "2 AWG", "1 AWG", "1/0 AWG", "2/0 AWG", "3/0 AWG", "4/0 AWG"}

type conductorRow struct {
	count      *widget.Entry
	size       *widget.SelectEntry
	material   *widget.Select
	insulation *widget.SelectEntry
}

// MeasureOptionsDialog is a property sheet for measurement options.
type MeasureOptionsDialog struct {
	opts   takeoff.MeasureOptions
	title  string
	window fyne.Window

	raceway    *widget.SelectEntry
	conductors [takeoff.MaxConductorGroups]conductorRow

	extraRaceway   *widget.Entry
	extraConductor *widget.Entry
	boxes          *widget.Entry
	waste          *widget.Entry

	colorEntry  *widget.Entry
	widthEntry  *widget.Entry
	colorSwatch *fynecanvas.Rectangle

	onSave func(takeoff.MeasureOptions)
}

// NewMeasureOptionsDialog creates a dialog editing a copy of opts.
func NewMeasureOptionsDialog(title string, opts takeoff.MeasureOptions, window fyne.Window, onSave func(takeoff.MeasureOptions)) *MeasureOptionsDialog {
	return &MeasureOptionsDialog{
		opts:   opts,
		title:  title,
		window: window,
		onSave: onSave,
	}
}

// Show displays the dialog.
func (d *MeasureOptionsDialog) Show() {
	content := d.createContent()

	dlg := dialog.NewCustomConfirm(
		d.title,
		"Apply",
		"Cancel",
		content,
		func(save bool) {
			if save && d.onSave != nil {
				d.onSave(d.applyChanges())
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(560, 620))
	dlg.Show()
}

func (d *MeasureOptionsDialog) createContent() fyne.CanvasObject {
	d.raceway = widget.NewSelectEntry(RacewaySizes)
	d.raceway.SetText(d.opts.Raceway)

	grid := container.NewGridWithColumns(4,
		widget.NewLabel("Count"),
		widget.NewLabel("Size"),
		widget.NewLabel("Material"),
		widget.NewLabel("Insulation"),
	)
	for i := range d.conductors {
		c := d.opts.Conductors[i]
		row := conductorRow{
			count:      widget.NewEntry(),
			size:       widget.NewSelectEntry(ConductorSizes),
			material:   widget.NewSelect([]string{"CU", "AL"}, nil),
			insulation: widget.NewSelectEntry([]string{"THHN", "THWN", "XHHW", "USE"}),
		}
		row.count.SetText(strconv.Itoa(c.Count))
		row.size.SetText(c.Size)
		row.material.SetSelected(c.Material)
		row.insulation.SetText(c.Insulation)
		d.conductors[i] = row
		grid.Add(row.count)
		grid.Add(row.size)
		grid.Add(row.material)
		grid.Add(row.insulation)
	}

	d.extraRaceway = floatEntry(d.opts.ExtraRacewayPerPoint)
	d.extraConductor = floatEntry(d.opts.ExtraConductorPerPoint)
	d.boxes = floatEntry(d.opts.BoxesPerPoint)
	d.waste = floatEntry(d.opts.WasteFactor)

	allowanceForm := widget.NewForm(
		widget.NewFormItem("Extra raceway per point (ft)", d.extraRaceway),
		widget.NewFormItem("Extra conductor per point (ft)", d.extraConductor),
		widget.NewFormItem("Boxes per point", d.boxes),
		widget.NewFormItem("Waste factor", d.waste),
	)

	d.colorEntry = widget.NewEntry()
	d.colorEntry.SetText(d.opts.Style.Color)
	d.widthEntry = floatEntry(d.opts.Style.LineWidth)
	d.colorSwatch = fynecanvas.NewRectangle(colorutil.Gray)
	d.colorSwatch.SetMinSize(fyne.NewSize(40, 24))
	d.colorEntry.OnChanged = func(string) { d.updateSwatch() }
	d.updateSwatch()

	styleForm := widget.NewForm(
		widget.NewFormItem("Color", container.NewBorder(nil, nil, nil, d.colorSwatch, d.colorEntry)),
		widget.NewFormItem("Line width", d.widthEntry),
	)

	return container.NewVBox(
		widget.NewCard("Raceway", "", widget.NewForm(widget.NewFormItem("EMT size", d.raceway))),
		widget.NewCard("Conductors", "", grid),
		widget.NewCard("Allowances", "", allowanceForm),
		widget.NewCard("Style", "", styleForm),
	)
}

func floatEntry(v float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(v, 'f', -1, 64))
	return e
}

// applyChanges reads the form back into a copy of the options. Fields
// that do not parse keep their previous value.
func (d *MeasureOptionsDialog) applyChanges() takeoff.MeasureOptions {
	out := d.opts
	out.Raceway = d.raceway.Text
	for i, row := range d.conductors {
		c := &out.Conductors[i]
		if v, err := strconv.Atoi(row.count.Text); err == nil {
			c.Count = v
		}
		c.Size = row.size.Text
		c.Material = row.material.Selected
		c.Insulation = row.insulation.Text
	}
	parseInto(d.extraRaceway, &out.ExtraRacewayPerPoint)
	parseInto(d.extraConductor, &out.ExtraConductorPerPoint)
	parseInto(d.boxes, &out.BoxesPerPoint)
	parseInto(d.waste, &out.WasteFactor)
	if c, ok := colorutil.ParseHex(d.colorEntry.Text); ok {
		out.Style.Color = colorutil.ToHex(c)
	}
	parseInto(d.widthEntry, &out.Style.LineWidth)
	return out.Normalized()
}

func parseInto(e *widget.Entry, dst *float64) {
	if v, err := strconv.ParseFloat(e.Text, 64); err == nil {
		*dst = v
	}
}

func (d *MeasureOptionsDialog) updateSwatch() {
	c, ok := colorutil.ParseHex(d.colorEntry.Text)
	if !ok {
		c = colorutil.Gray
	}
	d.colorSwatch.FillColor = c
	fynecanvas.Refresh(d.colorSwatch)
}

// ShowError reports err in a dialog, prefixed with the failed action.
func ShowError(action string, err error, window fyne.Window) {
	dialog.ShowError(fmt.Errorf("%s: %w", action, err), window)
}
