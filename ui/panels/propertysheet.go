package panels

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/bom"
	"elec-takeoff/internal/draw"
	"elec-takeoff/internal/takeoff"
	"elec-takeoff/ui/dialogs"
)

// PropertySheet shows and edits the selected objects.
type PropertySheet struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	summary   *widget.Label
	details   *widget.Label
	codeEntry *widget.Entry
	rotateBox *fyne.Container
	optsBtn   *widget.Button
}

// NewPropertySheet creates a new property sheet panel.
func NewPropertySheet(state *app.State) *PropertySheet {
	ps := &PropertySheet{state: state}

	ps.summary = widget.NewLabel("Nothing selected")
	ps.details = widget.NewLabel("")
	ps.details.Wrapping = fyne.TextWrapWord

	ps.codeEntry = widget.NewEntry()
	ps.codeEntry.SetPlaceHolder("Tag code")
	ps.codeEntry.OnSubmitted = func(s string) { ps.setCode(s) }

	ps.rotateBox = container.NewHBox(
		widget.NewButton("Rotate -90", func() { ps.rotate(-90) }),
		widget.NewButton("Rotate +90", func() { ps.rotate(90) }),
	)
	ps.optsBtn = widget.NewButton("Measure Options...", func() { ps.editOptions() })
	deleteBtn := widget.NewButton("Delete", func() { ps.state.DeleteSelected() })
	deleteBtn.Importance = widget.DangerImportance

	form := widget.NewForm(widget.NewFormItem("Code", ps.codeEntry))

	ps.container = container.NewVBox(
		ps.summary,
		form,
		ps.details,
		ps.rotateBox,
		ps.optsBtn,
		deleteBtn,
	)

	for _, ev := range []app.EventType{
		app.EventSelectionChanged,
		app.EventObjectsChanged,
		app.EventCalibrationChanged,
	} {
		state.On(ev, func(interface{}) { ps.Refresh() })
	}
	ps.Refresh()
	return ps
}

// Container returns the panel container.
func (ps *PropertySheet) Container() fyne.CanvasObject {
	return ps.container
}

// SetWindow sets the parent window for dialogs.
func (ps *PropertySheet) SetWindow(w fyne.Window) {
	ps.window = w
}

func (ps *PropertySheet) selected() (int, []takeoff.Object) {
	pageIndex, ids := ps.state.Selection()
	objs := make([]takeoff.Object, 0, len(ids))
	for _, id := range ids {
		if o, ok := ps.state.Object(pageIndex, id); ok {
			objs = append(objs, o)
		}
	}
	return pageIndex, objs
}

// Refresh redisplays the current selection.
func (ps *PropertySheet) Refresh() {
	pageIndex, objs := ps.selected()
	if len(objs) == 0 {
		ps.summary.SetText("Nothing selected")
		ps.details.SetText("")
		ps.codeEntry.SetText("")
		ps.codeEntry.Disable()
		ps.rotateBox.Hide()
		ps.optsBtn.Disable()
		return
	}
	ps.codeEntry.Enable()

	if len(objs) > 1 {
		ps.summary.SetText(fmt.Sprintf("%d objects selected", len(objs)))
		ps.details.SetText("")
		ps.codeEntry.SetText("")
		ps.rotateBox.Hide()
		ps.optsBtn.Enable()
		return
	}

	o := objs[0]
	page := ps.state.Page(pageIndex)
	ps.summary.SetText(fmt.Sprintf("%s on page %d", o.Type, pageIndex+1))
	ps.codeEntry.SetText(o.Code)

	var lines []string
	if o.Type == takeoff.TypeCount {
		p := o.Position()
		lines = append(lines,
			fmt.Sprintf("Position: %.1f, %.1f", p.X, p.Y),
			fmt.Sprintf("Rotation: %.0f deg", o.Rotation))
		ps.rotateBox.Show()
		ps.optsBtn.Disable()
	} else {
		lines = append(lines,
			fmt.Sprintf("Vertices: %d", len(o.Vertices)),
			"Length: "+draw.LengthLabel(page, o.PixelLength()))
		opts := ps.state.MeasureOptions()
		if o.Measure != nil {
			opts = *o.Measure
		}
		q := bom.Quantities(bom.ObjectLengthFeet(o, page), opts)
		lines = append(lines,
			fmt.Sprintf("Raceway: %s EMT, %.2f LF", opts.Raceway, q.RacewayLf),
			fmt.Sprintf("Conductors: %s, %.2f LF", bom.ConductorLabel(opts), q.ConductorLf))
		ps.rotateBox.Hide()
		ps.optsBtn.Enable()
	}
	ps.details.SetText(strings.Join(lines, "\n"))
}

func (ps *PropertySheet) setCode(code string) {
	pageIndex, objs := ps.selected()
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, o := range objs {
		if o.Code == code {
			continue
		}
		ps.state.PatchObject(pageIndex, o.ID, func(obj *takeoff.Object) { obj.Code = code })
	}
}

func (ps *PropertySheet) rotate(deg float64) {
	pageIndex, objs := ps.selected()
	if len(objs) == 1 {
		ps.state.RotateObject(pageIndex, objs[0].ID, objs[0].Rotation+deg)
	}
}

func (ps *PropertySheet) editOptions() {
	if ps.window == nil {
		return
	}
	pageIndex, objs := ps.selected()
	opts := ps.state.MeasureOptions()
	ids := make([]string, 0, len(objs))
	for _, o := range objs {
		if o.Measure != nil && len(ids) == 0 {
			opts = *o.Measure
		}
		ids = append(ids, o.ID)
	}
	dialogs.NewMeasureOptionsDialog("Selection Measure Options", opts, ps.window, func(updated takeoff.MeasureOptions) {
		ps.state.ApplyMeasureOptions(pageIndex, ids, updated)
	}).Show()
}
