package dialogs

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"elec-takeoff/internal/draw"
)

// LengthPrompt asks for the real-world length of a calibration line in a
// modal form. It implements draw.LengthPrompter.
type LengthPrompt struct {
	window fyne.Window
}

var _ draw.LengthPrompter = (*LengthPrompt)(nil)

// NewLengthPrompt creates a prompter bound to a window.
func NewLengthPrompt(window fyne.Window) *LengthPrompt {
	return &LengthPrompt{window: window}
}

// PromptLength shows the form. Exactly one reply is sent: the entered
// text on confirm, or ok=false on cancel or dismissal.
func (p *LengthPrompt) PromptLength(pixels float64, reply func(input string, ok bool)) {
	entry := widget.NewEntry()
	entry.SetPlaceHolder(`e.g. 10, 10 ft, 10'`)
	entry.Validator = func(s string) error {
		_, err := draw.ParseFeet(s)
		return err
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Measured", widget.NewLabel(fmt.Sprintf("%.1f px", pixels))),
		widget.NewFormItem("Real length (ft)", entry),
	}
	dlg := dialog.NewForm("Calibrate Page", "Set Scale", "Cancel", items, func(ok bool) {
		reply(entry.Text, ok)
	}, p.window)
	dlg.Resize(fyne.NewSize(360, 200))
	dlg.Show()
	p.window.Canvas().Focus(entry)
}
