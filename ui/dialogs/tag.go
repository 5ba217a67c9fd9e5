package dialogs

import (
	"fmt"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"elec-takeoff/internal/tags"
	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/colorutil"
)

// TagEditDialog edits one tag of the registry.
type TagEditDialog struct {
	tag    takeoff.Tag
	reg    *tags.Registry
	window fyne.Window

	codeEntry     *widget.Entry
	nameEntry     *widget.Entry
	categoryEntry *widget.SelectEntry
	colorEntry    *widget.Entry
	colorSwatch   *fynecanvas.Rectangle

	onSave   func(takeoff.Tag)
	onDelete func(code string)
}

// NewTagEditDialog creates a dialog for tag t. A tag with an empty code
// is treated as new, and the delete button is hidden.
func NewTagEditDialog(t takeoff.Tag, reg *tags.Registry, window fyne.Window,
	onSave func(takeoff.Tag), onDelete func(code string)) *TagEditDialog {
	return &TagEditDialog{
		tag:      t,
		reg:      reg,
		window:   window,
		onSave:   onSave,
		onDelete: onDelete,
	}
}

// Show displays the dialog.
func (d *TagEditDialog) Show() {
	content := d.createContent()

	title := "New Tag"
	if d.tag.Code != "" {
		title = "Edit Tag: " + d.tag.Code
	}

	var dlg dialog.Dialog

	saveBtn := widget.NewButton("Save", func() {
		t, err := d.applyChanges()
		if err != nil {
			dialog.ShowError(err, d.window)
			return
		}
		if d.onSave != nil {
			d.onSave(t)
		}
		dlg.Hide()
	})
	saveBtn.Importance = widget.HighImportance

	cancelBtn := widget.NewButton("Cancel", func() {
		dlg.Hide()
	})

	buttons := container.NewHBox(cancelBtn, saveBtn)
	if d.tag.Code != "" && d.onDelete != nil {
		deleteBtn := widget.NewButton("Delete", func() {
			dialog.ShowConfirm("Delete Tag",
				fmt.Sprintf("Delete tag %s? Objects keep the code.", d.tag.Code),
				func(confirmed bool) {
					if confirmed {
						d.onDelete(d.tag.Code)
						dlg.Hide()
					}
				}, d.window)
		})
		deleteBtn.Importance = widget.DangerImportance
		buttons = container.NewHBox(deleteBtn, container.NewHBox(), cancelBtn, saveBtn)
	}

	fullContent := container.NewBorder(nil, buttons, nil, nil, content)
	dlg = dialog.NewCustomWithoutButtons(title, fullContent, d.window)
	dlg.Resize(fyne.NewSize(420, 300))
	dlg.Show()
}

func (d *TagEditDialog) createContent() fyne.CanvasObject {
	d.codeEntry = widget.NewEntry()
	d.codeEntry.SetText(d.tag.Code)
	d.codeEntry.SetPlaceHolder("e.g. A1")

	d.nameEntry = widget.NewEntry()
	d.nameEntry.SetText(d.tag.Name)

	var categories []string
	seen := make(map[string]bool)
	for _, r := range d.reg.Rules() {
		if !seen[r.Category] {
			seen[r.Category] = true
			categories = append(categories, r.Category)
		}
	}
	d.categoryEntry = widget.NewSelectEntry(categories)
	d.categoryEntry.SetText(d.tag.Category)
	d.categoryEntry.SetPlaceHolder("inferred from code")

	d.colorEntry = widget.NewEntry()
	d.colorEntry.SetText(d.tag.Color)
	d.colorSwatch = fynecanvas.NewRectangle(colorutil.Gray)
	d.colorSwatch.SetMinSize(fyne.NewSize(40, 24))
	d.colorEntry.OnChanged = func(string) { d.updateSwatch() }
	d.updateSwatch()

	return widget.NewForm(
		widget.NewFormItem("Code", d.codeEntry),
		widget.NewFormItem("Name", d.nameEntry),
		widget.NewFormItem("Category", d.categoryEntry),
		widget.NewFormItem("Color", container.NewBorder(nil, nil, nil, d.colorSwatch, d.colorEntry)),
	)
}

func (d *TagEditDialog) applyChanges() (takeoff.Tag, error) {
	t := d.tag
	t.Code = tags.Normalize(d.codeEntry.Text)
	if t.Code == "" {
		return t, fmt.Errorf("tag code is required")
	}
	t.Name = d.nameEntry.Text
	t.Category = d.categoryEntry.Text
	t.Color = ""
	if c, ok := colorutil.ParseHex(d.colorEntry.Text); ok {
		t.Color = colorutil.ToHex(c)
	}
	if t.ID == "" {
		t.ID = takeoff.NewID()
	}
	return t, nil
}

func (d *TagEditDialog) updateSwatch() {
	c, ok := colorutil.ParseHex(d.colorEntry.Text)
	if !ok {
		c = colorutil.Gray
	}
	d.colorSwatch.FillColor = c
	fynecanvas.Refresh(d.colorSwatch)
}
