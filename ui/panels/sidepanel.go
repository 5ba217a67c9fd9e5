// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/bom"
	"elec-takeoff/internal/store"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	BOM        *BOMPanel
	Tags       *TagsPanel
	Pages      *PagesPanel
	Library    *LibraryPanel
	Properties *PropertySheet
}

// NewSidePanel creates a new side panel. st may be nil when the library
// could not be opened.
func NewSidePanel(state *app.State, prices bom.PriceBook, st *store.Store) *SidePanel {
	sp := &SidePanel{state: state}

	sp.BOM = NewBOMPanel(state, prices)
	sp.Tags = NewTagsPanel(state)
	sp.Pages = NewPagesPanel(state)
	sp.Library = NewLibraryPanel(state, st)
	sp.Properties = NewPropertySheet(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("BOM", sp.BOM.Container()),
		container.NewTabItem("Selection", sp.Properties.Container()),
		container.NewTabItem("Tags", sp.Tags.Container()),
		container.NewTabItem("Pages", sp.Pages.Container()),
		container.NewTabItem("Library", sp.Library.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.Tags.SetWindow(w)
	sp.Library.SetWindow(w)
	sp.Properties.SetWindow(w)
}
