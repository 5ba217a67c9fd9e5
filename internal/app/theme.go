package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"elec-takeoff/pkg/colorutil"
)

// TakeoffTheme is the application theme: selection blue, a warm primary for
// measurement tools and compact padding so the drawing gets the space.
type TakeoffTheme struct{}

var _ fyne.Theme = (*TakeoffTheme)(nil)

func (t *TakeoffTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.Orange
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(colorutil.Selection, 0x60)
	case theme.ColorNameFocus:
		return colorutil.WithAlpha(colorutil.Selection, 0x90)
	case theme.ColorNameScrollBar:
		return colorutil.Gray
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *TakeoffTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *TakeoffTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *TakeoffTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameScrollBar:
		return 14
	default:
		return theme.DefaultTheme().Size(name)
	}
}
