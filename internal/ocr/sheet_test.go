package ocr

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSheetNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"SHEET E-101", "E-101", true},
		{"ELECTRICAL LIGHTING PLAN E1.01", "E1.01", true},
		{"PANEL SCHEDULES LP-2", "LP-2", true},
		{"REV 3 DATE 04/12 SHEET NO E 201", "E-201", true},
		{"A-101 E-301", "E-301", true},
		{"DWG EP-2.1 SCALE 1/8", "EP-2.1", true},
		{"sheet e-102", "E-102", true},
		{"M-401 ARCH A-2", "A-2", true},
		{"NO TEXT HERE", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSheetNumber(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestTitleBlock(t *testing.T) {
	page := image.Rect(0, 0, 1000, 800)
	assert.Equal(t, image.Rect(750, 640, 1000, 800), TitleBlock(page, 0.25, 0.2))
	assert.Equal(t, page, TitleBlock(page, 0, 2))
}
