package ocr

import (
	"fmt"
	"image"
	"regexp"
	"strings"
)

// sheetPattern matches discipline-prefixed sheet numbers such as E-101,
// E1.01, EP-2.1 or LP-2.
var sheetPattern = regexp.MustCompile(`\b([A-Z]{1,3})([-. ]?)(\d{1,3}(?:[.-]\d{1,3})?[A-Z]?)\b`)

var sheetKeyword = regexp.MustCompile(`\b(SHEET|SHT|DWG|DRAWING)\b`)

// Prefixes that read like sheet numbers but label other title block fields.
var notSheet = map[string]bool{
	"NO": true, "OF": true, "REV": true, "BY": true, "JOB": true,
	"DT": true, "PG": true, "CK": true, "DWN": true, "CHK": true,
}

// ParseSheetNumber extracts the most likely sheet number from title block
// text. Numbers following a SHEET/DWG keyword win, then electrical sheets,
// then the last candidate in reading order.
func ParseSheetNumber(text string) (string, bool) {
	text = strings.ToUpper(text)
	matches := sheetPattern.FindAllStringSubmatchIndex(text, -1)

	best, bestScore := "", -1
	for _, m := range matches {
		prefix := text[m[2]:m[3]]
		if notSheet[prefix] {
			continue
		}
		sep := text[m[4]:m[5]]
		if sep == " " {
			sep = "-"
		}
		number := prefix + sep + text[m[6]:m[7]]

		score := 0
		before := text[max(0, m[0]-12):m[0]]
		if sheetKeyword.MatchString(before) {
			score += 4
		}
		if strings.HasPrefix(prefix, "E") {
			score += 2
		}
		if score >= bestScore {
			best, bestScore = number, score
		}
	}
	return best, best != ""
}

// Sheet is the result of reading one page.
type Sheet struct {
	PageIndex int
	Number    string
	Text      string
}

// SheetReader reads sheet numbers from page bitmaps.
type SheetReader struct {
	engine *Engine

	// Fraction of the page width and height holding the title block.
	FracW, FracH float64
}

// NewSheetReader creates a reader with a title block in the bottom-right
// quarter width and fifth height of the page.
func NewSheetReader() (*SheetReader, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}
	return &SheetReader{engine: engine, FracW: 0.25, FracH: 0.2}, nil
}

// Close releases the OCR engine.
func (r *SheetReader) Close() error {
	return r.engine.Close()
}

// Read recognizes the title block of a page. A page without a
// recognizable number is not an error; Number is then empty.
func (r *SheetReader) Read(pageIndex int, page image.Image) (Sheet, error) {
	mat, err := ImageToMat(page)
	if err != nil {
		return Sheet{}, err
	}
	defer mat.Close()

	block := TitleBlock(image.Rect(0, 0, mat.Cols(), mat.Rows()), r.FracW, r.FracH)
	text, err := r.engine.Recognize(mat, block)
	if err != nil {
		return Sheet{}, fmt.Errorf("page %d: %w", pageIndex, err)
	}

	number, _ := ParseSheetNumber(text)
	return Sheet{PageIndex: pageIndex, Number: number, Text: text}, nil
}
