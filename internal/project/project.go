// Package project provides project file handling and persistence.
//
// A project is a plain serializable structure: the drawing set's file name,
// the takeoff state of every page and the tag registry. Loading is tolerant:
// anything salvageable is kept and inconsistencies become warnings.
package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"elec-takeoff/internal/takeoff"
)

// CurrentVersion is written into every saved project.
const CurrentVersion = 1

// File represents a takeoff project file.
type File struct {
	Version  int                     `json:"version"`
	FileName string                  `json:"fileName"`
	Pages    []PageFile              `json:"pages"`
	Tags     []takeoff.Tag           `json:"tags"`
	Options  *takeoff.MeasureOptions `json:"measureOptions,omitempty"`
}

// PageFile is the persisted form of one page.
type PageFile struct {
	PageIndex     int              `json:"pageIndex"`
	Label         string           `json:"label,omitempty"`
	PixelsPerFoot *float64         `json:"pixelsPerFoot,omitempty"`
	Unit          takeoff.Unit     `json:"unit"`
	Objects       []takeoff.Object `json:"objects"`
}

// New creates an empty project for a drawing set.
func New(fileName string) *File {
	return &File{
		Version:  CurrentVersion,
		FileName: fileName,
		Pages:    []PageFile{},
		Tags:     []takeoff.Tag{},
	}
}

// FromPage converts page state into its persisted form.
func FromPage(p *takeoff.PageState) PageFile {
	c := p.Clone()
	return PageFile{
		PageIndex:     c.PageIndex,
		Label:         c.Label,
		PixelsPerFoot: c.PixelsPerFoot,
		Unit:          c.Unit,
		Objects:       c.Objects,
	}
}

// State converts the persisted page back into page state.
func (pf PageFile) State() *takeoff.PageState {
	p := &takeoff.PageState{
		PageIndex:     pf.PageIndex,
		Label:         pf.Label,
		PixelsPerFoot: pf.PixelsPerFoot,
		Unit:          pf.Unit,
		Objects:       pf.Objects,
	}
	return p.Clone()
}

// Encode serializes the project deterministically: pages are ordered by
// index and empty collections are written as empty arrays.
func Encode(f *File) ([]byte, error) {
	out := *f
	if out.Version == 0 {
		out.Version = CurrentVersion
	}
	out.Pages = make([]PageFile, len(f.Pages))
	copy(out.Pages, f.Pages)
	sort.SliceStable(out.Pages, func(i, j int) bool {
		return out.Pages[i].PageIndex < out.Pages[j].PageIndex
	})
	for i := range out.Pages {
		if out.Pages[i].Objects == nil {
			out.Pages[i].Objects = []takeoff.Object{}
		}
		if out.Pages[i].Unit == "" {
			out.Pages[i].Unit = takeoff.UnitFeet
		}
	}
	if out.Tags == nil {
		out.Tags = []takeoff.Tag{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the project to a file.
func (f *File) Save(path string) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a project from a file. Only unreadable files and data that is
// not JSON at all are errors.
func Load(path string) (*File, []*Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Decode(data)
}
