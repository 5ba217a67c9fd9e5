package project

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"elec-takeoff/internal/takeoff"
)

// Decode parses project data leniently. Missing or wrongly typed pages and
// tags default to empty, malformed entries are skipped, and every repair is
// reported as a warning. Only data that is not a JSON object is an error.
func Decode(data []byte) (*File, []*Warning, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse project: %w", err)
	}

	var c Collector
	f := New("")

	if v, ok := raw["version"]; ok {
		if err := json.Unmarshal(v, &f.Version); err != nil {
			c.Add(WarningLevelInfo, CodeWrongType, "version is not a number")
			f.Version = CurrentVersion
		}
	}

	f.FileName = decodeFileName(raw, &c)
	f.Pages = decodePages(raw["pages"], &c)
	f.Tags = decodeTags(raw["tags"], &c)

	if v, ok := raw["measureOptions"]; ok && !isNull(v) {
		var opts takeoff.MeasureOptions
		if err := json.Unmarshal(v, &opts); err != nil {
			c.Add(WarningLevelWarning, CodeWrongType, "measurement options unreadable, using defaults")
		} else {
			f.Options = &opts
		}
	}

	return f, c.Warnings(), nil
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || string(v) == "null"
}

func decodeFileName(raw map[string]json.RawMessage, c *Collector) string {
	for _, key := range []string{"fileName", "file_name", "name"} {
		v, ok := raw[key]
		if !ok || isNull(v) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			c.Add(WarningLevelInfo, CodeWrongType, "%s is not a string", key)
			continue
		}
		if key != "fileName" {
			c.Add(WarningLevelInfo, CodeLegacyFormat, "read file name from legacy field %q", key)
		}
		return s
	}
	return ""
}

// decodePages accepts the current array form and the legacy object form
// keyed by page index.
func decodePages(v json.RawMessage, c *Collector) []PageFile {
	pages := []PageFile{}
	if isNull(v) {
		c.Add(WarningLevelWarning, CodeMissingField, "project has no pages")
		return pages
	}

	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(v, &keyed); err != nil {
			c.Add(WarningLevelWarning, CodeWrongType, "pages is neither a list nor a map, ignoring")
			return pages
		}
		c.Add(WarningLevelInfo, CodeLegacyFormat, "pages stored as a map, converting")
		keys := make([]string, 0, len(keyed))
		for k := range keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			idx, err := strconv.Atoi(k)
			if err != nil {
				c.Add(WarningLevelWarning, CodeBadPage, "page key %q is not an index", k)
				continue
			}
			if pf, ok := decodePage(keyed[k], &idx, c); ok {
				pages = append(pages, pf)
			} else {
				c.Add(WarningLevelWarning, CodeBadPage, "page %q skipped", k)
			}
		}
		return mergePages(pages, c)
	}

	for i, item := range items {
		if pf, ok := decodePage(item, nil, c); ok {
			pages = append(pages, pf)
		} else {
			c.Add(WarningLevelWarning, CodeBadPage, "page entry %d skipped", i)
		}
	}
	return mergePages(pages, c)
}

type pageFields struct {
	PageIndex     *int            `json:"pageIndex"`
	Label         json.RawMessage `json:"label"`
	PixelsPerFoot json.RawMessage `json:"pixelsPerFoot"`
	Unit          json.RawMessage `json:"unit"`
	Objects       json.RawMessage `json:"objects"`
}

func decodePage(v json.RawMessage, keyIndex *int, c *Collector) (PageFile, bool) {
	var pf pageFields
	if err := json.Unmarshal(v, &pf); err != nil {
		return PageFile{}, false
	}

	var index int
	switch {
	case pf.PageIndex != nil:
		index = *pf.PageIndex
	case keyIndex != nil:
		index = *keyIndex
	default:
		return PageFile{}, false
	}
	if index < 0 {
		return PageFile{}, false
	}

	out := PageFile{
		PageIndex: index,
		Unit:      takeoff.UnitFeet,
		Objects:   []takeoff.Object{},
	}

	if !isNull(pf.Label) {
		if err := json.Unmarshal(pf.Label, &out.Label); err != nil {
			c.Add(WarningLevelInfo, CodeWrongType, "page %d label is not a string", index)
		}
	}

	if !isNull(pf.PixelsPerFoot) {
		var ppf float64
		if err := json.Unmarshal(pf.PixelsPerFoot, &ppf); err != nil || !takeoff.ValidScale(ppf) {
			c.Add(WarningLevelWarning, CodeBadCalibration,
				"page %d calibration is invalid, page left uncalibrated", index).
				WithContext("page", index)
		} else {
			out.PixelsPerFoot = &ppf
		}
	}

	if !isNull(pf.Unit) {
		var u takeoff.Unit
		if err := json.Unmarshal(pf.Unit, &u); err != nil || !u.Valid() {
			c.Add(WarningLevelInfo, CodeBadUnit, "page %d unit unrecognized, using ft", index)
		} else {
			out.Unit = u
		}
	}

	out.Objects = decodeObjects(pf.Objects, index, c)
	return out, true
}

func decodeObjects(v json.RawMessage, pageIndex int, c *Collector) []takeoff.Object {
	objs := []takeoff.Object{}
	if isNull(v) {
		return objs
	}

	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		c.Add(WarningLevelWarning, CodeWrongType, "page %d objects is not a list, ignoring", pageIndex)
		return objs
	}

	for i, item := range items {
		var o takeoff.Object
		if err := json.Unmarshal(item, &o); err != nil {
			c.Add(WarningLevelWarning, CodeBadObject, "page %d object %d unreadable", pageIndex, i)
			continue
		}
		if err := o.Validate(); err != nil {
			c.Add(WarningLevelWarning, CodeBadObject, "page %d object %d dropped: %v", pageIndex, i, err).
				WithContext("id", o.ID)
			continue
		}
		if o.PageIndex != pageIndex {
			c.Add(WarningLevelInfo, CodeRehomedObject, "object %s claimed page %d, kept on page %d",
				o.ID, o.PageIndex, pageIndex)
			o.PageIndex = pageIndex
		}
		objs = append(objs, o)
	}
	return objs
}

// mergePages folds duplicate page indexes into one page, keeping the
// first calibration seen and concatenating objects.
func mergePages(pages []PageFile, c *Collector) []PageFile {
	byIndex := make(map[int]int, len(pages))
	out := make([]PageFile, 0, len(pages))
	for _, p := range pages {
		at, seen := byIndex[p.PageIndex]
		if !seen {
			byIndex[p.PageIndex] = len(out)
			out = append(out, p)
			continue
		}
		c.Add(WarningLevelWarning, CodeDuplicatePage, "page %d listed more than once, merged", p.PageIndex)
		dst := &out[at]
		if dst.PixelsPerFoot == nil {
			dst.PixelsPerFoot = p.PixelsPerFoot
		}
		if dst.Label == "" {
			dst.Label = p.Label
		}
		dst.Objects = append(dst.Objects, p.Objects...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PageIndex < out[j].PageIndex })
	return out
}

func decodeTags(v json.RawMessage, c *Collector) []takeoff.Tag {
	tags := []takeoff.Tag{}
	if isNull(v) {
		return tags
	}

	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		c.Add(WarningLevelWarning, CodeWrongType, "tags is not a list, ignoring")
		return tags
	}

	for i, item := range items {
		var t takeoff.Tag
		if err := json.Unmarshal(item, &t); err != nil {
			c.Add(WarningLevelWarning, CodeBadTag, "tag %d unreadable", i)
			continue
		}
		if t.Code == "" {
			c.Add(WarningLevelWarning, CodeBadTag, "tag %d has no code", i)
			continue
		}
		tags = append(tags, t)
	}
	return tags
}
