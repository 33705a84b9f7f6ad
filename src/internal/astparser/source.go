package astparser

import (
	"sort"
	"strconv"
	"strings"
)

// Range is a byte span in the source text. End is exclusive.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span length in bytes.
func (r Range) Len() int { return r.End - r.Start }

// Position is a 1-based line and 0-based column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Loc is the line/column form of a Range.
type Loc struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// parseSrc decodes a solc "start:length:fileIndex" triple.
func parseSrc(src string) (Range, bool) {
	parts := strings.Split(src, ":")
	if len(parts) < 2 {
		return Range{}, false
	}
	offset, err1 := strconv.Atoi(parts[0])
	length, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || offset < 0 || length < 0 {
		return Range{}, false
	}
	return Range{Start: offset, End: offset + length}, true
}

// lineIndex maps byte offsets to positions.
type lineIndex struct {
	starts []int
}

func newLineIndex(source string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (li *lineIndex) position(offset int) Position {
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: offset - li.starts[line]}
}

func (li *lineIndex) loc(r Range) Loc {
	return Loc{Start: li.position(r.Start), End: li.position(r.End)}
}

// Slice returns the text covered by r, or "" when r lies outside source.
func Slice(source string, r Range) string {
	if r.Start < 0 || r.End < r.Start || r.End > len(source) {
		return ""
	}
	return source[r.Start:r.End]
}

// Before returns the text strictly before r.Start.
func Before(source string, r Range) string {
	if r.Start <= 0 {
		return ""
	}
	if r.Start > len(source) {
		return source
	}
	return source[:r.Start]
}
