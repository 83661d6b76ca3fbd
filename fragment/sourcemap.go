package fragment

import (
	"strings"
	"unicode/utf16"

	"github.com/goccy/go-json"

	"github.com/rbjs-dev/rbjs/internal/token"
)

// SourceMap is a version 3 source map.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// NewSourceMap maps every fragment that has an origin node to the position
// of that node in the named source file. A segment starts at the first
// code of its fragment, after any leading newlines and indentation. Both
// generated and source columns are counted in UTF-16 code units.
func NewSourceMap(frags []Fragment, file, source string) *SourceMap {
	m := &SourceMap{
		Version: 3,
		File:    file,
		Sources: []string{file},
		Names:   []string{},
	}
	if source != "" {
		m.SourcesContent = []string{source}
	}

	var (
		b       strings.Builder
		col     int
		prevCol int
		prevSrc [2]int // line, column of the previous segment
		first   = true // first segment of the current line
	)
	advance := func(code string) {
		for _, r := range code {
			if r == '\n' {
				b.WriteByte(';')
				col, prevCol = 0, 0
				first = true
				continue
			}
			col += utf16.RuneLen(r)
		}
	}
	for _, f := range frags {
		code := f.Code
		if pos, ok := f.Location(); ok {
			lead := len(code) - len(strings.TrimLeft(code, " \t\n"))
			advance(code[:lead])
			code = code[lead:]
			if code != "" {
				srcCol := sourceColumn(source, pos)
				if !first {
					b.WriteByte(',')
				}
				writeVLQ(&b, col-prevCol)
				writeVLQ(&b, 0)
				writeVLQ(&b, pos.Line-prevSrc[0])
				writeVLQ(&b, srcCol-prevSrc[1])
				prevCol = col
				prevSrc = [2]int{pos.Line, srcCol}
				first = false
			}
		}
		advance(code)
	}
	m.Mappings = b.String()
	return m
}

// sourceColumn converts the byte column of pos to UTF-16 code units. The
// byte column is kept when pos does not point into source.
func sourceColumn(source string, pos token.Position) int {
	start, end := pos.LineStart, pos.Char
	if start < 0 || start > end || end > len(source) || end-start != pos.Column {
		return pos.Column
	}
	n := 0
	for _, r := range source[start:end] {
		n += utf16.RuneLen(r)
	}
	return n
}

// JSON returns the JSON form of the map.
func (m *SourceMap) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ParseSourceMap decodes a JSON source map.
func ParseSourceMap(data []byte) (*SourceMap, error) {
	var m SourceMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Segment is one decoded mapping.
type Segment struct {
	GeneratedLine   int
	GeneratedColumn int
	SourceLine      int
	SourceColumn    int
}

// Segments decodes the mappings of the map.
func (m *SourceMap) Segments() ([]Segment, error) {
	var (
		out     []Segment
		src     [3]int // source index, line, column
		genLine int
	)
	for _, group := range strings.Split(m.Mappings, ";") {
		genCol := 0
		if group != "" {
			for _, seg := range strings.Split(group, ",") {
				values, err := readVLQ(seg)
				if err != nil {
					return nil, err
				}
				genCol += values[0]
				if len(values) >= 4 {
					src[0] += values[1]
					src[1] += values[2]
					src[2] += values[3]
					out = append(out, Segment{
						GeneratedLine:   genLine,
						GeneratedColumn: genCol,
						SourceLine:      src[1],
						SourceColumn:    src[2],
					})
				}
			}
		}
		genLine++
	}
	return out, nil
}
