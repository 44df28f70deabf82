package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadXLSX reads the first worksheet of an .xlsx workbook into a cleaned
// Table with the same cleaning rules as LoadCSV. Only the first sheet is
// considered; transaction exports carry a single sheet.
func LoadXLSX(path string) (*LoadResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	return ReadXLSX(b)
}

// ReadXLSX parses xlsx workbook bytes into a cleaned Table.
func ReadXLSX(data []byte) (*LoadResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	sheetXML := zipEntry(zr, firstSheetPath(zr))
	if sheetXML == nil {
		return nil, errors.New("no worksheet found in workbook")
	}
	shared := sharedStrings(zipEntry(zr, "xl/sharedStrings.xml"))

	scan := newRowScanner(sheetXML, shared)
	header, ok := scan.Next()
	if !ok || len(header) == 0 {
		return nil, errors.New("empty workbook: no header row")
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	res := &LoadResult{}
	var rows [][]string
	for {
		rec, ok := scan.Next()
		if !ok {
			break
		}
		res.RawRows++
		row, ok := cleanRow(cols, rec)
		if !ok {
			res.Dropped++
			continue
		}
		rows = append(rows, row)
	}
	res.Table = NewTable(cols, rows)
	return res, nil
}

// firstSheetPath resolves the worksheet path of the workbook's first sheet
// through the relationship table, falling back to the conventional
// xl/worksheets/sheet1.xml.
func firstSheetPath(zr *zip.Reader) string {
	const fallback = "xl/worksheets/sheet1.xml"
	rid := firstSheetRID(zipEntry(zr, "xl/workbook.xml"))
	if rid == "" {
		return fallback
	}
	target := relTarget(zipEntry(zr, "xl/_rels/workbook.xml.rels"), rid)
	if target == "" {
		return fallback
	}
	// Relationship targets may carry a leading slash or omit the xl/
	// prefix; zip entries have neither quirk.
	target = strings.TrimPrefix(target, "/")
	if !strings.HasPrefix(target, "xl/") {
		target = "xl/" + target
	}
	return target
}

// firstSheetRID returns the relationship id of the first <sheet> element.
func firstSheetRID(workbook []byte) string {
	if len(workbook) == 0 {
		return ""
	}
	dec := xml.NewDecoder(bytes.NewReader(workbook))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local == "id" {
				return a.Value
			}
		}
		return ""
	}
}

// relTarget looks up one relationship target by id.
func relTarget(rels []byte, rid string) string {
	if len(rels) == 0 {
		return ""
	}
	dec := xml.NewDecoder(bytes.NewReader(rels))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id == rid {
			return target
		}
	}
}

func zipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// sharedStrings decodes xl/sharedStrings.xml into the indexed string pool.
func sharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var pool []string
	var buf strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return pool
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "si":
				pool = append(pool, buf.String())
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
}

// rowScanner streams worksheet rows without materializing the sheet DOM.
type rowScanner struct {
	dec    *xml.Decoder
	shared []string
	cells  []string
	width  int
}

func newRowScanner(sheet []byte, shared []string) *rowScanner {
	return &rowScanner{dec: xml.NewDecoder(bytes.NewReader(sheet)), shared: shared}
}

// Next returns the cells of the next row; ok is false at end of sheet.
// Cells are positioned by their A1-style reference, so sparse rows keep
// column alignment.
func (s *rowScanner) Next() ([]string, bool) {
	inRow := false
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return nil, false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				inRow = true
				s.cells = nil
				s.width = 0
			case "c":
				if !inRow {
					continue
				}
				var ref, typ string
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := colIndex(ref)
				if col < 0 {
					col = s.width
				}
				if col+1 > s.width {
					s.width = col + 1
				}
				if len(s.cells) <= col {
					grown := make([]string, col+1)
					copy(grown, s.cells)
					s.cells = grown
				}
				s.cells[col] = s.cellValue(typ)
			}
		case xml.EndElement:
			if t.Name.Local == "row" {
				if len(s.cells) < s.width {
					grown := make([]string, s.width)
					copy(grown, s.cells)
					s.cells = grown
				}
				return s.cells, true
			}
		}
	}
}

// cellValue consumes the current <c> element and returns its text, resolving
// shared-string cells through the pool.
func (s *rowScanner) cellValue(typ string) string {
	var val string
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return val
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "v" || t.Name.Local == "t" {
				val = s.elementText(t.Name.Local)
			}
		case xml.EndElement:
			if t.Name.Local == "c" {
				if typ == "s" {
					idx := digitsPrefix(val)
					if idx >= 0 && idx < len(s.shared) {
						return s.shared[idx]
					}
					return ""
				}
				return val
			}
		}
	}
}

func (s *rowScanner) elementText(name string) string {
	var b strings.Builder
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return b.String()
		}
		if end, ok := tok.(xml.EndElement); ok && end.Name.Local == name {
			return b.String()
		}
		if ch, ok := tok.(xml.CharData); ok {
			b.Write(ch)
		}
	}
}

// colIndex converts an A1-style reference to a 0-based column index, or -1
// when the reference carries no column letters.
func colIndex(ref string) int {
	n := 0
	seen := false
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			n = n*26 + int(c-'A'+1)
			seen = true
		case c >= 'a' && c <= 'z':
			n = n*26 + int(c-'a'+1)
			seen = true
		default:
			if seen {
				return n - 1
			}
			return -1
		}
	}
	if seen {
		return n - 1
	}
	return -1
}

// digitsPrefix parses the leading decimal digits of s, -1 when none.
func digitsPrefix(s string) int {
	n := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		if n < 0 {
			n = 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
