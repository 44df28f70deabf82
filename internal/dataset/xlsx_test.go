package dataset

import (
	"archive/zip"
	"bytes"
	"testing"
)

// buildWorkbook assembles a minimal in-memory xlsx from named XML parts.
func buildWorkbook(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const testSheetXML = `<?xml version="1.0"?>
<worksheet><sheetData>
<row r="1">
  <c r="A1" t="s"><v>0</v></c>
  <c r="B1" t="s"><v>1</v></c>
  <c r="C1" t="s"><v>2</v></c>
</row>
<row r="2">
  <c r="A2"><v>1</v></c>
  <c r="B2" t="s"><v>3</v></c>
  <c r="C2" t="inlineStr"><is><t>30-10-2016 09:58</t></is></c>
</row>
<row r="3">
  <c r="A3"><v>2</v></c>
  <c r="C3" t="inlineStr"><is><t>30-10-2016 10:05</t></is></c>
</row>
</sheetData></worksheet>`

const testSharedXML = `<?xml version="1.0"?>
<sst><si><t>Transaction</t></si><si><t>Item</t></si><si><t>date_time</t></si><si><t>Bread</t></si></sst>`

func TestReadXLSXResolvesSheetThroughRelationships(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"xl/workbook.xml": `<?xml version="1.0"?>
<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Orders" sheetId="1" r:id="rId9"/></sheets></workbook>`,
		// Leading slash on the target exercises path normalization.
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0"?>
<Relationships><Relationship Id="rId9" Target="/xl/worksheets/orders.xml"/></Relationships>`,
		"xl/sharedStrings.xml":     testSharedXML,
		"xl/worksheets/orders.xml": testSheetXML,
	})

	res, err := ReadXLSX(data)
	if err != nil {
		t.Fatalf("ReadXLSX returned error: %v", err)
	}
	if res.RawRows != 2 {
		t.Errorf("RawRows = %d, want 2", res.RawRows)
	}
	// Row 3 misses the Item cell and is dropped by cleaning.
	if res.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", res.Dropped)
	}
	if res.Table.Len() != 1 {
		t.Fatalf("Table.Len() = %d, want 1", res.Table.Len())
	}
	if v, _ := res.Table.Cell(0, "Item"); v != "Bread" {
		t.Errorf("Cell(0, Item) = %q, want Bread", v)
	}
	if v, _ := res.Table.Cell(0, "date_time"); v != "30-10-2016 09:58" {
		t.Errorf("Cell(0, date_time) = %q", v)
	}
	if v, _ := res.Table.Cell(0, "Transaction"); v != "1" {
		t.Errorf("Cell(0, Transaction) = %q, want 1", v)
	}
}

func TestReadXLSXFallsBackToConventionalSheetPath(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"xl/sharedStrings.xml":     testSharedXML,
		"xl/worksheets/sheet1.xml": testSheetXML,
	})
	res, err := ReadXLSX(data)
	if err != nil {
		t.Fatalf("ReadXLSX returned error: %v", err)
	}
	if res.Table.Len() != 1 {
		t.Errorf("Table.Len() = %d, want 1", res.Table.Len())
	}
}

func TestReadXLSXMissingSheet(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"xl/sharedStrings.xml": testSharedXML,
	})
	if _, err := ReadXLSX(data); err == nil {
		t.Error("expected error for workbook without worksheets")
	}
}

func TestReadXLSXNotAZip(t *testing.T) {
	if _, err := ReadXLSX([]byte("Transaction,Item\n1,Bread\n")); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestColIndex(t *testing.T) {
	cases := []struct {
		ref  string
		want int
	}{
		{"A1", 0},
		{"C12", 2},
		{"Z3", 25},
		{"AA7", 26},
		{"7", -1},
		{"", -1},
	}
	for _, tc := range cases {
		if got := colIndex(tc.ref); got != tc.want {
			t.Errorf("colIndex(%q) = %d, want %d", tc.ref, got, tc.want)
		}
	}
}
