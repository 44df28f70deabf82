package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadResult carries the cleaned table plus loader diagnostics.
type LoadResult struct {
	Table *Table
	// RawRows is the number of data rows read before cleaning.
	RawRows int
	// Dropped is the number of rows discarded for missing values.
	Dropped int
}

// LoadCSV reads a CSV file into a cleaned Table. This is the only fatal
// entry point of the pipeline: an unreadable or headerless file aborts the
// whole analysis.
func LoadCSV(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses CSV content into a cleaned Table. Rows with any missing
// field are dropped; ragged short rows count as missing.
func ReadCSV(r io.Reader) (*LoadResult, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	res := &LoadResult{}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", res.RawRows+1, err)
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

// cleanRow trims a raw record against the header. ok is false when the
// record is short or any field is empty.
func cleanRow(cols []string, rec []string) ([]string, bool) {
	if len(rec) < len(cols) {
		return nil, false
	}
	row := make([]string, len(cols))
	for i := range cols {
		v := strings.TrimSpace(rec[i])
		if v == "" {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}
