package report

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/cartloom/cartloom/internal/analytics"
	"github.com/cartloom/cartloom/internal/dataset"
)

func TestBuildConvertsNumericCells(t *testing.T) {
	tbl := dataset.NewTable(
		[]string{"Transaction", "Item", "qty", "date_time"},
		[][]string{
			{"1", "Coffee", "2", "30-10-2016 09:58"},
			{"2", "Bread", "1.5", "30-10-2016 10:05"},
		},
	)
	doc := analytics.NewDocument()
	bundle := Build("id-1", tbl, doc, "narrative", 0)

	if bundle.AnalysisID != "id-1" {
		t.Errorf("analysis_id = %q, want id-1", bundle.AnalysisID)
	}
	if bundle.TotalRows != 2 {
		t.Errorf("total_rows = %d, want 2", bundle.TotalRows)
	}
	if bundle.Insights != "narrative" {
		t.Errorf("insights = %q", bundle.Insights)
	}
	// Transaction is numeric in this table, so its cells carry numbers.
	if v, ok := bundle.Data[0]["qty"].(float64); !ok || v != 2 {
		t.Errorf("data[0][qty] = %v (%T), want float64 2", bundle.Data[0]["qty"], bundle.Data[0]["qty"])
	}
	if v, ok := bundle.Data[1]["qty"].(float64); !ok || v != 1.5 {
		t.Errorf("data[1][qty] = %v, want 1.5", bundle.Data[1]["qty"])
	}
	if v, ok := bundle.Data[0]["Item"].(string); !ok || v != "Coffee" {
		t.Errorf("data[0][Item] = %v, want Coffee", bundle.Data[0]["Item"])
	}
	if v, ok := bundle.Data[0]["date_time"].(string); !ok || v != "2016-10-30T09:58:00" {
		t.Errorf("data[0][date_time] = %v, want ISO-8601", bundle.Data[0]["date_time"])
	}
}

func TestBuildCapsSampleRows(t *testing.T) {
	var rows [][]string
	for i := 0; i < SampleLimit+20; i++ {
		rows = append(rows, []string{strconv.Itoa(i), "Coffee"})
	}
	tbl := dataset.NewTable([]string{"Transaction", "Item"}, rows)
	bundle := Build("id-2", tbl, analytics.NewDocument(), "", 0)

	if len(bundle.Data) != SampleLimit {
		t.Errorf("len(data) = %d, want %d", len(bundle.Data), SampleLimit)
	}
	if bundle.TotalRows != SampleLimit+20 {
		t.Errorf("total_rows = %d, want %d", bundle.TotalRows, SampleLimit+20)
	}

	small := Build("id-2b", tbl, analytics.NewDocument(), "", 5)
	if len(small.Data) != 5 {
		t.Errorf("len(data) = %d, want 5 with explicit limit", len(small.Data))
	}
}

func TestBundleJSONShape(t *testing.T) {
	tbl := dataset.NewTable([]string{"a"}, [][]string{{"x"}})
	b, err := json.Marshal(Build("id-3", tbl, analytics.NewDocument(), "", 0))
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"analysis_id", "data", "columns", "insights", "statistics", "total_rows"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing bundle key %q", key)
		}
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	env := NewError(errors.New("empty file: no header row"))
	if env.Error != "Error processing file: empty file: no header row" {
		t.Errorf("error = %q", env.Error)
	}
	b, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	checks := map[string]string{
		"data":       "[]",
		"columns":    "[]",
		"insights":   `""`,
		"statistics": "{}",
	}
	for key, want := range checks {
		if string(m[key]) != want {
			t.Errorf("%s = %s, want %s", key, m[key], want)
		}
	}
	if _, ok := m["analysis_id"]; ok {
		t.Error("error envelope must not carry analysis_id")
	}
}
