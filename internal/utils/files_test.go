package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cartloom/cartloom/internal/utils"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := utils.SafeWriteFile(path, []byte("first")); err != nil {
		t.Fatalf("SafeWriteFile returned error: %v", err)
	}
	if err := utils.SafeWriteFile(path, []byte("second")); err != nil {
		t.Fatalf("SafeWriteFile overwrite returned error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want second", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("PrettyJSON returned error: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"a\": 1") {
		t.Errorf("unexpected output: %s", b)
	}

	if _, err := utils.PrettyJSON(func() {}); err == nil {
		t.Error("expected error for unmarshalable value")
	}
}
