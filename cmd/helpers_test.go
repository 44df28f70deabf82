package cmd

import (
	"testing"

	cfgpkg "github.com/cartloom/cartloom/internal/config"
)

func TestMask(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "******"},
		{"sk-abcdef123", "sk-****123"},
	}
	for _, tc := range cases {
		if got := mask(tc.in); got != tc.want {
			t.Errorf("mask(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParsePositiveInt(t *testing.T) {
	if v, err := parsePositiveInt("k", "12"); err != nil || v != 12 {
		t.Errorf("parsePositiveInt(12) = %d, %v", v, err)
	}
	for _, bad := range []string{"0", "-3", "x"} {
		if _, err := parsePositiveInt("k", bad); err == nil {
			t.Errorf("parsePositiveInt(%q) should fail", bad)
		}
	}
}

func TestResolveModel(t *testing.T) {
	oldModel, oldCfg := anaModel, cfg
	defer func() { anaModel, cfg = oldModel, oldCfg }()

	anaModel, cfg = "", nil
	if got := resolveModel(); got != "openai/gpt-4o-mini" {
		t.Errorf("default model = %q", got)
	}

	cfg = &cfgpkg.Global{Model: "from-config"}
	if got := resolveModel(); got != "from-config" {
		t.Errorf("config model = %q", got)
	}

	anaModel = "from-flag"
	if got := resolveModel(); got != "from-flag" {
		t.Errorf("flag model = %q", got)
	}
}
