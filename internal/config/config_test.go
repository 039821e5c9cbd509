package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ChartFormat != "png" || c.HistBins != 10 || c.RankSeparator != "|" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.ReproduceFemaleNoSchDefect {
		t.Fatalf("defect reproduction must be off by default")
	}
	s := c.Schema
	if len(s.Required) != 14 {
		t.Fatalf("expected 14 required columns, got %d", len(s.Required))
	}
	if len(s.Recodes) != 2 || s.Recodes[1].Target() != "male" {
		t.Fatalf("unexpected recodes: %+v", s.Recodes)
	}
	if code, ok := s.Recodes[0].Lookup("Yes"); !ok || code != 1 {
		t.Fatalf("no_show recode lost case of source values: %+v", s.Recodes[0])
	}
	if s.Roles.Outcome != "no_show" || s.Roles.Gender != "male" {
		t.Fatalf("unexpected roles: %+v", s.Roles)
	}
}

func TestLoadFileOverridesAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NOSHOW_HIST_BINS", "25")

	p := filepath.Join(home, "custom.yaml")
	body := "chart_format: svg\n" +
		"output_dir: out\n" +
		"schema:\n" +
		"  on_unknown: missing\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ChartFormat != "svg" || c.OutputDir != "out" {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.HistBins != 25 {
		t.Fatalf("env override not applied: hist_bins=%d", c.HistBins)
	}
	if c.Schema.OnUnknown != OnUnknownMissing {
		t.Fatalf("nested override not applied: %q", c.Schema.OnUnknown)
	}
	if len(c.Schema.Renames) != 3 {
		t.Fatalf("schema defaults lost on partial override: %+v", c.Schema.Renames)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(home, "bad.yaml")
	if err := os.WriteFile(p, []byte("chart_format: gif\nhist_bins: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(p)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "chart_format") || !strings.Contains(err.Error(), "hist_bins") {
		t.Fatalf("expected both problems reported, got: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c := Default()
	c.ChartFormat = "pdf"
	c.ReproduceFemaleNoSchDefect = true
	p := filepath.Join(home, "saved.yaml")
	if err := Save(c, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ChartFormat != "pdf" || !got.ReproduceFemaleNoSchDefect {
		t.Fatalf("round trip lost values: %+v", got)
	}
	if code, ok := got.Schema.Recodes[1].Lookup("F"); !ok || code != 0 {
		t.Fatalf("round trip lost recode table: %+v", got.Schema.Recodes)
	}
}

func TestSchemaValidate(t *testing.T) {
	s := DefaultSchema()
	if err := s.Validate(); err != nil {
		t.Fatalf("default schema invalid: %v", err)
	}
	s.OnUnknown = "ignore"
	s.Recodes[0].Values = append(s.Recodes[0].Values, Mapping{From: "Yes", To: 1})
	s.Roles.Outcome = ""
	err := s.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, want := range []string{"on_unknown", "duplicate source value", "roles.outcome"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}

func TestDelimiterRune(t *testing.T) {
	cases := map[string]rune{"": ',', ",": ',', ";": ';', "tab": '\t', "pipe": '|'}
	for in, want := range cases {
		c := Default()
		c.Delimiter = in
		got, err := c.DelimiterRune()
		if err != nil || got != want {
			t.Errorf("DelimiterRune(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	c := Default()
	c.Delimiter = "#"
	if _, err := c.DelimiterRune(); err == nil {
		t.Errorf("expected error for unsupported delimiter")
	}
}
