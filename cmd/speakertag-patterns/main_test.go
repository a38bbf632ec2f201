package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"speakertag/internal/core/speakerpack"
)

func embedded(t *testing.T) *speakerpack.Pack {
	t.Helper()
	p, err := load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

func TestValidate(t *testing.T) {
	var b bytes.Buffer
	if err := validate(&b, embedded(t)); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "ok: version ") {
		t.Fatalf("got %q", b.String())
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nrules: [{id: x, kind: plain, weight: 0.9, pattern: \"(\"}]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := load(path); err == nil {
		t.Fatal("expected a compile error")
	}
}

func TestDump_RoundTripsAsYAML(t *testing.T) {
	p := embedded(t)
	var b bytes.Buffer
	if err := dump(&b, p); err != nil {
		t.Fatal(err)
	}
	var back dumpPack
	if err := yaml.Unmarshal(b.Bytes(), &back); err != nil {
		t.Fatalf("dump is not yaml: %v", err)
	}
	if len(back.Rules) != len(p.Rules) || back.Rules[0].Expanded != p.Rules[0].Expanded {
		t.Fatalf("dumped %d rules, want %d", len(back.Rules), len(p.Rules))
	}
}

func TestTry(t *testing.T) {
	p := embedded(t)

	var b bytes.Buffer
	if err := try(&b, p, "За. Бат сайд, би асуулт асууя."); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "intro_za") || !strings.Contains(b.String(), "Бат сайд") {
		t.Fatalf("got %q", b.String())
	}

	b.Reset()
	if err := try(&b, p, "энгийн өгүүлбэр"); err != nil {
		t.Fatal(err)
	}
	if b.String() != "no mentions\n" {
		t.Fatalf("got %q", b.String())
	}
}
