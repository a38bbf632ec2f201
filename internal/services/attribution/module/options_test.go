package module

import (
	"testing"

	"speakertag/internal/platform/config"
)

func TestFromConfig_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("CORE_ATTRIBUTION_MODE", "line")
	t.Setenv("CORE_ATTRIBUTION_CONTEXT_WINDOW", "15")
	t.Setenv("CORE_ATTRIBUTION_AUTO_TAG_THRESHOLD", "0.8")

	o := FromConfig(config.New())
	if o.Mode != "line" || o.ContextWindow == nil || *o.ContextWindow != 15 || o.AutoTagThreshold != 0.8 || o.Workers != 2 {
		t.Fatalf("FromConfig = %+v", o)
	}

	m := o.merge(Options{Mode: "segment", Workers: 6})
	if m.Mode != "segment" || m.Workers != 6 || *m.ContextWindow != 15 {
		t.Fatalf("merge = %+v", m)
	}

	off := 0
	if m := o.merge(Options{ContextWindow: &off}); *m.ContextWindow != 0 {
		t.Fatalf("explicit zero window lost: %d", *m.ContextWindow)
	}
}

func TestFromConfig_ZeroWindowDisablesCarry(t *testing.T) {
	t.Setenv("CORE_ATTRIBUTION_CONTEXT_WINDOW", "0")
	o := FromConfig(config.New())
	if o.ContextWindow == nil || *o.ContextWindow != 0 {
		t.Fatalf("CONTEXT_WINDOW=0 read as %v", o.ContextWindow)
	}

	t.Setenv("CORE_ATTRIBUTION_CONTEXT_WINDOW", "")
	if o := FromConfig(config.New()); o.ContextWindow != nil {
		t.Fatalf("unset window = %d, want nil", *o.ContextWindow)
	}
}

func TestLoadPack_Embedded(t *testing.T) {
	p, err := LoadPack("")
	if err != nil || p == nil {
		t.Fatalf("LoadPack: %v", err)
	}
	if _, err := LoadPack("/nonexistent/patterns.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
