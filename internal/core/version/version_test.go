package version

import "testing"

func TestInfo(t *testing.T) {
	bi := Info("speakertag-api")
	if bi.Service != "speakertag-api" || bi.Version == "" || bi.PackVersion != PackVersion {
		t.Fatalf("Info = %+v", bi)
	}
	if Info("").Service != "speakertag" {
		t.Fatalf("empty service should fall back")
	}
}
