package settings

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom on missing file: %v", err)
	}
	if s.DefaultDevice != "" || s.DefaultTag != 0 {
		t.Errorf("missing file should yield zero settings, got %+v", s)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.json")

	in := &Settings{
		DefaultDevice: "leaf1:6379",
		SSHUser:       "admin",
		DefaultTag:    100,
	}
	if err := in.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	out, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if *out != *in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
