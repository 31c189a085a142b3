package player

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreDefaultsWhenFileMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"))

	if v := s.Volume(0.7); v != 0.7 {
		t.Fatalf("expected default volume, got %v", v)
	}
	if s.Muted(false) {
		t.Fatal("expected default mute flag")
	}
	if _, ok := s.Progress("ep1"); ok {
		t.Fatal("expected no saved progress")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := NewStore(path)
	s.SetVolume(0.4)
	s.SetMuted(true)
	s.SaveProgress("ep1", 123.5)
	s.SaveProgress("ep2", 7)
	s.DeleteProgress("ep2")

	reread := NewStore(path)
	if v := reread.Volume(1); v != 0.4 {
		t.Fatalf("volume not persisted, got %v", v)
	}
	if !reread.Muted(false) {
		t.Fatal("mute not persisted")
	}
	if pos, ok := reread.Progress("ep1"); !ok || pos != 123.5 {
		t.Fatalf("progress not persisted, got %v (ok=%v)", pos, ok)
	}
	if _, ok := reread.Progress("ep2"); ok {
		t.Fatal("deleted progress resurfaced")
	}
}

func TestStoreCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if v := s.Volume(1); v != 1 {
		t.Fatalf("corrupt file should yield defaults, got volume %v", v)
	}

	// The store stays writable and the next persist repairs the file.
	s.SaveProgress("ep1", 10)
	if pos, ok := NewStore(path).Progress("ep1"); !ok || pos != 10 {
		t.Fatalf("expected repaired file with progress, got %v (ok=%v)", pos, ok)
	}
}

func TestStoreInMemoryMode(t *testing.T) {
	s := NewStore("")
	s.SetVolume(0.2)
	s.SaveProgress("ep1", 50)

	if v := s.Volume(1); v != 0.2 {
		t.Fatalf("in-memory store lost a write, got %v", v)
	}
	if pos, ok := s.Progress("ep1"); !ok || pos != 50 {
		t.Fatalf("in-memory store lost progress, got %v (ok=%v)", pos, ok)
	}
}

func TestStoreIgnoresEmptyItemID(t *testing.T) {
	s := NewStore("")
	s.SaveProgress("", 50)
	if _, ok := s.Progress(""); ok {
		t.Fatal("empty item ids must not be stored")
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{7, "0:07"},
		{65, "1:05"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{4000, "1:06:40"},
		{-5, "0:00"},
	}
	for _, tc := range cases {
		if got := formatClock(tc.seconds); got != tc.want {
			t.Errorf("formatClock(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
