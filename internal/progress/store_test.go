package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T, totalAngs int) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "progress.json"), totalAngs, nil)
}

func TestLoad_FreshState(t *testing.T) {
	s := newTestStore(t, 1430)

	st := s.Load()
	if st.CurrentAng != StartingAng {
		t.Errorf("expected current_ang %d, got %d", StartingAng, st.CurrentAng)
	}
	if st.TotalProcessed != 0 {
		t.Errorf("expected total_processed 0, got %d", st.TotalProcessed)
	}
	if st.LastProcessed != nil {
		t.Error("expected no last_processed on fresh state")
	}
	if st.StartedAt.IsZero() {
		t.Error("expected started_at to be stamped")
	}
}

func TestLoad_CorruptedFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, 1430, nil)
	st := s.Load()
	if st.CurrentAng != StartingAng {
		t.Errorf("corrupted file should yield fresh state, got current_ang %d", st.CurrentAng)
	}
}

func TestAdvance(t *testing.T) {
	s := newTestStore(t, 1430)

	if err := s.Advance(1); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	st := s.Load()
	if st.CurrentAng != 2 {
		t.Errorf("expected current_ang 2, got %d", st.CurrentAng)
	}
	if st.TotalProcessed != 1 {
		t.Errorf("expected total_processed 1, got %d", st.TotalProcessed)
	}
	if st.LastAngDone != 1 {
		t.Errorf("expected last_ang_done 1, got %d", st.LastAngDone)
	}
	if st.LastProcessed == nil {
		t.Error("expected last_processed to be stamped")
	}
}

func TestAdvance_Monotonic(t *testing.T) {
	s := newTestStore(t, 1430)

	prev := 0
	for _, ang := range []int{1, 2, 3, 4, 5} {
		if err := s.Advance(ang); err != nil {
			t.Fatalf("Advance(%d) failed: %v", ang, err)
		}
		st := s.Load()
		if st.CurrentAng <= prev {
			t.Errorf("current_ang not strictly increasing: %d after %d", st.CurrentAng, prev)
		}
		if st.CurrentAng != st.LastAngDone+1 {
			t.Errorf("current_ang %d != last_ang_done+1 (%d)", st.CurrentAng, st.LastAngDone+1)
		}
		prev = st.CurrentAng
	}

	st := s.Load()
	if st.TotalProcessed != 5 {
		t.Errorf("expected total_processed 5, got %d", st.TotalProcessed)
	}
}

func TestPeekNext(t *testing.T) {
	s := newTestStore(t, 3)

	ang, ok := s.PeekNext()
	if !ok || ang != 1 {
		t.Errorf("expected (1, true), got (%d, %v)", ang, ok)
	}

	for _, a := range []int{1, 2, 3} {
		if err := s.Advance(a); err != nil {
			t.Fatal(err)
		}
	}

	if ang, ok := s.PeekNext(); ok {
		t.Errorf("expected exhausted after final ang, got (%d, %v)", ang, ok)
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t, 1430)

	if err := s.Advance(7); err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	st := s.Load()
	if st.CurrentAng != StartingAng || st.TotalProcessed != 0 {
		t.Errorf("expected fresh state after reset, got current_ang=%d total=%d", st.CurrentAng, st.TotalProcessed)
	}

	// Idempotent: resetting with nothing persisted is not an error.
	if err := s.Reset(); err != nil {
		t.Fatalf("second Reset failed: %v", err)
	}
}

func TestSave_FileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	s := NewStore(path, 1430, nil)

	if err := s.Advance(12); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("progress file not written: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("progress file not valid JSON: %v", err)
	}
	for _, key := range []string{"current_ang", "total_processed", "started_at", "last_processed", "last_ang_done"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in progress file", key)
		}
	}
	if got := raw["current_ang"].(float64); got != 13 {
		t.Errorf("expected current_ang 13, got %v", got)
	}
}
