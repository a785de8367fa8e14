// Package progress tracks which angs have been processed across runs.
//
// State lives in a single JSON file. The file is the only durable record;
// an unreadable or missing file means "no prior progress" and processing
// restarts from ang 1. Writes go through a temp file and os.Rename so a
// crashed writer can never leave a torn file behind. There is no
// cross-process lock: the expected usage model is one invocation at a time.
package progress

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// StartingAng is the first ang of the id space.
const StartingAng = 1

// State is the persisted progress record.
type State struct {
	// CurrentAng is the next ang to process.
	CurrentAng int `json:"current_ang" yaml:"current_ang"`

	// LastProcessed is the time the most recent ang completed.
	LastProcessed *time.Time `json:"last_processed,omitempty" yaml:"last_processed,omitempty"`

	// TotalProcessed counts angs completed since StartedAt.
	TotalProcessed int `json:"total_processed" yaml:"total_processed"`

	// StartedAt is when this progress record was created.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// LastAngDone is the most recently completed ang, 0 if none.
	LastAngDone int `json:"last_ang_done,omitempty" yaml:"last_ang_done,omitempty"`
}

// Store persists progress state to a JSON file.
type Store struct {
	path      string
	totalAngs int
	logger    *slog.Logger
	now       func() time.Time
}

// NewStore creates a store backed by the file at path. totalAngs bounds the
// id space; PeekNext reports exhaustion once the cursor passes it.
func NewStore(path string, totalAngs int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:      path,
		totalAngs: totalAngs,
		logger:    logger,
		now:       time.Now,
	}
}

// Load reads the persisted state. A missing or unparseable file yields a
// fresh initial state rather than an error: corruption is treated as "no
// prior progress".
func (s *Store) Load() State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("progress file unreadable, starting fresh", "path", s.path, "error", err)
		}
		return s.initialState()
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("progress file corrupted, starting fresh", "path", s.path, "error", err)
		return s.initialState()
	}
	if st.CurrentAng < StartingAng {
		st.CurrentAng = StartingAng
	}
	return st
}

// PeekNext returns the next ang to process. The second return is false once
// every ang has been completed.
func (s *Store) PeekNext() (int, bool) {
	st := s.Load()
	if st.CurrentAng > s.totalAngs {
		return 0, false
	}
	return st.CurrentAng, true
}

// Advance records completion of completedAng: the cursor moves to
// completedAng+1, the counter increments, and timestamps are stamped.
func (s *Store) Advance(completedAng int) error {
	st := s.Load()
	now := s.now()

	st.CurrentAng = completedAng + 1
	st.TotalProcessed++
	st.LastProcessed = &now
	st.LastAngDone = completedAng

	if err := s.save(st); err != nil {
		return fmt.Errorf("failed to advance progress: %w", err)
	}
	s.logger.Info("progress advanced", "completed_ang", completedAng, "next_ang", st.CurrentAng, "total_processed", st.TotalProcessed)
	return nil
}

// Reset deletes the persisted state. It is a no-op if nothing is persisted;
// the next Load returns the initial state.
func (s *Store) Reset() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}

// TotalAngs returns the size of the id space this store covers.
func (s *Store) TotalAngs() int {
	return s.totalAngs
}

func (s *Store) initialState() State {
	return State{
		CurrentAng: StartingAng,
		StartedAt:  s.now(),
	}
}

// save writes the state atomically: temp file in the same directory, then
// rename over the target.
func (s *Store) save(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create progress directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".progress-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp progress file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close progress file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace progress file: %w", err)
	}
	return nil
}
