// Package pipeline drives one unit of work end to end: fetch the ang,
// generate commentary, render both documents, persist them, then advance
// the progress cursor. Steps are strictly sequential and the cursor only
// moves after both artifacts are on disk, so a failure at any stage means
// the same ang is retried on the next invocation rather than skipped.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sachkhoj/vichar/internal/banidb"
	"github.com/sachkhoj/vichar/internal/ollama"
	"github.com/sachkhoj/vichar/internal/progress"
	"github.com/sachkhoj/vichar/internal/prompts"
	"github.com/sachkhoj/vichar/internal/render"
)

// Stage names the step a unit of work was in when it failed.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageGenerating Stage = "generating"
	StageRendering  Stage = "rendering"
	StagePersisting Stage = "persisting"
	StageAdvancing  Stage = "advancing"
)

// ErrExhausted is returned when every ang has already been processed.
var ErrExhausted = errors.New("pipeline: all angs processed")

// StageError wraps a failure with the stage and ang it occurred at.
type StageError struct {
	Stage Stage
	Ang   int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ang %d failed while %s: %v", e.Ang, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Source fetches normalized ang content.
type Source interface {
	GetPage(ctx context.Context, ang int) (*banidb.Page, error)
}

// Generator produces commentary for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*ollama.Result, error)
}

// Config holds orchestration settings.
type Config struct {
	OutputDir string
	DebugDir  string
	SaveHTML  bool
	SaveText  bool
	TotalAngs int
}

// Pipeline orchestrates units of work over injected collaborators.
type Pipeline struct {
	source Source
	gen    Generator
	store  *progress.Store
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a pipeline. All collaborators are required; cfg zero values
// get sensible defaults except the directories, which the caller owns.
func New(source Source, gen Generator, store *progress.Store, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TotalAngs == 0 {
		cfg.TotalAngs = banidb.DefaultTotalAngs
	}
	if !cfg.SaveHTML && !cfg.SaveText {
		cfg.SaveHTML = true
		cfg.SaveText = true
	}
	return &Pipeline{
		source: source,
		gen:    gen,
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// ProcessNext processes the ang the progress cursor points at, advancing
// the cursor on success. Returns ErrExhausted when nothing is left.
func (p *Pipeline) ProcessNext(ctx context.Context) error {
	ang, ok := p.store.PeekNext()
	if !ok {
		return ErrExhausted
	}
	return p.process(ctx, ang, true)
}

// ProcessAng processes one specific ang without touching the cursor, so a
// targeted rerun never disturbs sequential progress.
func (p *Pipeline) ProcessAng(ctx context.Context, ang int) error {
	if ang < progress.StartingAng || ang > p.cfg.TotalAngs {
		return fmt.Errorf("invalid ang %d: must be %d-%d", ang, progress.StartingAng, p.cfg.TotalAngs)
	}
	return p.process(ctx, ang, false)
}

// ProcessBatch processes up to n angs sequentially, advancing after each
// success and stopping at the first failure. Returns how many completed
// and the error that stopped the batch: ErrExhausted when the id space ran
// out first, or the failing unit's error. Already-advanced angs are not
// rolled back.
func (p *Pipeline) ProcessBatch(ctx context.Context, n int) (int, error) {
	completed := 0
	for i := 0; i < n; i++ {
		ang, ok := p.store.PeekNext()
		if !ok {
			p.logger.Info("all angs processed", "total", p.cfg.TotalAngs)
			return completed, ErrExhausted
		}

		p.logger.Info("batch progress", "unit", i+1, "of", n, "ang", ang)
		if err := p.process(ctx, ang, true); err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

// process runs the full state machine for one ang.
func (p *Pipeline) process(ctx context.Context, ang int, advance bool) error {
	logger := p.logger.With("ang", ang)
	logger.Info("processing ang", "of", p.cfg.TotalAngs)

	// Fetching
	page, err := p.source.GetPage(ctx, ang)
	if err != nil {
		return p.fail(logger, StageFetching, ang, err)
	}

	// Generating
	prompt := prompts.Build(page)
	result, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		var emptyErr *ollama.EmptyError
		if errors.As(err, &emptyErr) {
			p.saveDebugPayload(logger, ang, emptyErr)
		}
		return p.fail(logger, StageGenerating, ang, err)
	}

	// Rendering: pure functions, no failure path.
	doc := render.Document{
		Page:       page,
		Commentary: result.Output(),
		Date:       p.now().Format("January 2, 2006"),
		TotalAngs:  p.cfg.TotalAngs,
	}
	htmlOut := render.HTML(doc)
	textOut := render.Text(doc)

	// Persisting: both artifacts must exist on disk before the cursor moves.
	if err := p.persist(ang, htmlOut, textOut); err != nil {
		return p.fail(logger, StagePersisting, ang, err)
	}

	// Advancing
	if advance {
		if err := p.store.Advance(ang); err != nil {
			return p.fail(logger, StageAdvancing, ang, err)
		}
	}

	logger.Info("ang complete",
		"raag", page.Raag,
		"writer", page.Writer,
		"lines", len(page.Lines),
		"commentary_chars", len(doc.Commentary),
		"truncated", result.Truncated,
	)
	return nil
}

func (p *Pipeline) fail(logger *slog.Logger, stage Stage, ang int, err error) error {
	logger.Error("ang failed", "stage", stage, "error", err)
	return &StageError{Stage: stage, Ang: ang, Err: err}
}

// persist writes the rendered documents under zero-padded names so a
// directory listing sorts in ang order. Overwrites are deliberate: retries
// re-render and re-write the same filenames.
func (p *Pipeline) persist(ang int, htmlOut, textOut string) error {
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	base := fmt.Sprintf("ang_%04d", ang)
	if p.cfg.SaveHTML {
		path := filepath.Join(p.cfg.OutputDir, base+".html")
		if err := os.WriteFile(path, []byte(htmlOut), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		p.logger.Info("saved html", "path", path)
	}
	if p.cfg.SaveText {
		path := filepath.Join(p.cfg.OutputDir, base+".txt")
		if err := os.WriteFile(path, []byte(textOut), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		p.logger.Info("saved text", "path", path)
	}
	return nil
}

// saveDebugPayload preserves the raw response of an empty generation for
// offline inspection. Best effort: a debug write failure doesn't mask the
// generation failure itself.
func (p *Pipeline) saveDebugPayload(logger *slog.Logger, ang int, emptyErr *ollama.EmptyError) {
	if p.cfg.DebugDir == "" {
		return
	}
	if err := os.MkdirAll(p.cfg.DebugDir, 0o755); err != nil {
		logger.Warn("failed to create debug directory", "error", err)
		return
	}

	path := filepath.Join(p.cfg.DebugDir, fmt.Sprintf("debug_%04d_%s.json", ang, emptyErr.RequestID))
	if err := os.WriteFile(path, emptyErr.Raw, 0o644); err != nil {
		logger.Warn("failed to write debug payload", "path", path, "error", err)
		return
	}
	logger.Info("saved raw generation payload for inspection", "path", path)
}
