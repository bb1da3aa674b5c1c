package course

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"coursebot/core/logger"
)

// ProgressStore is the durable side of the state machine: one row per chat,
// last-write-wins, completed timestamp write-once.
type ProgressStore interface {
	SetProgress(ctx context.Context, id int64, index int, completed bool) error
	Progress(ctx context.Context, id int64) (int, error)
	SetInactive(ctx context.Context, id int64) error
}

// Engine advances users through the shared step list. The cursor for a chat
// is an integer in [0, len(steps)]; len(steps) is the terminal completed
// state.
//
// There is no per-chat mutual exclusion here: two signals from the same chat
// processed concurrently can both read the same cursor and both render, so a
// rapid double-tap may re-deliver a step. Cursor writes are last-write-wins
// and never move backwards except through an explicit Start/Reset.
type Engine struct {
	steps   []Step
	render  *Renderer
	store   ProgressStore
	cursors *Cursors
}

// NewEngine wires the state machine over an immutable step list.
func NewEngine(steps []Step, render *Renderer, store ProgressStore) *Engine {
	return &Engine{
		steps:   steps,
		render:  render,
		store:   store,
		cursors: NewCursors(),
	}
}

// Len returns the number of steps; it is also the terminal cursor value.
func (e *Engine) Len() int { return len(e.steps) }

// Start begins (or restarts) the course from the first step. Reset is the
// same transition; the distinction only matters to the caller's wording.
func (e *Engine) Start(ctx context.Context, chatID int64) error {
	return e.advance(ctx, chatID, 0)
}

// Confirm handles free text while the chat is gated on a step. The input
// must match the step's button label exactly after trimming; anything else
// is silently ignored, as is text arriving when no gate is pending.
func (e *Engine) Confirm(ctx context.Context, chatID int64, text string) error {
	idx, err := e.cursor(ctx, chatID)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(e.steps) {
		return nil
	}
	step := e.steps[idx]
	if !step.Gated() || strings.TrimSpace(text) != step.Button {
		logger.Debug(ctx, "course", "confirm.ignored",
			slog.Int64("chat_id", chatID),
			slog.Int("step_index", idx),
		)
		return nil
	}
	return e.advance(ctx, chatID, idx+1)
}

// Resume handles an inline-button tap whose payload names the step index to
// advance past. A payload that does not round-trip to an integer is silently
// dropped. The index is deliberately not checked against the stored cursor,
// so a stale callback re-runs the walk from its own position.
func (e *Engine) Resume(ctx context.Context, chatID int64, payload string) error {
	idx, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil {
		logger.Debug(ctx, "course", "resume.ignored",
			slog.Int64("chat_id", chatID),
			slog.String("payload", logger.SanitizeLimit(payload, 64)),
		)
		return nil
	}
	from := idx + 1
	if from < 0 {
		// Forged or corrupted payload; restart from the top instead of
		// indexing before the first step.
		from = 0
	}
	return e.advance(ctx, chatID, from)
}

// advance walks forward from `from`, rendering every visited step. It stops
// on the first gated step (persisting its index as the pending gate) or runs
// off the end (persisting completion and emitting the completion notice).
// Indexes below `from` are never revisited.
func (e *Engine) advance(ctx context.Context, chatID int64, from int) error {
	for idx := from; idx < len(e.steps); idx++ {
		step := e.steps[idx]
		if err := e.render.Step(ctx, chatID, step, idx); err != nil {
			// Unreachable recipient; the renderer already flagged it
			// inactive. Drop the cached cursor so a later restart
			// re-reads the durable copy.
			e.cursors.Forget(chatID)
			return err
		}
		if step.Gated() {
			return e.persist(ctx, chatID, idx, false)
		}
	}
	if err := e.persist(ctx, chatID, len(e.steps), true); err != nil {
		return err
	}
	return e.render.Completion(ctx, chatID)
}

func (e *Engine) persist(ctx context.Context, chatID int64, idx int, completed bool) error {
	e.cursors.Set(chatID, idx)
	if err := e.store.SetProgress(ctx, chatID, idx, completed); err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}
	logger.Debug(ctx, "course", "progress.saved",
		slog.Int64("chat_id", chatID),
		slog.Int("step_index", idx),
		slog.Bool("completed", completed),
	)
	return nil
}

// cursor reads the pending gate index from the cache, falling back to the
// progress store after a restart.
func (e *Engine) cursor(ctx context.Context, chatID int64) (int, error) {
	if idx, ok := e.cursors.Get(chatID); ok {
		return idx, nil
	}
	idx, err := e.store.Progress(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("load progress: %w", err)
	}
	e.cursors.Set(chatID, idx)
	return idx, nil
}
