package course

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"coursebot/core/logger"
	"coursebot/core/telegram/format"
)

const (
	emptyStepNotice  = "(Empty step)"
	completionNotice = "You have reached the end of the course. Well done!"
)

// Control is the inline confirmation button attached to a gated step. Index
// is the position of the step the control confirms, so the transport can
// route the eventual tap back to "advance past Index".
type Control struct {
	Label string
	Index int
}

// Transport is the outbound capability the renderer consumes. Implementations
// must wrap permanent recipient failures with ErrUnreachable; any other error
// is treated as a per-operation delivery failure.
type Transport interface {
	SendText(ctx context.Context, chatID int64, html string, control *Control) error
	SendVideoID(ctx context.Context, chatID int64, fileID string, control *Control) error
	SendVideoFile(ctx context.Context, chatID int64, path string, control *Control) error
	SendNotice(ctx context.Context, chatID int64, text string, control *Control) error
}

// Deactivator flags a recipient inactive after a permanent delivery failure.
type Deactivator interface {
	SetInactive(ctx context.Context, id int64) error
}

// Renderer turns one step into outbound sends. The attachment rules place the
// confirmation control on the last operation of the step: the last text part
// when the step has no media, otherwise the last media operation whichever
// variant (cached, file, or missing-file notice) that turns out to be.
type Renderer struct {
	transport Transport
	store     Deactivator
	cache     map[string]string // video ordinal -> transport cached reference
	maxLen    int
}

// NewRenderer builds a renderer. cache may be nil; maxLen <= 0 selects
// DefaultMaxLen.
func NewRenderer(t Transport, store Deactivator, cache map[string]string, maxLen int) *Renderer {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Renderer{transport: t, store: store, cache: cache, maxLen: maxLen}
}

// Step delivers one step to chatID. A returned error always satisfies
// errors.Is(err, ErrUnreachable) and means remaining operations were
// abandoned and the recipient was flagged inactive. Ordinary delivery
// failures degrade to a notice naming the failed item and do not abort.
func (r *Renderer) Step(ctx context.Context, chatID int64, step Step, index int) error {
	var control *Control
	if step.Gated() {
		control = &Control{Label: step.Button, Index: index}
	}
	hasVideos := len(step.Videos) > 0

	if step.Text != "" {
		parts := SplitText(boldFirstLine(step.Text), r.maxLen)
		for i, part := range parts {
			var c *Control
			if control != nil && !hasVideos && i == len(parts)-1 {
				c = control
			}
			err := r.transport.SendText(ctx, chatID, part, c)
			if err := r.degrade(ctx, chatID, "message part", c, err); err != nil {
				return err
			}
		}
	}

	for i, video := range step.Videos {
		var c *Control
		if control != nil && i == len(step.Videos)-1 {
			c = control
		}
		name := filepath.Base(video.Path)

		if fileID := r.cache[video.Ordinal]; fileID != "" {
			err := r.transport.SendVideoID(ctx, chatID, fileID, c)
			if err := r.degrade(ctx, chatID, "video "+name, c, err); err != nil {
				return err
			}
			continue
		}

		if _, err := os.Stat(video.Path); err != nil {
			if err := r.notice(ctx, chatID, "Video not found: "+name, c); err != nil {
				return err
			}
			continue
		}

		err := r.transport.SendVideoFile(ctx, chatID, video.Path, c)
		if err := r.degrade(ctx, chatID, "video "+name, c, err); err != nil {
			return err
		}
	}

	if step.Text == "" && !hasVideos {
		if err := r.notice(ctx, chatID, emptyStepNotice, control); err != nil {
			return err
		}
	}
	return nil
}

// Completion emits the end-of-course notice.
func (r *Renderer) Completion(ctx context.Context, chatID int64) error {
	return r.notice(ctx, chatID, completionNotice, nil)
}

// degrade implements the failure policy for a single send operation. The
// fallback notice carries the control so a gated step stays confirmable even
// when its last operation failed.
func (r *Renderer) degrade(ctx context.Context, chatID int64, item string, c *Control, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnreachable) {
		r.deactivate(ctx, chatID, err)
		return err
	}
	logger.Warn(ctx, "course", "render.send_failed",
		slog.Int64("chat_id", chatID),
		slog.String("item", item),
		slog.String("err", err.Error()),
	)
	return r.notice(ctx, chatID, "Failed to send "+item, c)
}

// notice sends a plain service message. Its own failure is best-effort:
// logged and swallowed, unless the recipient is unreachable.
func (r *Renderer) notice(ctx context.Context, chatID int64, text string, c *Control) error {
	err := r.transport.SendNotice(ctx, chatID, text, c)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnreachable) {
		r.deactivate(ctx, chatID, err)
		return err
	}
	logger.Warn(ctx, "course", "render.notice_failed",
		slog.Int64("chat_id", chatID),
		slog.String("err", err.Error()),
	)
	return nil
}

func (r *Renderer) deactivate(ctx context.Context, chatID int64, cause error) {
	logger.Info(ctx, "course", "user.unreachable",
		slog.Int64("chat_id", chatID),
		slog.String("err", cause.Error()),
	)
	if r.store == nil {
		return
	}
	if err := r.store.SetInactive(ctx, chatID); err != nil {
		logger.Error(ctx, "course", "user.deactivate_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
}

// boldFirstLine escapes the body for HTML delivery and wraps the first
// non-blank line in bold tags.
func boldFirstLine(text string) string {
	lines := strings.Split(text, "\n")
	bolded := false
	for i, line := range lines {
		lines[i] = format.EscapeHTML(line)
		if !bolded && strings.TrimSpace(line) != "" {
			lines[i] = format.Bold(lines[i])
			bolded = true
		}
	}
	return strings.Join(lines, "\n")
}
