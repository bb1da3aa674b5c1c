package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"coursebot/core/telegram/keyboard"
	"coursebot/core/telegram/sender"
	"coursebot/internal/course"
)

// stepCallbackKey is the unique for the inline confirmation button; its
// payload carries the index of the step it confirms.
const stepCallbackKey = "step"

// Transport adapts telebot sends to the renderer's delivery contract.
// The bot handle is bound at startup, after the runtime constructs it.
type Transport struct {
	bot atomic.Pointer[tele.Bot]
}

// NewTransport returns an unbound transport. Sends before Bind fail.
func NewTransport() *Transport {
	return &Transport{}
}

// Bind attaches the live bot. Called from the runtime's OnStart hook.
func (t *Transport) Bind(b *tele.Bot) {
	t.bot.Store(b)
}

// SendText delivers one HTML-formatted chunk.
func (t *Transport) SendText(ctx context.Context, chatID int64, html string, control *course.Control) error {
	return t.send(ctx, chatID, html, &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: controlMarkup(control),
	})
}

// SendVideoID delivers a video by its cached Telegram file_id.
func (t *Transport) SendVideoID(ctx context.Context, chatID int64, fileID string, control *course.Control) error {
	video := &tele.Video{File: tele.File{FileID: fileID}}
	return t.send(ctx, chatID, video, &tele.SendOptions{ReplyMarkup: controlMarkup(control)})
}

// SendVideoFile uploads a video from local disk.
func (t *Transport) SendVideoFile(ctx context.Context, chatID int64, path string, control *course.Control) error {
	video := &tele.Video{File: tele.FromDisk(path)}
	return t.send(ctx, chatID, video, &tele.SendOptions{ReplyMarkup: controlMarkup(control)})
}

// SendNotice delivers a plain service message, no parse mode.
func (t *Transport) SendNotice(ctx context.Context, chatID int64, text string, control *course.Control) error {
	return t.send(ctx, chatID, text, &tele.SendOptions{ReplyMarkup: controlMarkup(control)})
}

func (t *Transport) send(ctx context.Context, chatID int64, what any, opts *tele.SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := t.bot.Load()
	if b == nil {
		return fmt.Errorf("transport not bound")
	}
	_, err := b.Send(tele.ChatID(chatID), what, opts)
	if err == nil {
		return nil
	}
	if sender.Unreachable(err) {
		return fmt.Errorf("%w: %s", course.ErrUnreachable, sender.SanitizeError(err))
	}
	return fmt.Errorf("%s: %s", sender.Classify(err), sender.SanitizeError(err))
}

func controlMarkup(c *course.Control) *tele.ReplyMarkup {
	if c == nil {
		return nil
	}
	return keyboard.SingleButton(c.Label, stepCallbackKey, strconv.Itoa(c.Index))
}
