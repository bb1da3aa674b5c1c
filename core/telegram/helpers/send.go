package helpers

import (
	"log/slog"

	"coursebot/core/logger"
	"coursebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

func logSendFailure(c tele.Context, action string, err error) {
	if err == nil {
		return
	}
	ctx := BuildContext(c)
	logger.Warn(ctx, "tg", "send.fail",
		slog.String("item", action),
		slog.String("err", sender.SanitizeError(err)),
		slog.String("error_kind", sender.Classify(err)),
	)
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var err error
	if len(opts) > 0 && opts[0] != nil {
		err = c.Send(text, opts[0])
	} else {
		err = c.Send(text)
	}
	logSendFailure(c, "send.text", err)
	return err
}

// SendHTML sends a message with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return SendText(c, text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm})
}

// ReplyText replies to the incoming message with raw text.
func ReplyText(c tele.Context, text string) error {
	err := c.Reply(text)
	logSendFailure(c, "reply.text", err)
	return err
}
