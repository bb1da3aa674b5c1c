package router

import (
	"time"

	tg "coursebot/core/telegram"
	"coursebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for plain text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoute builds the handler for text routing: slash-less command aliases
// first, then the registry text fallback, then the unknown-text handler.
func TextRoute(reg *tg.Registry, opts TextOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

// MediaRoute wires a handler for a media endpoint (video, photo, document)
// with the shared recover/logging chain and summary logging.
func MediaRoute(endpoint string, name string, h tele.HandlerFunc) tg.Route {
	return tg.Route{
		Endpoint: endpoint,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(WithSummary(name, h))),
	}
}
