package bot

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"coursebot/core/logger"
	"coursebot/core/telegram/callbacks"
	tghelpers "coursebot/core/telegram/helpers"
	"coursebot/internal/course"
	"coursebot/internal/storage"
)

// stepPayload extracts the step index payload from a control tap.
func stepPayload(c tele.Context) string {
	return callbacks.CallbackPayload(c)
}

const helpText = "Send <b>/start</b> to begin the course or <b>/reset</b> to start over.\n" +
	"Advance through steps with the buttons under each message."

// Handlers binds incoming updates to the sequencing engine.
type Handlers struct {
	engine *course.Engine
	users  *storage.Store
}

// NewHandlers wires the update handlers.
func NewHandlers(engine *course.Engine, users *storage.Store) *Handlers {
	return &Handlers{engine: engine, users: users}
}

func profileFrom(c tele.Context) storage.Profile {
	p := storage.Profile{}
	if user := c.Sender(); user != nil {
		p.ID = user.ID
		p.DisplayName = user.FirstName
		if user.LastName != "" {
			p.DisplayName += " " + user.LastName
		}
		p.Handle = user.Username
		p.Locale = user.LanguageCode
	}
	return p
}

// touch refreshes the profile row. Failure is logged, not fatal: progress
// writes later in the turn will surface a broken database anyway.
func (h *Handlers) touch(c tele.Context) {
	ctx := tghelpers.BuildContext(c)
	p := profileFrom(c)
	if p.ID == 0 {
		return
	}
	if err := h.users.Upsert(ctx, p); err != nil {
		logger.Warn(ctx, "store", "user.upsert_failed",
			slog.Int64("user_id", p.ID),
			slog.String("err", err.Error()),
		)
	}
}

// Start begins the course from the first step.
func (h *Handlers) Start(c tele.Context) error {
	h.touch(c)
	ctx := tghelpers.BuildContext(c)
	return h.engine.Start(ctx, c.Chat().ID)
}

// Reset is the same transition as Start under a different command name.
func (h *Handlers) Reset(c tele.Context) error {
	return h.Start(c)
}

// Help replies with usage instructions.
func (h *Handlers) Help(c tele.Context) error {
	return tghelpers.SendHTML(c, helpText)
}

// Text routes free text to the gate confirmation path.
func (h *Handlers) Text(c tele.Context) error {
	h.touch(c)
	ctx := tghelpers.BuildContext(c)
	return h.engine.Confirm(ctx, c.Chat().ID, c.Text())
}

// StepCallback routes an inline control tap; payload names the step index.
func (h *Handlers) StepCallback(payload func(tele.Context) string) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.touch(c)
		ctx := tghelpers.BuildContext(c)
		return h.engine.Resume(ctx, c.Chat().ID, payload(c))
	}
}
