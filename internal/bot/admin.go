package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"coursebot/core/logger"
	tghelpers "coursebot/core/telegram/helpers"
	"coursebot/internal/course"
	"coursebot/internal/storage"
)

// Admin serves the operator commands. Access is enforced by the admin
// middleware on the route, not here.
type Admin struct {
	users     *storage.Store
	transport *Transport
	steps     int
}

// NewAdmin wires the operator command handlers.
func NewAdmin(users *storage.Store, transport *Transport, steps int) *Admin {
	return &Admin{users: users, transport: transport, steps: steps}
}

// Stats replies with aggregate user counts.
func (a *Admin) Stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	st, err := a.users.Aggregate(ctx)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Users: %d\nActive: %d\nCompleted: %d\nSteps in course: %d",
		st.Total, st.Active, st.Completed, a.steps)
	return tghelpers.SendText(c, msg)
}

// Broadcast sends the command payload to every active user, sequentially.
// Failures are counted, not retried; unreachable recipients are deactivated.
func (a *Admin) Broadcast(c tele.Context) error {
	text := strings.TrimSpace(c.Message().Payload)
	if text == "" {
		return tghelpers.SendText(c, "Usage: /broadcast <text>")
	}

	ctx := tghelpers.BuildContext(c)
	ids, err := a.users.ActiveIDs(ctx)
	if err != nil {
		return err
	}

	sent, failed := 0, 0
	for _, id := range ids {
		err := a.transport.SendNotice(ctx, id, text, nil)
		if err == nil {
			sent++
			continue
		}
		failed++
		if errors.Is(err, course.ErrUnreachable) {
			if derr := a.users.SetInactive(ctx, id); derr != nil {
				logger.Error(ctx, "store", "user.deactivate_failed",
					slog.Int64("user_id", id),
					slog.String("err", derr.Error()),
				)
			}
			continue
		}
		logger.Warn(ctx, "tg", "broadcast.send_failed",
			slog.Int64("user_id", id),
			slog.String("err", err.Error()),
		)
	}

	logger.Info(ctx, "tg", "broadcast.done",
		slog.Int("recipients", len(ids)),
		slog.Int("sent", sent),
		slog.Int("failed", failed),
	)
	return tghelpers.SendText(c, fmt.Sprintf("Broadcast done: %d sent, %d failed of %d", sent, failed, len(ids)))
}

// UserInfo replies with the stored row for one identity.
func (a *Admin) UserInfo(c tele.Context) error {
	arg := strings.TrimSpace(c.Message().Payload)
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return tghelpers.SendText(c, "Usage: /user <id>")
	}

	ctx := tghelpers.BuildContext(c)
	u, err := a.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return tghelpers.SendText(c, fmt.Sprintf("User %d not found", id))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User %d: %s", u.ID, u.DisplayName)
	if u.Handle.Valid {
		fmt.Fprintf(&b, " (@%s)", u.Handle.String)
	}
	fmt.Fprintf(&b, "\nActive: %t\nStep: %d/%d", u.IsActive, u.LastStepIndex, a.steps)
	if u.CompletedAt.Valid {
		fmt.Fprintf(&b, "\nCompleted: %s", u.CompletedAt.Time.UTC().Format("2006-01-02 15:04"))
	}
	return tghelpers.SendText(c, b.String())
}

// MediaEcho replies with the Telegram file_id of an uploaded video or
// document, so operators can fill the media_cache config section.
func (a *Admin) MediaEcho(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	fileID := ""
	switch {
	case msg.Video != nil:
		fileID = msg.Video.FileID
	case msg.Document != nil:
		fileID = msg.Document.FileID
	}
	if fileID == "" {
		return nil
	}
	return tghelpers.ReplyText(c, "file_id: "+fileID)
}
