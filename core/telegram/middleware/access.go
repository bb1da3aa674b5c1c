package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminIDs []int64
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allows(userID int64) bool {
	for _, id := range o.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AdminOnlyMiddleware ensures that only allow-listed operators can invoke downstream handlers.
// An empty allow-list rejects everyone.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || !opts.allows(user.ID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
