package course

import (
	"errors"
	"fmt"
)

// ErrUnreachable marks a delivery failure that is permanent for the
// recipient: the user blocked the bot, deleted the account, or the chat is
// gone. The transport adapter wraps its native errors with this sentinel so
// the renderer can abort the current step and flag the user inactive.
var ErrUnreachable = errors.New("recipient unreachable")

// ContentError reports an unusable course document. It is fatal: the process
// must not start without a step list.
type ContentError struct {
	Path string
	Err  error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("course content %s: %v", e.Path, e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }
