package sender

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind string
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"dns", &net.DNSError{Err: "no such host"}, "dns"},
		{"dns timeout", &net.DNSError{Err: "lookup", IsTimeout: true}, "timeout"},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, "dial"},
		{"api 500", &tele.Error{Code: 502, Description: "bad gateway"}, "http_5xx"},
		{"api 400", &tele.Error{Code: 400, Description: "chat not found"}, "http_4xx"},
		{"flood", tele.FloodError{RetryAfter: 5}, "http_4xx"},
		{"trailing code", fmt.Errorf("telegram: forbidden (403)"), "http_4xx"},
		{"plain", errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, Classify(tc.err))
		})
	}
}

func TestSanitizeErrorRedactsToken(t *testing.T) {
	err := fmt.Errorf("Post https://api.telegram.org/bot123456:AAH-abc_DEF/sendMessage: eof")
	got := SanitizeError(err)
	assert.NotContains(t, got, "123456:AAH")
	assert.Contains(t, got, "bot<redacted>")
}

func TestUnreachable(t *testing.T) {
	assert.True(t, Unreachable(tele.ErrBlockedByUser))
	assert.True(t, Unreachable(tele.ErrUserIsDeactivated))
	assert.True(t, Unreachable(tele.ErrChatNotFound))
	assert.True(t, Unreachable(&tele.Error{Code: 403, Description: "forbidden"}))
	assert.False(t, Unreachable(&tele.Error{Code: 429, Description: "too many requests"}))
	assert.False(t, Unreachable(errors.New("temporary glitch")))
	assert.False(t, Unreachable(nil))
}
