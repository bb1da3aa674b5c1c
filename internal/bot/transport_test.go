package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursebot/internal/course"
)

func TestControlMarkup(t *testing.T) {
	m := controlMarkup(&course.Control{Label: "Next", Index: 3})
	require.NotNil(t, m)
	require.Len(t, m.InlineKeyboard, 1)
	require.Len(t, m.InlineKeyboard[0], 1)

	btn := m.InlineKeyboard[0][0]
	assert.Equal(t, "Next", btn.Text)
	assert.Equal(t, stepCallbackKey, btn.Unique)
	assert.Equal(t, "3", btn.Data)
}

func TestControlMarkupNil(t *testing.T) {
	assert.Nil(t, controlMarkup(nil))
}

func TestUnboundTransportFails(t *testing.T) {
	tr := NewTransport()
	err := tr.SendNotice(context.Background(), 1, "hi", nil)
	require.Error(t, err)
}
