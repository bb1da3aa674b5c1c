package course

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
Welcome
This is the intro.

Button [Next]
________________

Second step

[video 1] watch this
and then [video 2]
________________


________________
Last step, no gate
`

func TestParse(t *testing.T) {
	steps := Parse(sampleDoc, "videos")
	require.Len(t, steps, 3, "whitespace-only chunks must be discarded")

	t.Run("button extraction", func(t *testing.T) {
		assert.Equal(t, "Next", steps[0].Button)
		assert.True(t, steps[0].Gated())
		assert.Empty(t, steps[1].Button)
		assert.Empty(t, steps[2].Button)
	})

	t.Run("button line stripped from body", func(t *testing.T) {
		assert.NotContains(t, steps[0].Text, "Button [")
		assert.Equal(t, "Welcome\nThis is the intro.", steps[0].Text)
	})

	t.Run("video markers in order, removed from body", func(t *testing.T) {
		require.Len(t, steps[1].Videos, 2)
		assert.Equal(t, "1", steps[1].Videos[0].Ordinal)
		assert.Equal(t, "2", steps[1].Videos[1].Ordinal)
		assert.Equal(t, filepath.Join("videos", "video 1.mp4"), steps[1].Videos[0].Path)
		assert.NotContains(t, steps[1].Text, "[video")
		assert.Equal(t, "Second step\n\n watch this\nand then ", steps[1].Text)
	})
}

func TestParseFirstButtonWins(t *testing.T) {
	doc := "Step\nButton [One]\nButton [Two]\n"
	steps := Parse(doc, "videos")
	require.Len(t, steps, 1)
	// A second button line in the same chunk is silently dropped.
	assert.Equal(t, "One", steps[0].Button)
	assert.Equal(t, "Step", steps[0].Text)
}

func TestParseDuplicateVideosPreserved(t *testing.T) {
	steps := Parse("[video 3] twice [video 3]", "videos")
	require.Len(t, steps, 1)
	require.Len(t, steps[0].Videos, 2)
	assert.Equal(t, steps[0].Videos[0], steps[0].Videos[1])
}

func TestParseInteriorBlankLinesKept(t *testing.T) {
	steps := Parse("\n\nfirst\n\nsecond\n\n\n", "videos")
	require.Len(t, steps, 1)
	assert.Equal(t, "first\n\nsecond", steps[0].Text)
}

func TestParseEmptyStepIsValid(t *testing.T) {
	steps := Parse("Button [Go]", "videos")
	require.Len(t, steps, 1)
	assert.Empty(t, steps[0].Text)
	assert.Empty(t, steps[0].Videos)
	assert.Equal(t, "Go", steps[0].Button)
}

func TestParseDeterministic(t *testing.T) {
	assert.Equal(t, Parse(sampleDoc, "videos"), Parse(sampleDoc, "videos"))
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.txt"), "videos")
		var cerr *ContentError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("empty document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "content.txt")
		require.NoError(t, os.WriteFile(path, []byte("  \n________________\n \n"), 0o644))
		_, err := Load(path, "videos")
		var cerr *ContentError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("valid document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "content.txt")
		require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))
		steps, err := Load(path, "videos")
		require.NoError(t, err)
		assert.Len(t, steps, 3)
	})
}
