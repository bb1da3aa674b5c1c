package course

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortTextSinglePart(t *testing.T) {
	parts := SplitText("hello\n\nworld", 100)
	assert.Equal(t, []string{"hello\n\nworld"}, parts)
}

func TestSplitTextParagraphGrouping(t *testing.T) {
	a := strings.Repeat("a", 40)
	b := strings.Repeat("b", 40)
	c := strings.Repeat("c", 40)
	text := a + "\n\n" + b + "\n\n" + c

	// 40 + 2 + 40 = 82 fits in 90; adding c would need 124.
	parts := SplitText(text, 90)
	require.Len(t, parts, 2)
	assert.Equal(t, a+"\n\n"+b, parts[0])
	assert.Equal(t, c, parts[1])
}

func TestSplitTextReconstruction(t *testing.T) {
	paras := []string{
		strings.Repeat("x", 30),
		strings.Repeat("y", 30),
		strings.Repeat("z", 30),
		strings.Repeat("w", 30),
	}
	text := strings.Join(paras, "\n\n")
	parts := SplitText(text, 70)

	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 70)
	}
	// No paragraph exceeded the limit, so rejoining restores the input.
	assert.Equal(t, text, strings.Join(parts, "\n\n"))
}

func TestSplitTextOversizedParagraphHardSliced(t *testing.T) {
	huge := strings.Repeat("q", 25)
	parts := SplitText(huge+"\n\n"+huge, 10)
	require.Len(t, parts, 6)
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 10)
	}
	assert.Equal(t, huge, strings.Join(parts[:3], ""))
	assert.Equal(t, huge, strings.Join(parts[3:], ""))
}

func TestSplitTextCountsRunesNotBytes(t *testing.T) {
	// Four 3-byte runes; a byte-based limit of 6 would split after two.
	text := strings.Repeat("日", 4)
	parts := SplitText(text, 6)
	assert.Equal(t, []string{text}, parts)
}

func TestSplitTextPure(t *testing.T) {
	text := strings.Repeat("p", 15) + "\n\n" + strings.Repeat("r", 15)
	assert.Equal(t, SplitText(text, 20), SplitText(text, 20))
}
