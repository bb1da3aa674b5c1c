package course

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentOp struct {
	kind    string // text, video_id, video_file, notice
	payload string
	control *Control
}

// fakeTransport records operations in order and can fail specific ones.
type fakeTransport struct {
	ops  []sentOp
	fail map[int]error // zero-based operation ordinal -> error
}

func (f *fakeTransport) record(kind, payload string, c *Control) error {
	ord := len(f.ops)
	f.ops = append(f.ops, sentOp{kind: kind, payload: payload, control: c})
	return f.fail[ord]
}

func (f *fakeTransport) SendText(_ context.Context, _ int64, html string, c *Control) error {
	return f.record("text", html, c)
}

func (f *fakeTransport) SendVideoID(_ context.Context, _ int64, fileID string, c *Control) error {
	return f.record("video_id", fileID, c)
}

func (f *fakeTransport) SendVideoFile(_ context.Context, _ int64, path string, c *Control) error {
	return f.record("video_file", path, c)
}

func (f *fakeTransport) SendNotice(_ context.Context, _ int64, text string, c *Control) error {
	return f.record("notice", text, c)
}

type fakeStore struct {
	progress    map[int64]int
	completed   map[int64]bool
	inactive    map[int64]bool
	progressErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		progress:  make(map[int64]int),
		completed: make(map[int64]bool),
		inactive:  make(map[int64]bool),
	}
}

func (s *fakeStore) SetProgress(_ context.Context, id int64, idx int, completed bool) error {
	s.progress[id] = idx
	if completed {
		s.completed[id] = true
	}
	return nil
}

func (s *fakeStore) Progress(_ context.Context, id int64) (int, error) {
	if s.progressErr != nil {
		return 0, s.progressErr
	}
	return s.progress[id], nil
}

func (s *fakeStore) SetInactive(_ context.Context, id int64) error {
	s.inactive[id] = true
	return nil
}

const chat = int64(42)

func TestRendererTextControlOnLastPart(t *testing.T) {
	tr := &fakeTransport{}
	r := NewRenderer(tr, newFakeStore(), nil, 20)

	step := Step{Text: "headline\n\naaaaaaaa\n\nbbbbbbbb\n\ncccccccc", Button: "Next"}
	require.NoError(t, r.Step(context.Background(), chat, step, 3))

	require.Len(t, tr.ops, 3)
	for i, op := range tr.ops {
		assert.Equal(t, "text", op.kind)
		if i < len(tr.ops)-1 {
			assert.Nil(t, op.control, "control must only ride the last part")
		}
	}
	last := tr.ops[len(tr.ops)-1]
	require.NotNil(t, last.control)
	assert.Equal(t, "Next", last.control.Label)
	assert.Equal(t, 3, last.control.Index)
}

func TestRendererBoldsFirstNonBlankLine(t *testing.T) {
	tr := &fakeTransport{}
	r := NewRenderer(tr, newFakeStore(), nil, 0)

	require.NoError(t, r.Step(context.Background(), chat, Step{Text: "Title <1>\nbody & more"}, 0))
	require.Len(t, tr.ops, 1)
	assert.Equal(t, "<b>Title &lt;1&gt;</b>\nbody &amp; more", tr.ops[0].payload)
}

func TestRendererMediaFallbackChain(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video 1.mp4"), []byte("x"), 0o644))

	step := Step{
		Button: "Done",
		Videos: []MediaRef{
			{Ordinal: "1", Path: filepath.Join(dir, "video 1.mp4")},
			{Ordinal: "2", Path: filepath.Join(dir, "video 2.mp4")}, // missing
		},
	}

	tr := &fakeTransport{}
	r := NewRenderer(tr, newFakeStore(), nil, 0)
	require.NoError(t, r.Step(context.Background(), chat, step, 0))

	require.Len(t, tr.ops, 2)
	assert.Equal(t, "video_file", tr.ops[0].kind)
	assert.Nil(t, tr.ops[0].control)
	assert.Equal(t, "notice", tr.ops[1].kind)
	assert.Equal(t, "Video not found: video 2.mp4", tr.ops[1].payload)
	// The control attaches to the last media operation even when it is the
	// missing-file notice.
	require.NotNil(t, tr.ops[1].control)
	assert.Equal(t, "Done", tr.ops[1].control.Label)
}

func TestRendererCachedReferencePreferred(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video 7.mp4"), []byte("x"), 0o644))

	step := Step{Videos: []MediaRef{{Ordinal: "7", Path: filepath.Join(dir, "video 7.mp4")}}}
	tr := &fakeTransport{}
	r := NewRenderer(tr, newFakeStore(), map[string]string{"7": "FILEID7"}, 0)
	require.NoError(t, r.Step(context.Background(), chat, step, 0))

	require.Len(t, tr.ops, 1)
	assert.Equal(t, "video_id", tr.ops[0].kind)
	assert.Equal(t, "FILEID7", tr.ops[0].payload)
}

func TestRendererMediaControlOverridesText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video 1.mp4"), []byte("x"), 0o644))

	step := Step{
		Text:   "watch",
		Button: "Seen it",
		Videos: []MediaRef{{Ordinal: "1", Path: filepath.Join(dir, "video 1.mp4")}},
	}
	tr := &fakeTransport{}
	r := NewRenderer(tr, newFakeStore(), nil, 0)
	require.NoError(t, r.Step(context.Background(), chat, step, 0))

	require.Len(t, tr.ops, 2)
	assert.Nil(t, tr.ops[0].control, "text part must not carry the control when media follows")
	require.NotNil(t, tr.ops[1].control)
}

func TestRendererEmptyStepNotice(t *testing.T) {
	tr := &fakeTransport{}
	r := NewRenderer(tr, newFakeStore(), nil, 0)
	require.NoError(t, r.Step(context.Background(), chat, Step{Button: "Go"}, 5))

	require.Len(t, tr.ops, 1)
	assert.Equal(t, "notice", tr.ops[0].kind)
	assert.Equal(t, "(Empty step)", tr.ops[0].payload)
	require.NotNil(t, tr.ops[0].control)
	assert.Equal(t, 5, tr.ops[0].control.Index)
}

func TestRendererDeliveryFailureDegradesToNotice(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video 1.mp4"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video 2.mp4"), []byte("x"), 0o644))

	step := Step{Videos: []MediaRef{
		{Ordinal: "1", Path: filepath.Join(dir, "video 1.mp4")},
		{Ordinal: "2", Path: filepath.Join(dir, "video 2.mp4")},
	}}
	tr := &fakeTransport{fail: map[int]error{0: errors.New("flood limit")}}
	r := NewRenderer(tr, newFakeStore(), nil, 0)
	require.NoError(t, r.Step(context.Background(), chat, step, 0))

	// failed video 1 -> fallback notice -> video 2 still sent
	require.Len(t, tr.ops, 3)
	assert.Equal(t, "notice", tr.ops[1].kind)
	assert.Equal(t, "Failed to send video video 1.mp4", tr.ops[1].payload)
	assert.Equal(t, "video_file", tr.ops[2].kind)
}

func TestRendererUnreachableAbortsAndDeactivates(t *testing.T) {
	store := newFakeStore()
	tr := &fakeTransport{fail: map[int]error{
		0: fmt.Errorf("send: %w", ErrUnreachable),
	}}
	r := NewRenderer(tr, store, nil, 10)

	step := Step{Text: "aaaaaaaa\n\nbbbbbbbb"}
	err := r.Step(context.Background(), chat, step, 0)
	require.ErrorIs(t, err, ErrUnreachable)

	// The second text part was never attempted.
	assert.Len(t, tr.ops, 1)
	assert.True(t, store.inactive[chat])
}
