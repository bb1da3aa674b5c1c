package bot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursebot/internal/course"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
telegram:
  token: "123:abc"
  admin_ids: [42]
database:
  host: localhost
  port: "5432"
course:
  content_path: content/custom.txt
  media_cache:
    "1": "BAACAgIAAxkBAAI"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "longpoll", cfg.Core.Telegram.RunMode)
	assert.True(t, cfg.Core.Telegram.IsAdmin(42))
	assert.False(t, cfg.Core.Telegram.IsAdmin(7))
	assert.Equal(t, "content/custom.txt", cfg.Course.ContentPath)
	assert.Equal(t, "content/videos", cfg.Course.VideosDir)
	assert.Equal(t, course.DefaultMaxLen, cfg.Course.MaxMessageLen)
	assert.Equal(t, "BAACAgIAAxkBAAI", cfg.Course.MediaCache["1"])
}

func TestLoadConfigRequiresToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram:\n  run_mode: longpoll\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestNormalizeCourseDefaults(t *testing.T) {
	c := CourseConfig{}
	normalizeCourse(&c)
	assert.Equal(t, "content/content.txt", c.ContentPath)
	assert.Equal(t, "content/videos", c.VideosDir)
	assert.Equal(t, course.DefaultMaxLen, c.MaxMessageLen)
}
