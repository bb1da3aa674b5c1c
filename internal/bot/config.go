package bot

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "coursebot/core/config"
	coredatabase "coursebot/core/database"
	"coursebot/internal/course"
)

// CourseConfig locates the course document and tunes delivery.
type CourseConfig struct {
	ContentPath   string `yaml:"content_path" envconfig:"COURSE_CONTENT_PATH"`
	VideosDir     string `yaml:"videos_dir" envconfig:"COURSE_VIDEOS_DIR"`
	MaxMessageLen int    `yaml:"max_message_len" envconfig:"COURSE_MAX_MESSAGE_LEN"`
	// MediaCache maps a video ordinal ("1", "2", ...) to a Telegram file_id
	// obtained by sending the file once and reading the media echo reply.
	MediaCache map[string]string `yaml:"media_cache"`
}

// Config aggregates core, database, and course configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Course   CourseConfig        `yaml:"course"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Core
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	normalizeCourse(&cfg.Course)
	return &cfg, nil
}

func normalizeCourse(c *CourseConfig) {
	if c.ContentPath == "" {
		c.ContentPath = "content/content.txt"
	}
	if c.VideosDir == "" {
		c.VideosDir = "content/videos"
	}
	if c.MaxMessageLen <= 0 {
		c.MaxMessageLen = course.DefaultMaxLen
	}
}
