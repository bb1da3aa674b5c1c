package course

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Delimiter separates steps in the course document.
const Delimiter = "________________"

var (
	buttonRe     = regexp.MustCompile(`Button \[(.+?)\]`)
	buttonLineRe = regexp.MustCompile(`^\s*Button \[.+?\]\s*$`)
	videoRe      = regexp.MustCompile(`\[video (\d+)\]`)
)

// Load reads the course document at path and parses it into a step list.
// It fails with a *ContentError when the file is unreadable or yields no
// steps; both conditions are fatal for the caller.
func Load(path, videosDir string) ([]Step, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ContentError{Path: path, Err: err}
	}
	steps := Parse(string(raw), videosDir)
	if len(steps) == 0 {
		return nil, &ContentError{Path: path, Err: errors.New("document contains no steps")}
	}
	return steps, nil
}

// Parse splits raw course text on the step delimiter and builds the ordered
// step list. Whitespace-only chunks are discarded. Within a chunk, the first
// `Button [label]` match wins even if more such lines exist; every
// `[video N]` marker becomes a media reference in appearance order,
// duplicates included. Parse is pure: same input, same output.
func Parse(raw, videosDir string) []Step {
	var steps []Step
	for _, chunk := range strings.Split(raw, Delimiter) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		var step Step
		if m := buttonRe.FindStringSubmatch(chunk); m != nil {
			step.Button = strings.TrimSpace(m[1])
		}
		for _, m := range videoRe.FindAllStringSubmatch(chunk, -1) {
			step.Videos = append(step.Videos, MediaRef{
				Ordinal: m[1],
				Path:    filepath.Join(videosDir, fmt.Sprintf("video %s.mp4", m[1])),
			})
		}
		step.Text = cleanChunk(chunk)
		steps = append(steps, step)
	}
	return steps
}

// cleanChunk strips button lines and video markers from the body and trims
// leading and trailing blank lines. Interior blank lines stay: they are the
// paragraph separators the segmenter splits on.
func cleanChunk(chunk string) string {
	var lines []string
	for _, line := range strings.Split(chunk, "\n") {
		if buttonLineRe.MatchString(line) {
			continue
		}
		lines = append(lines, videoRe.ReplaceAllString(line, ""))
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
