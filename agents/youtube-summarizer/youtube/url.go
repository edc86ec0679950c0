package youtube

import (
	"regexp"
	"strings"

	"video-summarizer/internal/models"
)

// videoURLPattern matches watch, embed, /v/, /e/, shorts, live, youtu.be and
// playlist-embedded links, capturing the first 11-character video ID. The
// nested-path alternative stays inside the path and the query alternative
// stops at the first v= parameter.
var videoURLPattern = regexp.MustCompile(
	`(?:youtube(?:-nocookie)?\.com/(?:[^/\s?#]+/[^?#\s]+/|(?:v|e(?:mbed)?|shorts|live)/|\S*?[?&]v=)|youtu\.be/)([A-Za-z0-9_-]{11})`,
)

// playlistEmbed is the embed path segment of a playlist player. It is
// eleven characters long but never a video ID.
const playlistEmbed = "videoseries"

var bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID parses a YouTube URL, or a bare 11-character ID, into a
// VideoReference. It reports false for anything else and never panics.
func ExtractVideoID(rawURL string) (models.VideoReference, bool) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return models.VideoReference{}, false
	}

	if m := videoURLPattern.FindStringSubmatch(s); len(m) == 2 {
		if m[1] == playlistEmbed {
			return models.VideoReference{}, false
		}
		return models.VideoReference{VideoID: m[1], SourceURL: s}, true
	}

	if bareIDPattern.MatchString(s) {
		return models.VideoReference{
			VideoID:   s,
			SourceURL: "https://www.youtube.com/watch?v=" + s,
		}, true
	}

	return models.VideoReference{}, false
}
