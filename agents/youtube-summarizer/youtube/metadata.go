package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"video-summarizer/internal/models"
	"video-summarizer/shared/config"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrNoAPIKey is returned when metadata lookup is requested without a key.
var ErrNoAPIKey = errors.New("YouTube API key is not configured")

// ErrVideoNotFound means the Data API knows no video with the requested ID.
var ErrVideoNotFound = errors.New("video not found")

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// MetadataClient reads video details from the YouTube Data API with an API key.
type MetadataClient struct {
	service *youtube.Service
}

func NewMetadataClient(ctx context.Context, cfg *config.YouTubeConfig, opts ...option.ClientOption) (*MetadataClient, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &MetadataClient{service: service}, nil
}

// VideoDetails fetches title, channel, duration, publish date and views.
func (c *MetadataClient) VideoDetails(ctx context.Context, videoID string) (*models.VideoDetails, error) {
	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video details for %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}

	item := resp.Items[0]
	details := &models.VideoDetails{ID: item.Id}
	if item.Snippet != nil {
		details.Title = item.Snippet.Title
		details.ChannelTitle = item.Snippet.ChannelTitle
		details.PublishedAt = item.Snippet.PublishedAt
	}
	if item.ContentDetails != nil {
		details.DurationSeconds = parseDurationSeconds(item.ContentDetails.Duration)
		if details.DurationSeconds > 0 {
			details.Duration = FormatDuration(details.DurationSeconds)
		}
	}
	if item.Statistics != nil {
		details.ViewCount = int64(item.Statistics.ViewCount)
	}

	return details, nil
}

// parseDurationSeconds reads ISO 8601 durations such as "PT1M30S" or
// "P1DT2H". Anything else is zero.
func parseDurationSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	matches := isoDuration.FindStringSubmatch(duration)
	if matches == nil {
		return 0
	}

	var totalSeconds int
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	for i, unit := range units {
		if matches[i+1] == "" {
			continue
		}
		if n, err := strconv.Atoi(matches[i+1]); err == nil {
			totalSeconds += n * int(unit/time.Second)
		}
	}

	return totalSeconds
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
