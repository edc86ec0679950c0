package backend

import (
	"context"
	"net/http"

	"video-summarizer/internal/models"

	"go.uber.org/zap"
)

type healthResponse struct {
	GeminiAPIKeyExists  bool     `json:"geminiApiKeyExists"`
	YouTubeAPIKeyExists bool     `json:"youtubeApiKeyExists"`
	Features            []string `json:"features"`
	Message             string   `json:"message"`
}

// CheckHealth probes GET /api/health with the short health timeout. It never
// fails: transport errors and bad statuses come back as Available=false with
// the reason in ErrorDetail. Results are not cached.
func (c *Client) CheckHealth(ctx context.Context) models.BackendCapability {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	var hr healthResponse
	if err := c.doJSON(ctx, http.MethodGet, healthPath, nil, &hr, ""); err != nil {
		c.logger.Warn("backend health check failed", zap.String("backend", c.baseURL), zap.Error(err))
		return models.BackendCapability{
			Available:   false,
			Features:    []string{},
			ErrorDetail: err.Error(),
		}
	}

	features := hr.Features
	if features == nil {
		features = []string{}
	}

	c.logger.Debug("backend health check",
		zap.Bool("summarization", hr.GeminiAPIKeyExists),
		zap.Bool("transcripts", hr.YouTubeAPIKeyExists),
		zap.Strings("features", features),
	)

	return models.BackendCapability{
		Available:          true,
		SummarizationReady: hr.GeminiAPIKeyExists,
		TranscriptReady:    hr.YouTubeAPIKeyExists,
		Features:           features,
		Message:            hr.Message,
	}
}
