package youtubesummarizer

import (
	"context"
	"fmt"

	"video-summarizer/agents/youtube-summarizer/youtube"
	"video-summarizer/internal/models"
	"video-summarizer/shared/backend"
	"video-summarizer/shared/logging"
	"video-summarizer/shared/retry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisClient validates the link, probes the backend and submits the
// analysis request through the retry loop. It does not touch the result store.
type AnalysisClient struct {
	backend *backend.Client
	retrier *retry.Scheduler
	logger  *zap.Logger
}

func NewAnalysisClient(b *backend.Client, r *retry.Scheduler, logger *zap.Logger) *AnalysisClient {
	return &AnalysisClient{
		backend: b,
		retrier: r,
		logger:  logging.OrNop(logger),
	}
}

// Submission is the outcome of one successful Analyze call.
type Submission struct {
	Video      models.VideoReference
	Capability models.BackendCapability
	Payload    *models.RawAnalysisPayload
	RequestID  string
}

// Warnings lists the degraded-mode notices the caller should surface.
func (s *Submission) Warnings() []string {
	return capabilityWarnings(s.Capability)
}

func capabilityWarnings(c models.BackendCapability) []string {
	var warnings []string
	if !c.SummarizationReady {
		warnings = append(warnings, "Gemini API is not configured on the backend; the summary may be limited")
	}
	if !c.TranscriptReady {
		warnings = append(warnings, "YouTube API is not configured on the backend; the analysis may rely on metadata only")
	}
	return warnings
}

// Analyze fails with backend.ErrInvalidURL, *backend.BackendUnavailableError,
// *backend.UpstreamError or *retry.ExhaustedRetriesError.
func (c *AnalysisClient) Analyze(ctx context.Context, rawURL, hint string) (*Submission, error) {
	video, ok := youtube.ExtractVideoID(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", backend.ErrInvalidURL, rawURL)
	}

	logger := c.logger.With(zap.String("video_id", video.VideoID))

	capability := c.backend.CheckHealth(ctx)
	if !capability.Available {
		return nil, &backend.BackendUnavailableError{Detail: capability.ErrorDetail}
	}
	if !capability.SummarizationReady {
		logger.Warn("summarization API not configured on backend")
	}
	if !capability.TranscriptReady {
		logger.Warn("transcript API not configured on backend")
	}

	requestID := uuid.NewString()
	req := c.backend.NewSummarizeRequest(video.SourceURL, hint)

	logger.Info("submitting analysis", zap.String("request_id", requestID), zap.String("model", req.Model))

	payload, err := retry.Run(ctx, c.retrier, func(ctx context.Context) (*models.RawAnalysisPayload, error) {
		return c.backend.Summarize(ctx, req, requestID)
	}, backend.IsTransient)
	if err != nil {
		logger.Error("analysis failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}

	logger.Info("analysis completed", zap.String("request_id", requestID), zap.String("model_used", payload.ModelUsed))

	return &Submission{
		Video:      video,
		Capability: capability,
		Payload:    payload,
		RequestID:  requestID,
	}, nil
}
