package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"video-summarizer/internal/models"
	"video-summarizer/shared/config"
	"video-summarizer/shared/logging"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	healthPath      = "/api/health"
	summarizePath   = "/api/summarize"
	askQuestionPath = "/api/ask-question"

	// maxErrorBody bounds how much of a failed response is read for its detail.
	maxErrorBody = 64 * 1024
)

// Client talks to the summarization backend over JSON/HTTP.
type Client struct {
	baseURL          string
	model            string
	additionalPrompt string
	healthTimeout    time.Duration
	requestTimeout   time.Duration
	httpClient       *http.Client
	limiter          *rate.Limiter
	logger           *zap.Logger
}

// NewClient builds a client from the backend config. When an auth token is
// configured every request carries it as a bearer token.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     60 * time.Second,
		},
	}
	if cfg.AuthToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AuthToken,
			TokenType:   "Bearer",
		}))
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		model:            cfg.Model,
		additionalPrompt: cfg.AdditionalPrompt,
		healthTimeout:    cfg.HealthTimeout,
		requestTimeout:   cfg.RequestTimeout,
		httpClient:       httpClient,
		limiter:          limiter,
		logger:           logging.OrNop(logger),
	}
}

// BaseURL returns the backend root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	YouTubeLink      string `json:"youtube_link"`
	Model            string `json:"model"`
	AdditionalPrompt string `json:"additional_prompt"`
}

// NewSummarizeRequest fills in the configured model and prompt. A non-empty
// hint replaces the default prompt.
func (c *Client) NewSummarizeRequest(videoURL, hint string) SummarizeRequest {
	prompt := c.additionalPrompt
	if strings.TrimSpace(hint) != "" {
		prompt = hint
	}
	return SummarizeRequest{
		YouTubeLink:      videoURL,
		Model:            c.model,
		AdditionalPrompt: prompt,
	}
}

// Summarize performs one submission attempt. Non-2xx responses become
// *UpstreamError; retrying is the caller's decision.
func (c *Client) Summarize(ctx context.Context, req SummarizeRequest, requestID string) (*models.RawAnalysisPayload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var payload models.RawAnalysisPayload
	if err := c.doJSON(ctx, http.MethodPost, summarizePath, req, &payload, requestID); err != nil {
		return nil, err
	}
	return &payload, nil
}

type askQuestionRequest struct {
	ContextID   string            `json:"context_id"`
	Question    string            `json:"question"`
	ChatHistory []models.ChatTurn `json:"chat_history"`
}

type askQuestionResponse struct {
	Answer string `json:"answer"`
}

// Respond forwards a follow-up question to POST /api/ask-question. The cached
// analysis is identified by its context ID; the backend holds its own copy.
func (c *Client) Respond(ctx context.Context, analysis *models.NormalizedAnalysis, question string, history []models.ChatTurn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if history == nil {
		history = []models.ChatTurn{}
	}
	var resp askQuestionResponse
	err := c.doJSON(ctx, http.MethodPost, askQuestionPath, askQuestionRequest{
		ContextID:   analysis.ContextID,
		Question:    question,
		ChatHistory: history,
	}, &resp, "")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Answer) == "" {
		return "", fmt.Errorf("backend returned an empty answer")
	}
	return resp.Answer, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// doJSON sends payload (if any) and decodes a 2xx body into result.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, result any, requestID string) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	c.logger.Debug("backend request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend response", zap.String("path", path), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Detail: readErrorDetail(resp.Body)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

// readErrorDetail prefers details, then error, from an {error, details} body.
func readErrorDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		if eb.Details != "" {
			return eb.Details
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return strings.TrimSpace(string(data))
}
