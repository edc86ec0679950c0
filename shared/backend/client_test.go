package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"video-summarizer/internal/models"
	"video-summarizer/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.BackendConfig {
	return config.BackendConfig{
		BaseURL:          baseURL,
		HealthTimeout:    time.Second,
		RequestTimeout:   2 * time.Second,
		Model:            "gemini-1.5-flash",
		AdditionalPrompt: "default prompt",
	}
}

func TestCheckHealthAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		fmt.Fprint(w, `{"geminiApiKeyExists":true,"youtubeApiKeyExists":false,"features":["transcripts","clean formatting"],"message":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil)
	got := c.CheckHealth(context.Background())

	assert.True(t, got.Available)
	assert.True(t, got.SummarizationReady)
	assert.False(t, got.TranscriptReady)
	assert.True(t, got.Degraded())
	assert.Equal(t, []string{"transcripts", "clean formatting"}, got.Features)
	assert.Equal(t, "ok", got.Message)
	assert.Empty(t, got.ErrorDetail)
}

func TestCheckHealthBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	got := NewClient(testConfig(srv.URL), nil).CheckHealth(context.Background())

	assert.False(t, got.Available)
	assert.Contains(t, got.ErrorDetail, "503")
	assert.NotNil(t, got.Features)
}

func TestCheckHealthUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	got := NewClient(testConfig("http://"+addr), nil).CheckHealth(context.Background())

	assert.False(t, got.Available)
	assert.NotEmpty(t, got.ErrorDetail)
}

func TestCheckHealthTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.HealthTimeout = 50 * time.Millisecond

	start := time.Now()
	got := NewClient(cfg, nil).CheckHealth(context.Background())

	assert.False(t, got.Available)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSummarizeSendsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/summarize", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))

		var body SummarizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", body.YouTubeLink)
		assert.Equal(t, "gemini-1.5-flash", body.Model)
		assert.Equal(t, "default prompt", body.AdditionalPrompt)

		fmt.Fprint(w, `{
			"summary": "🎬 Video Overview\nA talk.",
			"video_metadata": {"title": "T", "channel": "C", "duration": "1:00", "published": "2024-01-01", "views": 1234},
			"model_used": "gemini-1.5-flash",
			"analysis_quality": {"content_richness": "high", "has_transcript": true}
		}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil)
	payload, err := c.Summarize(context.Background(), c.NewSummarizeRequest("https://youtu.be/dQw4w9WgXcQ", ""), "req-1")

	require.NoError(t, err)
	assert.Equal(t, "T", payload.VideoMetadata.Title)
	assert.Equal(t, models.ViewCount(1234), payload.VideoMetadata.Views)
	assert.True(t, payload.AnalysisQuality.HasTranscript)
	assert.Nil(t, payload.StructuredSections)
}

func TestNewSummarizeRequestHint(t *testing.T) {
	c := NewClient(testConfig("http://localhost"), nil)
	req := c.NewSummarizeRequest("u", "focus on the demo")
	assert.Equal(t, "focus on the demo", req.AdditionalPrompt)
}

func TestSummarizeUpstreamErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"details preferred", http.StatusInternalServerError, `{"error":"Internal","details":"Transcript fetch failed"}`, "Transcript fetch failed"},
		{"error fallback", http.StatusBadRequest, `{"error":"Invalid link"}`, "Invalid link"},
		{"plain text", http.StatusBadGateway, "upstream down\n", "upstream down"},
		{"empty", http.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(testConfig(srv.URL), nil)
			_, err := c.Summarize(context.Background(), c.NewSummarizeRequest("u", ""), "")

			var upErr *UpstreamError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, tt.status, upErr.Status)
			assert.Equal(t, tt.wantDetail, upErr.Detail)
		})
	}
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer id-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"geminiApiKeyExists":true,"youtubeApiKeyExists":true}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.AuthToken = "id-token"
	got := NewClient(cfg, nil).CheckHealth(context.Background())
	assert.True(t, got.Available)
}

func TestRespondForwardsHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ask-question", r.URL.Path)
		var body askQuestionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ctx_abc_1", body.ContextID)
		assert.Equal(t, "why?", body.Question)
		require.Len(t, body.ChatHistory, 1)
		assert.Equal(t, models.ChatRoleUser, body.ChatHistory[0].Role)
		fmt.Fprint(w, `{"answer":"because"}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil)
	history := []models.ChatTurn{{Role: models.ChatRoleUser, Content: "hi"}}
	answer, err := c.Respond(context.Background(), &models.NormalizedAnalysis{ContextID: "ctx_abc_1"}, "why?", history)

	require.NoError(t, err)
	assert.Equal(t, "because", answer)
}

func TestRespondEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"answer":"  "}`)
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), nil).Respond(context.Background(), &models.NormalizedAnalysis{}, "q", nil)
	assert.Error(t, err)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o deadline" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &UpstreamError{Status: 429}, true},
		{"503", &UpstreamError{Status: 503}, true},
		{"500 overloaded detail", &UpstreamError{Status: 500, Detail: "The model is overloaded"}, true},
		{"500 rate limit detail", &UpstreamError{Status: 500, Detail: "Rate limit reached"}, true},
		{"400", &UpstreamError{Status: 400, Detail: "Invalid YouTube link"}, false},
		{"500 plain", &UpstreamError{Status: 500, Detail: "boom"}, false},
		{"wrapped 503", fmt.Errorf("submit: %w", &UpstreamError{Status: 503}), true},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"dns timeout", &net.DNSError{IsTimeout: true}, true},
		{"dns not found", &net.DNSError{IsNotFound: true}, false},
		{"net timeout", timeoutErr{}, true},
		{"message timeout", errors.New("gateway timeout"), true},
		{"plain", errors.New("something else"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "backend server is not available: dial tcp: refused", (&BackendUnavailableError{Detail: "dial tcp: refused"}).Error())
	assert.Equal(t, "backend returned HTTP 502", (&UpstreamError{Status: 502}).Error())
	assert.Equal(t, "backend returned HTTP 400: bad link", (&UpstreamError{Status: 400, Detail: "bad link"}).Error())
}
