package youtubesummarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"video-summarizer/agents/youtube-summarizer/youtube"
	"video-summarizer/internal/models"
	"video-summarizer/shared/ai"
	"video-summarizer/shared/backend"
	"video-summarizer/shared/chat"
	"video-summarizer/shared/config"
	"video-summarizer/shared/email"
	"video-summarizer/shared/logging"
	"video-summarizer/shared/monitoring"
	"video-summarizer/shared/normalize"
	"video-summarizer/shared/report"
	"video-summarizer/shared/retry"
	"video-summarizer/shared/scheduler"
	"video-summarizer/shared/storage"

	"go.uber.org/zap"
)

var defaultFeatures = []string{"Clean formatting", "Real YouTube data", "AI analysis"}

// ErrEmailDisabled is returned when a report should be mailed but SMTP is not configured.
var ErrEmailDisabled = errors.New("email delivery is not configured")

// Summarizer wires the analysis pipeline together and implements scheduler.Agent
// as a periodic backend health watch.
type Summarizer struct {
	config *config.Config
	logger *zap.Logger

	backend    *backend.Client
	retrier    *retry.Scheduler
	analysis   *AnalysisClient
	normalizer *normalize.Normalizer
	store      *storage.ResultStore
	sessions   *chat.Sessions
	answerer   *chat.Answerer
	exporter   *report.Exporter
	monitor    *monitoring.Monitor

	metadata    *youtube.MetadataClient
	writer      *storage.ReportWriter
	emailSender *email.Sender

	mu        sync.Mutex
	lastCheck time.Time
}

// AnalysisResult is a stored analysis plus any degraded-mode notices.
type AnalysisResult struct {
	Analysis *models.NormalizedAnalysis
	Warnings []string
}

// ExportResult describes one exported report.
type ExportResult struct {
	Report  *report.Report
	Path    string
	Emailed bool
}

// APIStatus mirrors what the UI showed about the backend and local cache.
type APIStatus struct {
	BackendAvailable bool         `json:"backend_available"`
	BackendURL       string       `json:"backend_url"`
	GeminiAPI        bool         `json:"gemini_api"`
	YouTubeAPI       bool         `json:"youtube_api"`
	Features         []string     `json:"features"`
	CachedAnalyses   int          `json:"cached_analyses"`
	RetryPolicy      retry.Policy `json:"retry_config"`
	CleanFormatting  bool         `json:"clean_formatting"`
	Error            string       `json:"error,omitempty"`
	LastCheck        time.Time    `json:"last_check"`
}

func NewSummarizer(cfg *config.Config, monitor *monitoring.Monitor, logger *zap.Logger) *Summarizer {
	logger = logging.OrNop(logger)
	if monitor == nil {
		monitor = monitoring.NewMonitor(logger)
	}

	client := backend.NewClient(cfg.Backend, logger)
	retrier := retry.NewScheduler(retry.PolicyFromConfig(cfg.Retry), logger)
	store := storage.NewResultStore(cfg.Cache.MaxEntries, cfg.Cache.TTL, logger)

	return &Summarizer{
		config:     cfg,
		logger:     logger,
		backend:    client,
		retrier:    retrier,
		analysis:   NewAnalysisClient(client, retrier, logger),
		normalizer: normalize.New(),
		store:      store,
		sessions:   chat.NewSessions(cfg.Chat.SessionTTL),
		answerer:   chat.NewAnswerer(store, chat.TemplateResponder{}),
		exporter:   report.NewExporter(store),
		monitor:    monitor,
	}
}

func (s *Summarizer) Name() string {
	return "YouTube Summarizer"
}

// Initialize builds the optional collaborators: chat responder, YouTube
// metadata client, report writer and email sender.
func (s *Summarizer) Initialize() error {
	ctx := context.Background()
	s.logger.Info("initializing", zap.String("agent", s.Name()), zap.String("backend", s.backend.BaseURL()))

	responder, err := s.newResponder(ctx)
	if err != nil {
		return fmt.Errorf("failed to create chat responder: %w", err)
	}
	s.answerer = chat.NewAnswerer(s.store, responder)
	s.logger.Info("chat responder initialized", zap.String("responder", s.config.Chat.Responder))

	if s.metadata == nil && s.config.YouTube.APIKey != "" {
		client, err := youtube.NewMetadataClient(ctx, &s.config.YouTube)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		s.metadata = client
		s.logger.Info("YouTube metadata client initialized")
	}

	if s.writer == nil {
		writer, err := storage.NewReportWriter(s.config.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to create report writer: %w", err)
		}
		s.writer = writer
		s.logger.Info("report writer initialized", zap.String("dir", writer.Dir()), zap.Int("exported", writer.Count()))
	}

	if s.emailSender == nil && s.config.Email.Enabled() {
		s.emailSender = email.NewSender(&s.config.Email)
		s.logger.Info("email sender initialized")
	}

	return nil
}

func (s *Summarizer) newResponder(ctx context.Context) (chat.Responder, error) {
	switch s.config.Chat.Responder {
	case "backend":
		return s.backend, nil
	case "gemini":
		return ai.NewGeminiResponder(ctx, s.config.AI)
	case "openai":
		return ai.NewOpenAIResponder(s.config.AI), nil
	default:
		return chat.TemplateResponder{}, nil
	}
}

// Analyze runs the full pipeline for one link and stores the result.
func (s *Summarizer) Analyze(ctx context.Context, rawURL, hint string) (*AnalysisResult, error) {
	sub, err := s.analysis.Analyze(ctx, rawURL, hint)
	if err != nil {
		s.monitor.RecordAnalysis(rawURL, err)
		return nil, err
	}

	s.enrich(ctx, sub)

	analysis := s.normalizer.Normalize(sub.Payload, sub.Video)
	s.store.Put(analysis)
	s.monitor.RecordAnalysis(analysis.VideoID, nil)

	s.logger.Info("analysis stored",
		zap.String("context_id", analysis.ContextID),
		zap.String("title", analysis.Title),
		zap.Int("main_points", len(analysis.MainPoints)),
		zap.Int("cached", s.store.Size()))

	return &AnalysisResult{Analysis: analysis, Warnings: sub.Warnings()}, nil
}

// enrich fills metadata the backend left blank. Failures are only logged.
func (s *Summarizer) enrich(ctx context.Context, sub *Submission) {
	if s.metadata == nil {
		return
	}
	meta := &sub.Payload.VideoMetadata
	if meta.Title != "" && meta.Channel != "" && meta.Duration != "" && meta.Published != "" && meta.Views > 0 {
		return
	}

	details, err := s.metadata.VideoDetails(ctx, sub.Video.VideoID)
	if err != nil {
		s.logger.Warn("metadata enrichment failed", zap.String("video_id", sub.Video.VideoID), zap.Error(err))
		return
	}

	if meta.Title == "" {
		meta.Title = details.Title
	}
	if meta.Channel == "" {
		meta.Channel = details.ChannelTitle
	}
	if meta.Duration == "" {
		meta.Duration = details.Duration
	}
	if meta.Published == "" {
		meta.Published = details.PublishedAt
	}
	if meta.Views <= 0 {
		meta.Views = models.ViewCount(details.ViewCount)
	}
}

// Cached returns a copy of a stored analysis.
func (s *Summarizer) Cached(contextID string) (*models.NormalizedAnalysis, bool) {
	return s.store.Get(contextID)
}

// History returns the chat turns recorded for an analysis.
func (s *Summarizer) History(contextID string) []models.ChatTurn {
	return s.sessions.History(contextID)
}

// Ask answers a follow-up question and records the exchange. Unknown contexts
// and empty questions are returned without touching the history.
func (s *Summarizer) Ask(ctx context.Context, contextID, question string) (string, error) {
	history := s.sessions.History(contextID)
	answer, err := s.answerer.Answer(ctx, contextID, question, history)

	var notFound *storage.ContextNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, chat.ErrEmptyQuestion) {
		return "", err
	}

	now := time.Now()
	userTurn := models.NewChatTurn(models.ChatRoleUser, strings.TrimSpace(question), now)
	if err != nil {
		s.sessions.Append(contextID, userTurn,
			models.NewChatTurn(models.ChatRoleError, "Sorry, I couldn't process your question: "+err.Error(), now))
		s.logger.Warn("question failed", zap.String("context_id", contextID), zap.Error(err))
		return "", err
	}

	s.sessions.Append(contextID, userTurn, models.NewChatTurn(models.ChatRoleAssistant, answer, now))
	return answer, nil
}

// Export renders the report, writes it to the output directory and
// optionally mails it.
func (s *Summarizer) Export(contextID string, sendEmail bool) (*ExportResult, error) {
	rep, err := s.exporter.ExportText(contextID)
	if err != nil {
		return nil, err
	}
	result := &ExportResult{Report: rep}

	if s.writer != nil {
		path, err := s.writer.Save(rep.ContextID, rep.VideoID, rep.Filename, rep.Content)
		if err != nil {
			return nil, err
		}
		result.Path = path
		s.logger.Info("report exported", zap.String("context_id", contextID), zap.String("path", path))
	}

	if sendEmail {
		if s.emailSender == nil {
			return result, ErrEmailDisabled
		}
		analysis, err := s.store.Lookup(contextID)
		if err != nil {
			return result, err
		}
		if err := s.emailSender.SendReport(analysis, rep); err != nil {
			return result, err
		}
		result.Emailed = true
		s.logger.Info("report emailed", zap.String("context_id", contextID))
	}

	return result, nil
}

// Status probes the backend and reports it together with local state.
func (s *Summarizer) Status(ctx context.Context) APIStatus {
	capability := s.backend.CheckHealth(ctx)
	now := s.markChecked()

	features := capability.Features
	if len(features) == 0 {
		features = defaultFeatures
	}

	return APIStatus{
		BackendAvailable: capability.Available,
		BackendURL:       s.backend.BaseURL(),
		GeminiAPI:        capability.SummarizationReady,
		YouTubeAPI:       capability.TranscriptReady,
		Features:         append([]string(nil), features...),
		CachedAnalyses:   s.store.Size(),
		RetryPolicy:      s.retrier.Policy(),
		CleanFormatting:  true,
		Error:            capability.ErrorDetail,
		LastCheck:        now,
	}
}

// ClearCache drops every stored analysis and chat history.
func (s *Summarizer) ClearCache() {
	s.store.Clear()
	s.sessions.Flush()
	s.logger.Info("analysis cache cleared")
}

// LastCheck is the time of the most recent backend probe made through
// Status or the health watch.
func (s *Summarizer) LastCheck() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCheck
}

func (s *Summarizer) markChecked() time.Time {
	now := time.Now()
	s.mu.Lock()
	s.lastCheck = now
	s.mu.Unlock()
	return now
}

type healthMetrics struct {
	capability models.BackendCapability
	cached     int
}

func (m healthMetrics) GetSummary() string {
	state := "backend available"
	if m.capability.Degraded() {
		state = "backend degraded"
	}
	return fmt.Sprintf("%s, %d cached analyses", state, m.cached)
}

// RunOnce probes the backend for the health watch.
func (s *Summarizer) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	start := time.Now()
	capability := s.backend.CheckHealth(ctx)
	s.markChecked()
	duration := time.Since(start)

	if !capability.Available {
		events.OnCriticalFailure(&backend.BackendUnavailableError{Detail: capability.ErrorDetail}, duration)
		return nil
	}

	if warnings := capabilityWarnings(capability); len(warnings) > 0 {
		events.OnPartialFailure(errors.New(strings.Join(warnings, "; ")), duration)
	}
	events.OnSuccess(healthMetrics{capability: capability, cached: s.store.Size()}, duration)
	return nil
}

// UserMessage turns a pipeline error into the text shown to the user.
func (s *Summarizer) UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		unavailable *backend.BackendUnavailableError
		upstream    *backend.UpstreamError
		notFound    *storage.ContextNotFoundError
	)
	msg := err.Error()

	switch {
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.Is(err, chat.ErrEmptyQuestion):
		return "Please enter a question."
	case errors.Is(err, ErrEmailDisabled):
		return "Email delivery is not configured. Set the email section in the config file."
	case errors.As(err, &unavailable):
		return "Analysis failed: Cannot connect to analysis server. Please make sure the backend server is running on " + s.backend.BaseURL()
	case strings.Contains(strings.ToLower(msg), "quota"):
		return "Analysis failed: API quota exceeded. The service has reached its daily limits. Please try again tomorrow."
	case strings.Contains(msg, "API key"):
		return "Analysis failed: API configuration issue. Please check your API keys in the backend server."
	case errors.As(err, &upstream) && upstream.Status == 429, strings.Contains(msg, "429"):
		return "Analysis failed: Rate limit exceeded. Please wait a moment before trying again."
	case errors.Is(err, backend.ErrInvalidURL):
		return "Analysis failed: Please enter a valid YouTube URL."
	default:
		return "Analysis failed: " + msg
	}
}
