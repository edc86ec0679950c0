package monitoring

import (
	"fmt"
	"sync"
	"time"

	"video-summarizer/shared/logging"

	"go.uber.org/zap"
)

// Monitor tracks the outcome of health-watch runs and of analyses run in
// this process. Health follows the last run; analysis failures are counted
// but do not change it.
type Monitor struct {
	mu     sync.RWMutex
	logger *zap.Logger
	now    func() time.Time

	lastRunSuccess bool
	lastRunTime    time.Time
	lastRunSummary string
	lastError      string

	analysesSucceeded int
	analysesFailed    int
	lastAnalysisTime  time.Time
}

// Stats is a point-in-time copy of the analysis counters.
type Stats struct {
	AnalysesSucceeded int
	AnalysesFailed    int
	LastAnalysisTime  time.Time
}

func NewMonitor(logger *zap.Logger) *Monitor {
	return &Monitor{
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = m.now()
	m.lastRunSummary = summary
	m.lastError = ""
	m.mu.Unlock()

	m.logger.Info("run completed", zap.String("summary", summary), zap.Duration("took", duration))
}

// RecordPartialFailure logs a degraded run without changing health.
func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	m.logger.Warn("partial failure", zap.Error(err), zap.Duration("took", duration))
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = m.now()
	m.lastError = err.Error()
	m.mu.Unlock()

	m.logger.Error("critical failure", zap.Error(err), zap.Duration("took", duration))
}

// RecordAnalysis counts one analysis attempt; err is nil on success.
func (m *Monitor) RecordAnalysis(videoID string, err error) {
	m.mu.Lock()
	if err == nil {
		m.analysesSucceeded++
	} else {
		m.analysesFailed++
	}
	m.lastAnalysisTime = m.now()
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("analysis failed", zap.String("video_id", videoID), zap.Error(err))
	}
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // no runs yet
	}
	return m.lastRunSuccess
}

func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		AnalysesSucceeded: m.analysesSucceeded,
		AnalysesFailed:    m.analysesFailed,
		LastAnalysisTime:  m.lastAnalysisTime,
	}
}

// GetStatusSummary describes the last health-watch run. Analysis counters
// are left out: they only count analyses run by this process, which a
// serving process never does. Use Stats for them.
func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No health checks yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last check: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastRunSummary)
	}
	return fmt.Sprintf("❌ Last check failed: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastError)
}
