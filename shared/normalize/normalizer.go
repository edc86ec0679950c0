// Package normalize turns raw backend payloads into the fixed display model.
// Normalization never fails: missing or malformed sections fall back to
// heuristic extraction from the free-text summary.
package normalize

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"video-summarizer/internal/models"
)

const (
	maxMainPoints   = 6
	maxTakeaways    = 4
	overviewPreview = 300

	bulletMinLen   = 15
	pointMinLen    = 30
	takeawayMinLen = 40
	overviewMinLen = 30

	DefaultOverview = "This video provides comprehensive coverage of the topic with detailed analysis and insights."
	DefaultAudience = "General audience interested in the topic"
	DefaultTitle    = "Untitled Video"
	DefaultChannel  = "Unknown Channel"
	DefaultDuration = "Unknown"
)

var (
	topicVocabulary = []string{"education", "tutorial", "analysis", "guide", "tips", "review", "explanation"}
	defaultTopics   = []string{"video content", "educational material"}

	beginnerCues = []string{"beginner", "basic", "introduction"}
	advancedCues = []string{"advanced", "expert", "complex"}
)

// Normalizer builds NormalizedAnalysis values and issues their context IDs.
type Normalizer struct {
	now func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

func New() *Normalizer {
	return NewWithClock(time.Now)
}

// NewWithClock is New with an injected clock.
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize converts payload for the given video. A nil payload yields an
// analysis made entirely of defaults.
func (n *Normalizer) Normalize(payload *models.RawAnalysisPayload, video models.VideoReference) *models.NormalizedAnalysis {
	if payload == nil {
		payload = &models.RawAnalysisPayload{}
	}
	createdAt, stamp := n.stamp()

	meta := payload.VideoMetadata
	summary := payload.Summary

	var overview, audience string
	var mainPoints, takeaways []string
	if !payload.StructuredSections.IsEmpty() {
		overview, mainPoints, takeaways, audience = fromStructured(payload.StructuredSections, summary)
	} else {
		overview, mainPoints, takeaways, audience = fromFreeText(summary)
	}

	corpus := searchCorpus(summary, payload.StructuredSections)

	return &models.NormalizedAnalysis{
		ContextID:    fmt.Sprintf("ctx_%s_%d", video.VideoID, stamp),
		VideoID:      video.VideoID,
		Title:        orDefault(meta.Title, DefaultTitle),
		Channel:      orDefault(meta.Channel, DefaultChannel),
		Duration:     orDefault(meta.Duration, DefaultDuration),
		ThumbnailURL: video.ThumbnailURL(),
		PublishedAt:  strings.TrimSpace(meta.Published),
		ViewCount:    int64(meta.Views),
		SourceURL:    video.SourceURL,

		Overview:             overview,
		MainPoints:           mainPoints,
		KeyTakeaways:         takeaways,
		TranscriptHighlights: highlights(payload.TranscriptSegments),

		TopicsCovered:     topics(corpus),
		DifficultyLevel:   difficulty(corpus),
		TargetAudience:    audience,
		HasTranscript:     payload.AnalysisQuality.HasTranscript,
		ContentRichness:   payload.AnalysisQuality.ContentRichness,
		FormattingCleaned: payload.AnalysisQuality.FormattingCleaned,
		ModelUsed:         payload.ModelUsed,

		RawAnalysisText: summary,
		Source:          models.SourceBackendAPI,
		CreatedAt:       createdAt,
	}
}

// stamp returns the creation time and a millisecond stamp that is strictly
// increasing across calls, so two analyses of one video in the same
// millisecond still get distinct context IDs.
func (n *Normalizer) stamp() (time.Time, int64) {
	now := n.now()
	ms := now.UnixMilli()

	n.mu.Lock()
	defer n.mu.Unlock()
	if ms <= n.lastStamp {
		ms = n.lastStamp + 1
	}
	n.lastStamp = ms
	return now.UTC(), ms
}

func fromStructured(s *models.StructuredSections, summary string) (overview string, points, takeaways []string, audience string) {
	overview = firstNonEmpty(cleanLine(s.Overview), cleanLine(s.Summary))
	if overview == "" {
		overview = heuristicOverview(segment(summary))
	}

	for _, p := range s.KeyPoints {
		if p = cleanLine(p); p != "" {
			points = append(points, p)
		}
	}
	if len(points) > maxMainPoints {
		points = points[:maxMainPoints]
	}
	if len(points) == 0 {
		points = sentences(summary, pointMinLen, maxMainPoints)
	}

	if insight := collapseSpaces(stripEmphasis(stripGlyphs(s.Insights))); insight != "" {
		takeaways = []string{insight}
	} else {
		takeaways = sentences(summary, takeawayMinLen, maxTakeaways)
	}

	audience = collapseSpaces(stripEmphasis(s.Audience))
	if audience == "" {
		audience = heuristicAudience(segment(summary))
	}
	return overview, points, takeaways, audience
}

func fromFreeText(summary string) (overview string, points, takeaways []string, audience string) {
	sections := segment(summary)

	overview = heuristicOverview(sections)

	for _, sec := range sections {
		switch sec.kind {
		case sectionKeyPoints:
			points = append(points, listItems(sec.lines, pointMinLen)...)
		case sectionInsights:
			takeaways = append(takeaways, listItems(sec.lines, takeawayMinLen)...)
		}
	}
	if len(points) == 0 {
		points = sentences(summary, pointMinLen, maxMainPoints)
	}
	if len(takeaways) == 0 {
		takeaways = sentences(summary, takeawayMinLen, maxTakeaways)
	}
	if len(points) > maxMainPoints {
		points = points[:maxMainPoints]
	}
	if len(takeaways) > maxTakeaways {
		takeaways = takeaways[:maxTakeaways]
	}

	return overview, points, takeaways, heuristicAudience(sections)
}

// heuristicOverview takes the first line of an overview section, then the
// first long body line, then a preview of all body lines. Heading lines are
// not part of the body, so a summary made only of headings gets the default.
func heuristicOverview(sections []section) string {
	for _, sec := range sections {
		if sec.kind != sectionOverview {
			continue
		}
		for _, line := range sec.lines {
			if cleaned := cleanLine(line); cleaned != "" {
				return cleaned
			}
		}
	}

	var body []string
	for _, sec := range sections {
		for _, line := range sec.lines {
			cleaned := cleanLine(bulletPattern.ReplaceAllString(strings.TrimSpace(line), ""))
			if runeLen(cleaned) > overviewMinLen {
				return cleaned
			}
			if cleaned != "" {
				body = append(body, cleaned)
			}
		}
	}

	if preview := strings.Join(body, " "); preview != "" {
		if runeLen(preview) > overviewPreview {
			return truncateRunes(preview, overviewPreview) + "..."
		}
		return preview
	}
	return DefaultOverview
}

// listItems keeps bullet lines of any length and plain lines longer than
// bulletMinLen. Without any, the section falls back to sentences longer
// than sentenceMin.
func listItems(lines []string, sentenceMin int) []string {
	var items []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(stripGlyphs(line))
		if bulletPattern.MatchString(trimmed) {
			if item := cleanLine(bulletPattern.ReplaceAllString(trimmed, "")); item != "" {
				items = append(items, item)
			}
			continue
		}
		if item := cleanLine(trimmed); runeLen(item) > bulletMinLen {
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		return items
	}
	return sentences(strings.Join(lines, "\n"), sentenceMin, maxMainPoints)
}

func heuristicAudience(sections []section) string {
	for _, sec := range sections {
		if sec.kind != sectionAudience {
			continue
		}
		var parts []string
		for _, line := range sec.lines {
			if cleaned := cleanLine(bulletPattern.ReplaceAllString(strings.TrimSpace(line), "")); cleaned != "" {
				parts = append(parts, cleaned)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return DefaultAudience
}

func highlights(segments []models.CaptionSegment) []models.TranscriptHighlight {
	out := []models.TranscriptHighlight{}
	for _, seg := range segments {
		text := collapseSpaces(seg.Text)
		if text == "" {
			continue
		}
		out = append(out, models.TranscriptHighlight{
			Timestamp: FormatTimestamp(seg.Start),
			Text:      text,
		})
	}
	return out
}

// FormatTimestamp renders seconds as m:ss.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func searchCorpus(summary string, s *models.StructuredSections) string {
	parts := []string{summary}
	if s != nil {
		parts = append(parts, s.Overview, s.Summary, s.Insights, s.Audience)
		parts = append(parts, s.KeyPoints...)
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}

func topics(corpus string) []string {
	var found []string
	for _, topic := range topicVocabulary {
		if strings.Contains(corpus, topic) {
			found = append(found, topic)
		}
	}
	if len(found) == 0 {
		return append([]string(nil), defaultTopics...)
	}
	return found
}

func difficulty(corpus string) models.DifficultyLevel {
	switch {
	case containsAny(corpus, beginnerCues):
		return models.DifficultyBeginner
	case containsAny(corpus, advancedCues):
		return models.DifficultyAdvanced
	default:
		return models.DifficultyIntermediate
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
