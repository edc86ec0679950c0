package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RawAnalysisPayload is the JSON body returned by POST /api/summarize.
type RawAnalysisPayload struct {
	Summary            string              `json:"summary"`
	StructuredSections *StructuredSections `json:"structured_sections,omitempty"`
	VideoMetadata      VideoMetadata       `json:"video_metadata"`
	ModelUsed          string              `json:"model_used"`
	AnalysisQuality    AnalysisQuality     `json:"analysis_quality"`
	TranscriptSegments []CaptionSegment    `json:"transcript_segments,omitempty"`
}

// StructuredSections is the optional pre-parsed breakdown of the summary.
type StructuredSections struct {
	Overview  string   `json:"overview,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	KeyPoints []string `json:"keyPoints,omitempty"`
	Insights  string   `json:"insights,omitempty"`
	Audience  string   `json:"audience,omitempty"`
}

// IsEmpty reports whether no section carries content.
func (s *StructuredSections) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.Overview == "" && s.Summary == "" && len(s.KeyPoints) == 0 && s.Insights == "" && s.Audience == ""
}

type VideoMetadata struct {
	Title     string    `json:"title"`
	Channel   string    `json:"channel"`
	Duration  string    `json:"duration"`
	Published string    `json:"published"`
	Views     ViewCount `json:"views,omitempty"`
}

// ViewCount accepts a JSON number or a string such as "1,234". Anything it
// cannot read decodes to zero rather than failing the whole payload.
type ViewCount int64

func (v *ViewCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*v = 0
			return nil
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*v = ViewCount(n)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 {
		*v = ViewCount(f)
		return nil
	}
	*v = 0
	return nil
}

type AnalysisQuality struct {
	ContentRichness   string `json:"content_richness,omitempty"`
	HasTranscript     bool   `json:"has_transcript"`
	FormattingCleaned bool   `json:"formatting_cleaned"`
}

// CaptionSegment is one timed caption; Start is in seconds.
type CaptionSegment struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

// TranscriptHighlight is a timestamp-anchored excerpt shown for navigation.
type TranscriptHighlight struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// SourceBackendAPI tags analyses produced from the summarization backend.
const SourceBackendAPI = "real_backend_api"

// NormalizedAnalysis is the display model of one completed analysis.
// Values are treated as immutable once created; use Clone before handing
// a copy to code that may modify it.
type NormalizedAnalysis struct {
	ContextID    string `json:"context_id"`
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	Duration     string `json:"duration"`
	ThumbnailURL string `json:"thumbnail"`
	PublishedAt  string `json:"published_at"`
	ViewCount    int64  `json:"view_count"`
	SourceURL    string `json:"url"`

	Overview             string                `json:"overview"`
	MainPoints           []string              `json:"main_points"`
	KeyTakeaways         []string              `json:"key_takeaways"`
	TranscriptHighlights []TranscriptHighlight `json:"transcript_highlights"`

	TopicsCovered     []string        `json:"topics_covered"`
	DifficultyLevel   DifficultyLevel `json:"difficulty_level"`
	TargetAudience    string          `json:"target_audience"`
	HasTranscript     bool            `json:"has_transcript"`
	ContentRichness   string          `json:"content_richness,omitempty"`
	FormattingCleaned bool            `json:"formatting_cleaned"`
	ModelUsed         string          `json:"model_used"`

	RawAnalysisText string    `json:"raw_analysis"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"analysis_timestamp"`
}

// Clone returns a deep copy.
func (a *NormalizedAnalysis) Clone() *NormalizedAnalysis {
	if a == nil {
		return nil
	}
	c := *a
	c.MainPoints = cloneStrings(a.MainPoints)
	c.KeyTakeaways = cloneStrings(a.KeyTakeaways)
	c.TopicsCovered = cloneStrings(a.TopicsCovered)
	if a.TranscriptHighlights != nil {
		c.TranscriptHighlights = make([]TranscriptHighlight, len(a.TranscriptHighlights))
		copy(c.TranscriptHighlights, a.TranscriptHighlights)
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// FormatCount renders n with thousands separators, e.g. 1,234,567.
func FormatCount(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
