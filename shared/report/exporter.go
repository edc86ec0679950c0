// Package report renders cached analyses as downloadable plain-text reports.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"video-summarizer/internal/models"
	"video-summarizer/shared/normalize"
	"video-summarizer/shared/storage"
)

const (
	filenamePrefix   = "YouTube_Analysis_"
	maxTitleInName   = 50
	banner           = "════════════════════════════════════════════════════════════════════════"
	generatorVersion = "YouTube Summarizer v2.0"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Report is an exported analysis ready to be written or mailed.
type Report struct {
	ContextID string
	VideoID   string
	Filename  string
	Content   string
}

// Exporter reads analyses from the result store and renders them.
type Exporter struct {
	store *storage.ResultStore
	now   func() time.Time
}

func NewExporter(store *storage.ResultStore) *Exporter {
	return NewExporterWithClock(store, time.Now)
}

func NewExporterWithClock(store *storage.ResultStore, now func() time.Time) *Exporter {
	return &Exporter{store: store, now: now}
}

// ExportText renders the analysis for contextID. It fails with
// *storage.ContextNotFoundError when nothing is cached under that ID.
func (e *Exporter) ExportText(contextID string) (*Report, error) {
	analysis, err := e.store.Lookup(contextID)
	if err != nil {
		return nil, err
	}
	at := e.now()
	return &Report{
		ContextID: analysis.ContextID,
		VideoID:   analysis.VideoID,
		Filename:  Filename(analysis.Title, at),
		Content:   Render(analysis, at),
	}, nil
}

// Filename builds YouTube_Analysis_<title>_<yyyy-mm-dd>.txt. Runs of
// non-alphanumeric characters become one underscore and the title part is
// cut to 50 characters.
func Filename(title string, at time.Time) string {
	safe := nonAlphanumeric.ReplaceAllString(title, "_")
	if len(safe) > maxTitleInName {
		safe = safe[:maxTitleInName]
	}
	return filenamePrefix + safe + "_" + at.UTC().Format("2006-01-02") + ".txt"
}

// Render produces the report body. The output depends only on analysis and at.
func Render(a *models.NormalizedAnalysis, at time.Time) string {
	var b strings.Builder
	section := func(heading string) {
		b.WriteString("\n")
		b.WriteString(banner)
		b.WriteString("\n\n")
		b.WriteString(heading)
		b.WriteString("\n")
	}

	b.WriteString("YOUTUBE VIDEO ANALYSIS REPORT\n")
	fmt.Fprintf(&b, "Generated on: %s at %s\n", at.Format("2006-01-02"), at.Format("15:04:05 MST"))
	b.WriteString("Analysis Source: Real YouTube API + AI Analysis\n")

	section("📺 VIDEO INFORMATION:")
	fmt.Fprintf(&b, "Title: %s\n", a.Title)
	fmt.Fprintf(&b, "Channel: %s\n", a.Channel)
	fmt.Fprintf(&b, "Duration: %s\n", a.Duration)
	fmt.Fprintf(&b, "Published: %s\n", formatPublished(a.PublishedAt))
	fmt.Fprintf(&b, "Views: %s\n", formatViews(a.ViewCount))
	fmt.Fprintf(&b, "URL: %s\n", a.SourceURL)

	section("📊 ANALYSIS OVERVIEW:")
	b.WriteString(a.Overview)
	b.WriteString("\n")

	section("🎯 MAIN POINTS:")
	writeNumbered(&b, a.MainPoints)

	section("💡 KEY TAKEAWAYS:")
	writeNumbered(&b, a.KeyTakeaways)

	if len(a.TranscriptHighlights) > 0 {
		section("⏱ TRANSCRIPT HIGHLIGHTS:")
		for _, h := range a.TranscriptHighlights {
			fmt.Fprintf(&b, "[%s] %s\n", h.Timestamp, h.Text)
		}
	}

	section("📋 METADATA:")
	fmt.Fprintf(&b, "• Topics Covered: %s\n", strings.Join(a.TopicsCovered, ", "))
	fmt.Fprintf(&b, "• Difficulty Level: %s\n", a.DifficultyLevel)
	fmt.Fprintf(&b, "• Target Audience: %s\n", a.TargetAudience)
	fmt.Fprintf(&b, "• Content Quality: %s\n", orUnknown(a.ContentRichness))
	fmt.Fprintf(&b, "• Has Transcript: %s\n", yesNo(a.HasTranscript))
	fmt.Fprintf(&b, "• AI Model Used: %s\n", orUnknown(a.ModelUsed))
	fmt.Fprintf(&b, "• Formatting Cleaned: %s\n", yesNo(a.FormattingCleaned))

	section("🤖 COMPLETE AI ANALYSIS:")
	b.WriteString(normalize.CleanText(a.RawAnalysisText))
	b.WriteString("\n")

	section("📊 TECHNICAL DETAILS:")
	fmt.Fprintf(&b, "Analysis ID: %s\n", a.ContextID)
	fmt.Fprintf(&b, "Video ID: %s\n", a.VideoID)
	fmt.Fprintf(&b, "Analysis Timestamp: %s\n", a.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Exported At: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Source: %s\n", a.Source)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Generated by %s\n", generatorVersion)
	b.WriteString("Powered by Real YouTube API + Gemini AI")

	return b.String()
}

func writeNumbered(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
}

func formatPublished(published string) string {
	if published == "" {
		return "Unknown"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, published); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return published
}

func formatViews(views int64) string {
	if views <= 0 {
		return "Unknown"
	}
	return models.FormatCount(views)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
