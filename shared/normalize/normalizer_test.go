package normalize

import (
	"strings"
	"testing"
	"time"

	"video-summarizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var testVideo = models.VideoReference{VideoID: "abc12345678", SourceURL: "https://youtu.be/abc12345678"}

func TestNormalizeContainersScenario(t *testing.T) {
	payload := &models.RawAnalysisPayload{
		Summary: "🎬 Video Overview\nThis video explains containers.\n🔑 Key Points\n- Isolation\n- Portability\n💡 Insights\nUse containers for reproducibility.",
		VideoMetadata: models.VideoMetadata{
			Title:     "Containers 101",
			Channel:   "DevCh",
			Duration:  "10:00",
			Published: "2024-01-01",
			Views:     1000,
		},
	}

	got := NewWithClock(fixedClock).Normalize(payload, testVideo)

	assert.Contains(t, got.Overview, "containers")
	assert.Contains(t, got.MainPoints, "Isolation")
	assert.Contains(t, got.MainPoints, "Portability")
	assert.Contains(t, got.KeyTakeaways, "Use containers for reproducibility.")
	assert.Equal(t, "Containers 101", got.Title)
	assert.Equal(t, "DevCh", got.Channel)
	assert.Equal(t, int64(1000), got.ViewCount)
	assert.Equal(t, "https://img.youtube.com/vi/abc12345678/maxresdefault.jpg", got.ThumbnailURL)
	assert.Equal(t, DefaultAudience, got.TargetAudience)
	assert.Equal(t, models.DifficultyIntermediate, got.DifficultyLevel)
	assert.Equal(t, []string{"video content", "educational material"}, got.TopicsCovered)
	assert.Equal(t, models.SourceBackendAPI, got.Source)
	assert.Equal(t, payload.Summary, got.RawAnalysisText)
	assert.Empty(t, got.TranscriptHighlights)
	assert.NotNil(t, got.TranscriptHighlights)
}

func TestNormalizeContextID(t *testing.T) {
	n := NewWithClock(fixedClock)

	first := n.Normalize(&models.RawAnalysisPayload{}, testVideo)
	second := n.Normalize(&models.RawAnalysisPayload{}, testVideo)

	assert.Equal(t, "ctx_abc12345678_1709294400000", first.ContextID)
	assert.Equal(t, "ctx_abc12345678_1709294400001", second.ContextID)
	assert.Equal(t, fixedNow, first.CreatedAt)
}

func TestNormalizeAlwaysHasOverview(t *testing.T) {
	long := strings.Repeat("word ", 100)
	tests := []struct {
		name    string
		payload *models.RawAnalysisPayload
		want    string
	}{
		{"nil payload", nil, DefaultOverview},
		{"empty summary", &models.RawAnalysisPayload{}, DefaultOverview},
		{"whitespace summary", &models.RawAnalysisPayload{Summary: "  \n\t "}, DefaultOverview},
		{"short text", &models.RawAnalysisPayload{Summary: "Quick demo."}, "Quick demo."},
		{"long line", &models.RawAnalysisPayload{Summary: "intro\nThis is a sufficiently long first line of prose.\nmore"}, "This is a sufficiently long first line of prose."},
		{"long unbroken text", &models.RawAnalysisPayload{Summary: "short\n" + long}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWithClock(fixedClock).Normalize(tt.payload, testVideo)
			require.NotEmpty(t, got.Overview)
			if tt.want != "" {
				assert.Equal(t, tt.want, got.Overview)
			}
		})
	}
}

func TestNormalizeDefaultsMetadata(t *testing.T) {
	got := NewWithClock(fixedClock).Normalize(nil, testVideo)

	assert.Equal(t, DefaultTitle, got.Title)
	assert.Equal(t, DefaultChannel, got.Channel)
	assert.Equal(t, DefaultDuration, got.Duration)
	assert.Zero(t, got.ViewCount)
}

func TestNormalizePreviewTruncation(t *testing.T) {
	text := strings.Repeat("abcdefghij", 40) // one 400-char line with no sentence breaks
	got := NewWithClock(fixedClock).Normalize(&models.RawAnalysisPayload{Summary: "x\n" + text}, testVideo)

	// The long line itself is the first line over the threshold.
	assert.Equal(t, text, got.Overview)

	overview := heuristicOverview(segment("short words only"))
	assert.Equal(t, "short words only", overview)

	overview = heuristicOverview(segment(strings.Repeat("ab\n", 200)))
	assert.True(t, strings.HasSuffix(overview, "..."))
	assert.Equal(t, overviewPreview+3, runeLen(overview))
}

func TestNormalizeHeadingsOnlyUsesDefaultOverview(t *testing.T) {
	payload := &models.RawAnalysisPayload{Summary: "🎬 Video Overview\n\n🔑 Key Points\n"}

	got := NewWithClock(fixedClock).Normalize(payload, testVideo)

	assert.Equal(t, DefaultOverview, got.Overview)
}

func TestNormalizePreviewSkipsHeadings(t *testing.T) {
	payload := &models.RawAnalysisPayload{Summary: "🔑 Key Points\n- Isolation\n- Portability"}

	got := NewWithClock(fixedClock).Normalize(payload, testVideo)

	assert.Equal(t, "Isolation Portability", got.Overview)
	assert.Equal(t, []string{"Isolation", "Portability"}, got.MainPoints)
}

func TestNormalizeSingleLineSummary(t *testing.T) {
	summary := "🎬 Overview: This video explains how containers work. " +
		"🔑 Key Points: Containers isolate processes from each other. " +
		"💡 Key Takeaways: Reproducible deployments come from pinning every dependency."

	got := NewWithClock(fixedClock).Normalize(&models.RawAnalysisPayload{Summary: summary}, testVideo)

	assert.Equal(t, "This video explains how containers work.", got.Overview)
	assert.Equal(t, []string{"Containers isolate processes from each other."}, got.MainPoints)
	assert.Equal(t, []string{"Reproducible deployments come from pinning every dependency."}, got.KeyTakeaways)
}

func TestNormalizeStructuredSections(t *testing.T) {
	payload := &models.RawAnalysisPayload{
		Summary: "A beginner friendly tutorial on Go.",
		StructuredSections: &models.StructuredSections{
			Overview:  "Go **basics** explained",
			KeyPoints: []string{"one point", "two point", "three", "four", "five", "six", "seven"},
			Insights:  "Practice daily",
			Audience:  "New programmers",
		},
	}

	got := NewWithClock(fixedClock).Normalize(payload, testVideo)

	assert.Equal(t, "Go basics explained", got.Overview)
	assert.Equal(t, []string{"one point", "two point", "three", "four", "five", "six"}, got.MainPoints)
	assert.Equal(t, []string{"Practice daily"}, got.KeyTakeaways)
	assert.Equal(t, "New programmers", got.TargetAudience)
	assert.Equal(t, models.DifficultyBeginner, got.DifficultyLevel)
	assert.Equal(t, []string{"tutorial"}, got.TopicsCovered)
}

func TestNormalizeStructuredFallbacks(t *testing.T) {
	payload := &models.RawAnalysisPayload{
		Summary: "This advanced session covers distributed consensus protocols in depth. " +
			"It compares leader election strategies used by modern databases and queues.\n" +
			"👥 Target Audience\nBackend engineers",
		StructuredSections: &models.StructuredSections{
			Summary: "Consensus deep dive",
		},
	}

	got := NewWithClock(fixedClock).Normalize(payload, testVideo)

	assert.Equal(t, "Consensus deep dive", got.Overview)
	require.NotEmpty(t, got.MainPoints)
	assert.Equal(t, "This advanced session covers distributed consensus protocols in depth", got.MainPoints[0])
	require.NotEmpty(t, got.KeyTakeaways)
	assert.Equal(t, "Backend engineers", got.TargetAudience)
	assert.Equal(t, models.DifficultyAdvanced, got.DifficultyLevel)
}

func TestNormalizeEmptyStructuredSectionsUsesFreeText(t *testing.T) {
	payload := &models.RawAnalysisPayload{
		Summary:            "📋 Summary\nA walkthrough of the review process.",
		StructuredSections: &models.StructuredSections{},
	}

	got := NewWithClock(fixedClock).Normalize(payload, testVideo)

	assert.Equal(t, "A walkthrough of the review process.", got.Overview)
	assert.Equal(t, []string{"review"}, got.TopicsCovered)
}

func TestNormalizeFreeTextCaps(t *testing.T) {
	var b strings.Builder
	b.WriteString("🔑 Key Points\n")
	for i := 0; i < 9; i++ {
		b.WriteString("- point number that is long enough\n")
	}
	b.WriteString("💡 Key Insights\n")
	for i := 0; i < 6; i++ {
		b.WriteString("* insight line that is long enough\n")
	}

	got := NewWithClock(fixedClock).Normalize(&models.RawAnalysisPayload{Summary: b.String()}, testVideo)

	assert.Len(t, got.MainPoints, maxMainPoints)
	assert.Len(t, got.KeyTakeaways, maxTakeaways)
	assert.Equal(t, "insight line that is long enough", got.KeyTakeaways[0])
}

func TestNormalizeSentenceFallback(t *testing.T) {
	summary := "Short. This sentence has thirty-five chars! " +
		"And this second one is also long enough to count as a point? Tiny."

	got := NewWithClock(fixedClock).Normalize(&models.RawAnalysisPayload{Summary: summary}, testVideo)

	assert.Equal(t, []string{
		"This sentence has thirty-five chars",
		"And this second one is also long enough to count as a point",
	}, got.MainPoints)
	assert.Equal(t, []string{"And this second one is also long enough to count as a point"}, got.KeyTakeaways)
}

func TestNormalizeAudienceSection(t *testing.T) {
	summary := "🎬 Overview\nA talk.\n👥 **Target Audience**\nStudents and\nhobbyists\n⭐ Rating\n5 stars"

	got := NewWithClock(fixedClock).Normalize(&models.RawAnalysisPayload{Summary: summary}, testVideo)

	assert.Equal(t, "Students and hobbyists", got.TargetAudience)
	assert.Equal(t, "A talk.", got.Overview)
}

func TestNormalizeHighlights(t *testing.T) {
	payload := &models.RawAnalysisPayload{
		TranscriptSegments: []models.CaptionSegment{
			{Start: 5, Text: "Welcome"},
			{Start: 150.7, Text: "  The  main   idea "},
			{Start: 765, Text: ""},
			{Start: 3725, Text: "Wrap up"},
		},
	}

	got := NewWithClock(fixedClock).Normalize(payload, testVideo)

	assert.Equal(t, []models.TranscriptHighlight{
		{Timestamp: "0:05", Text: "Welcome"},
		{Timestamp: "2:30", Text: "The main idea"},
		{Timestamp: "62:05", Text: "Wrap up"},
	}, got.TranscriptHighlights)
}

func TestQualityCarriedThrough(t *testing.T) {
	payload := &models.RawAnalysisPayload{
		ModelUsed:       "gemini-1.5-flash",
		AnalysisQuality: models.AnalysisQuality{ContentRichness: "high", HasTranscript: true, FormattingCleaned: true},
	}

	got := NewWithClock(fixedClock).Normalize(payload, testVideo)

	assert.True(t, got.HasTranscript)
	assert.True(t, got.FormattingCleaned)
	assert.Equal(t, "high", got.ContentRichness)
	assert.Equal(t, "gemini-1.5-flash", got.ModelUsed)
}

func TestTopicsAndDifficulty(t *testing.T) {
	tests := []struct {
		text       string
		wantTopics []string
		wantLevel  models.DifficultyLevel
	}{
		{"An Introduction guide with tips", []string{"guide", "tips"}, models.DifficultyBeginner},
		{"Expert REVIEW and analysis", []string{"analysis", "review"}, models.DifficultyAdvanced},
		{"basic but complex", []string{"video content", "educational material"}, models.DifficultyBeginner},
		{"cooking show", []string{"video content", "educational material"}, models.DifficultyIntermediate},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			corpus := searchCorpus(tt.text, nil)
			assert.Equal(t, tt.wantTopics, topics(corpus))
			assert.Equal(t, tt.wantLevel, difficulty(corpus))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "0:00", FormatTimestamp(-3))
	assert.Equal(t, "0:09", FormatTimestamp(9.99))
	assert.Equal(t, "8:15", FormatTimestamp(495))
}

func TestCleanText(t *testing.T) {
	in := "**Bold** title\n\n\n\nSome   *emphasis*  here\t\twith tabs\n\n\n* bullet"
	assert.Equal(t, "Bold title\n\nSome emphasis here with tabs\n\nbullet", CleanText(in))
}

func TestSegmentHeadings(t *testing.T) {
	text := "Preamble line\n## Key Points:\n- a\n🎯 Main Points\n- b\n📚 Resources\nlink\nSummary: inline overview"
	secs := segment(text)

	require.Len(t, secs, 5)
	assert.Equal(t, sectionPreamble, secs[0].kind)
	assert.Equal(t, sectionKeyPoints, secs[1].kind)
	assert.Equal(t, sectionKeyPoints, secs[2].kind)
	assert.Equal(t, sectionOther, secs[3].kind)
	assert.Equal(t, []string{"Resources", "link"}, secs[3].lines)
	assert.Equal(t, sectionOverview, secs[4].kind)
	assert.Equal(t, []string{"inline overview"}, secs[4].lines)
}

func TestSplitAtGlyphs(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"no glyph", "plain text", []string{"plain text"}},
		{"leading glyph", "🔑 Key Points", []string{"🔑 Key Points"}},
		{"decorated heading", "## **🔑 Key Points**", []string{"## **🔑 Key Points**"}},
		{"inline glyph", "intro 💡 tip", []string{"intro ", "💡 tip"}},
		{"several glyphs", "🎬 a 🔑 b 💡 c", []string{"🎬 a ", "🔑 b ", "💡 c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitAtGlyphs(tt.line))
		})
	}
}
