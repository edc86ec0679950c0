package chat

import (
	"context"
	"fmt"
	"strings"

	"video-summarizer/internal/models"
)

const downloadAnswer = "You can download the complete analysis as a text file with the export command. The file will include:\n\n" +
	"• Complete video analysis\n" +
	"• Video metadata (title, channel, views, etc.)\n" +
	"• All key points and takeaways\n" +
	"• Analysis quality information\n" +
	"• Timestamp of analysis"

// TemplateResponder answers from the cached analysis alone by matching
// keywords in the question. History is accepted but not used.
type TemplateResponder struct{}

func (TemplateResponder) Respond(_ context.Context, a *models.NormalizedAnalysis, question string, _ []models.ChatTurn) (string, error) {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "main") && strings.Contains(q, "point"):
		points := a.MainPoints
		if len(points) > 4 {
			points = points[:4]
		}
		return fmt.Sprintf("Based on the analysis of %q:\n\n%s", a.Title, numbered(points, "\n\n")), nil

	case strings.Contains(q, "summary") || strings.Contains(q, "summarize"):
		return fmt.Sprintf("Here's what the video %q by %s covers:\n\n%s\n\nThis %s-level content has %s.",
			a.Title, a.Channel, a.Overview, a.DifficultyLevel,
			pick(a.HasTranscript, "full transcript analysis", "metadata-based analysis")), nil

	case strings.Contains(q, "takeaway") || strings.Contains(q, "remember"):
		return fmt.Sprintf("Key takeaways from %q:\n\n%s", a.Title, numbered(a.KeyTakeaways, "\n\n")), nil

	case strings.Contains(q, "download") || strings.Contains(q, "save"):
		return downloadAnswer, nil

	case strings.Contains(q, "formatting") || strings.Contains(q, "clean"):
		return fmt.Sprintf("The analysis for %q uses clean formatting without asterisks or markdown. "+
			"The AI analysis is structured with clear sections and readable text. %s",
			a.Title,
			pick(a.FormattingCleaned,
				"Formatting has been automatically cleaned by the backend.",
				"This analysis uses the standard formatting approach.")), nil
	}

	source := "by " + a.Channel
	if a.ViewCount > 0 {
		source = models.FormatCount(a.ViewCount) + " views"
	}
	answer := fmt.Sprintf("Regarding %q (%s):\n\n%s\n\nThis analysis was generated using real YouTube data and %s.",
		a.Title, source, a.Overview,
		pick(a.HasTranscript, "includes full transcript analysis", "video metadata"))
	if a.FormattingCleaned {
		answer += " The analysis includes clean, asterisk-free formatting for better readability."
	}
	return answer, nil
}

func numbered(items []string, sep string) string {
	if len(items) == 0 {
		return "No items were extracted for this video."
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, sep)
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
