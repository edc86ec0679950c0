package ai

import (
	"fmt"
	"strings"

	"video-summarizer/internal/models"
	"video-summarizer/shared/normalize"
)

const maxAnalysisChars = 8000

const answerInstructions = `You are an assistant that answers follow-up questions about a YouTube video.
You are given an analysis of the video produced earlier. Answer using only that analysis.
If the analysis does not cover the question, say so briefly instead of guessing.
Reply in plain text without markdown emphasis or asterisks.`

// buildAnalysisContext renders the cached analysis as the grounding message
// sent ahead of the conversation.
func buildAnalysisContext(a *models.NormalizedAnalysis) string {
	views := "unknown"
	if a.ViewCount > 0 {
		views = models.FormatCount(a.ViewCount)
	}

	return fmt.Sprintf(`VIDEO ANALYSIS (context %s)

Title: %s
Channel: %s
Duration: %s
Published: %s
Views: %s
Difficulty: %s
Target audience: %s
Topics: %s
Has transcript: %t

OVERVIEW:
%s

MAIN POINTS:
%s

KEY TAKEAWAYS:
%s

FULL ANALYSIS:
%s`,
		a.ContextID,
		a.Title,
		a.Channel,
		a.Duration,
		a.PublishedAt,
		views,
		a.DifficultyLevel,
		a.TargetAudience,
		strings.Join(a.TopicsCovered, ", "),
		a.HasTranscript,
		a.Overview,
		bulletList(a.MainPoints),
		bulletList(a.KeyTakeaways),
		truncateString(normalize.CleanText(a.RawAnalysisText), maxAnalysisChars),
	)
}

// conversationTurns drops error turns; they were never seen by a model.
func conversationTurns(history []models.ChatTurn) []models.ChatTurn {
	turns := make([]models.ChatTurn, 0, len(history))
	for _, turn := range history {
		if turn.Role == models.ChatRoleError || strings.TrimSpace(turn.Content) == "" {
			continue
		}
		turns = append(turns, turn)
	}
	return turns
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	return "- " + strings.Join(items, "\n- ")
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength]) + "..."
}
