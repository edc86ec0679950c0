package main

import (
	"fmt"
	"strings"

	youtubesummarizer "video-summarizer/agents/youtube-summarizer"
	"video-summarizer/internal/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginTop(1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB000"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2).
			Width(88)
)

func renderAnalysis(a *models.NormalizedAnalysis, warnings []string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(a.Title))
	b.WriteString("\n")
	meta := []string{a.Channel, a.Duration}
	if a.ViewCount > 0 {
		meta = append(meta, models.FormatCount(a.ViewCount)+" views")
	}
	b.WriteString(infoStyle.Render(strings.Join(meta, " · ")))
	b.WriteString("\n")

	for _, w := range warnings {
		b.WriteString(warnStyle.Render("⚠ " + w))
		b.WriteString("\n")
	}

	var body strings.Builder
	body.WriteString(headingStyle.Render("Overview"))
	body.WriteString("\n" + a.Overview + "\n\n")
	body.WriteString(headingStyle.Render("Main points"))
	body.WriteString("\n" + bullets(a.MainPoints) + "\n\n")
	body.WriteString(headingStyle.Render("Key takeaways"))
	body.WriteString("\n" + bullets(a.KeyTakeaways) + "\n\n")
	if len(a.TranscriptHighlights) > 0 {
		body.WriteString(headingStyle.Render("Highlights"))
		body.WriteString("\n")
		for _, h := range a.TranscriptHighlights {
			body.WriteString(fmt.Sprintf("[%s] %s\n", h.Timestamp, h.Text))
		}
		body.WriteString("\n")
	}
	body.WriteString(infoStyle.Render(fmt.Sprintf("Audience: %s | Level: %s | Topics: %s",
		a.TargetAudience, a.DifficultyLevel, strings.Join(a.TopicsCovered, ", "))))

	b.WriteString(boxStyle.Render(body.String()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render("Context ID: " + a.ContextID))
	b.WriteString("\n")
	return b.String()
}

func renderStatus(st youtubesummarizer.APIStatus) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Backend status"))
	b.WriteString("\n")
	if st.BackendAvailable {
		b.WriteString(statusStyle.Render("✓ Backend available at " + st.BackendURL))
	} else {
		b.WriteString(errorStyle.Render("✗ Backend not available at " + st.BackendURL))
		if st.Error != "" {
			b.WriteString("\n" + infoStyle.Render(st.Error))
		}
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Gemini API:   %s\n", check(st.GeminiAPI)))
	b.WriteString(fmt.Sprintf("YouTube API:  %s\n", check(st.YouTubeAPI)))
	b.WriteString(fmt.Sprintf("Features:     %s\n", strings.Join(st.Features, ", ")))
	b.WriteString(fmt.Sprintf("Cached:       %d analyses\n", st.CachedAnalyses))
	b.WriteString(fmt.Sprintf("Retry:        %d retries, %s base, %s max, x%.1f\n",
		st.RetryPolicy.MaxRetries, st.RetryPolicy.BaseDelay, st.RetryPolicy.MaxDelay, st.RetryPolicy.Multiplier))
	b.WriteString(infoStyle.Render("Checked " + st.LastCheck.Format("2006-01-02 15:04:05")))
	b.WriteString("\n")
	return b.String()
}

func bullets(items []string) string {
	if len(items) == 0 {
		return infoStyle.Render("(none)")
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

func check(ok bool) string {
	if ok {
		return statusStyle.Render("configured")
	}
	return warnStyle.Render("not configured")
}
