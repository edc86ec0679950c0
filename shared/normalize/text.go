package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	glyphReplacer = strings.NewReplacer(
		"🎬", "", "🎯", "", "🔑", "", "💡", "", "👥", "", "📚", "", "⭐", "", "📋", "", "\ufe0f", "",
	)

	boldPattern        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	asteriskPattern    = regexp.MustCompile(`\*+`)
	underscoreEmphasis = regexp.MustCompile(`__([^_]+)__`)
	headingHashes      = regexp.MustCompile(`^#+\s*`)
	bulletPattern      = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)
	sentenceSplit      = regexp.MustCompile(`[.!?]+`)
	horizontalSpace    = regexp.MustCompile(`[ \t\f\v]+`)
	spaceAroundNewline = regexp.MustCompile(` *\n *`)
	blankLineRuns      = regexp.MustCompile(`\n{3,}`)
)

func stripGlyphs(s string) string {
	return glyphReplacer.Replace(s)
}

func stripEmphasis(s string) string {
	s = boldPattern.ReplaceAllString(s, "$1")
	s = underscoreEmphasis.ReplaceAllString(s, "$1")
	return asteriskPattern.ReplaceAllString(s, "")
}

// cleanLine removes glyphs, heading hashes and emphasis from a single line.
func cleanLine(line string) string {
	line = strings.TrimSpace(stripGlyphs(line))
	line = headingHashes.ReplaceAllString(line, "")
	return collapseSpaces(stripEmphasis(line))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// sentences splits text on terminal punctuation and keeps pieces longer than
// minLen runes, at most limit of them.
func sentences(text string, minLen, limit int) []string {
	text = stripEmphasis(stripGlyphs(text))
	var out []string
	for _, piece := range sentenceSplit.Split(text, -1) {
		piece = collapseSpaces(piece)
		if runeLen(piece) <= minLen {
			continue
		}
		out = append(out, piece)
		if len(out) == limit {
			break
		}
	}
	return out
}

// CleanText strips emphasis markup from an analysis and collapses runs of
// spaces and blank lines. Line structure is kept.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = stripEmphasis(text)
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceAroundNewline.ReplaceAllString(text, "\n")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
