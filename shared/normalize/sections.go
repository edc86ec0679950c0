package normalize

import (
	"strings"
	"unicode/utf8"
)

type sectionKind int

const (
	sectionPreamble sectionKind = iota
	sectionOverview
	sectionKeyPoints
	sectionInsights
	sectionAudience
	sectionOther
)

type section struct {
	kind  sectionKind
	lines []string
}

var sectionGlyphs = []struct {
	glyph string
	kind  sectionKind
}{
	{"🎬", sectionOverview},
	{"📋", sectionOverview},
	{"🔑", sectionKeyPoints},
	{"💡", sectionInsights},
	{"👥", sectionAudience},
	{"🎯", sectionOther},
	{"📚", sectionOther},
	{"⭐", sectionOther},
}

// Longer keywords come first so "key takeaways" wins over "takeaways".
var sectionKeywords = []struct {
	keyword string
	kind    sectionKind
}{
	{"video overview", sectionOverview},
	{"overview", sectionOverview},
	{"summary", sectionOverview},
	{"key points", sectionKeyPoints},
	{"main points", sectionKeyPoints},
	{"key takeaways", sectionInsights},
	{"takeaways", sectionKeyPoints},
	{"key insights", sectionInsights},
	{"insights", sectionInsights},
	{"lessons", sectionInsights},
	{"target audience", sectionAudience},
	{"audience", sectionAudience},
}

// segment splits free text into sections at glyph headings ("🔑 Key Points")
// and at bare keyword headings ("Key Points:"). A glyph in the middle of a
// line opens a new section there. Text before the first heading lands in a
// preamble section.
func segment(text string) []section {
	var out []section
	cur := section{kind: sectionPreamble}
	flush := func() {
		if cur.kind != sectionPreamble || len(cur.lines) > 0 {
			out = append(out, cur)
		}
	}

	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		lines = append(lines, splitAtGlyphs(line)...)
	}

	for _, line := range lines {
		if kind, rest, ok := parseHeading(line); ok {
			flush()
			cur = section{kind: kind}
			if rest != "" {
				cur.lines = append(cur.lines, rest)
			}
			continue
		}
		if strings.TrimSpace(line) != "" {
			cur.lines = append(cur.lines, line)
		}
	}
	flush()
	return out
}

// splitAtGlyphs breaks line before every section glyph that has text ahead
// of it. Heading decoration such as "## " or "**" does not count as text.
func splitAtGlyphs(line string) []string {
	var out []string
	for {
		cut := -1
		for _, g := range sectionGlyphs {
			if i := glyphAfterText(line, g.glyph); i > 0 && (cut < 0 || i < cut) {
				cut = i
			}
		}
		if cut < 0 {
			return append(out, line)
		}
		out = append(out, line[:cut])
		line = line[cut:]
	}
}

// glyphAfterText returns the byte offset of the first glyph in line preceded
// by real text, or -1.
func glyphAfterText(line, glyph string) int {
	offset := 0
	for {
		i := strings.Index(line[offset:], glyph)
		if i < 0 {
			return -1
		}
		i += offset
		if strings.Trim(line[:i], "#* \t") != "" {
			return i
		}
		offset = i + len(glyph)
	}
}

// parseHeading reports whether line opens a section. rest is any content
// that follows the heading title on the same line.
func parseHeading(line string) (kind sectionKind, rest string, ok bool) {
	head := strings.TrimLeft(strings.TrimSpace(line), "#* ")
	for _, g := range sectionGlyphs {
		if !strings.HasPrefix(head, g.glyph) {
			continue
		}
		title := cleanLine(head[len(g.glyph):])
		kwKind, after, _, matched := matchKeyword(title)
		switch {
		case matched && g.kind == sectionOther:
			return kwKind, after, true
		case matched:
			return g.kind, after, true
		default:
			return g.kind, title, true
		}
	}

	title := cleanLine(line)
	kwKind, after, colon, matched := matchKeyword(title)
	if matched && (after == "" || colon) {
		return kwKind, after, true
	}
	return sectionPreamble, "", false
}

// matchKeyword matches a heading keyword at the start of title, case-insensitively.
func matchKeyword(title string) (kind sectionKind, rest string, colon, ok bool) {
	lower := strings.ToLower(title)
	for _, kw := range sectionKeywords {
		if !strings.HasPrefix(lower, kw.keyword) {
			continue
		}
		after := title[len(kw.keyword):]
		if after != "" {
			if r, _ := utf8.DecodeRuneInString(after); !strings.ContainsRune(": -–—", r) {
				continue
			}
		}
		trimmed := strings.TrimLeft(after, " ")
		colon = strings.HasPrefix(trimmed, ":")
		rest = strings.TrimSpace(strings.TrimLeft(trimmed, ":-–— "))
		return kw.kind, rest, colon, true
	}
	return sectionPreamble, "", false, false
}
