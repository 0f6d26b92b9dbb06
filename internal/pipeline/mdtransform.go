package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// These are guaranteed to not conflict with any standard characters
// and will pass through Goldmark unchanged (no WithUnsafe needed).
// Post-processing converts these to <mark> tags after HTML generation.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Highlight syntax ==text==
	highlightPattern = regexp.MustCompile(`==(.*?)==`)

	// List item opener; the match length is the item's content column
	listItemPattern = regexp.MustCompile(`^ *(?:[-*+]|\d{1,9}[.)])(?: +|$)`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights transforms ==text== to placeholder markers.
// Fenced code, indented code and inline code spans are left as written.
//
// Indented code starts after a blank line with at least four columns of
// indentation past the enclosing list item's content, and cannot interrupt
// a paragraph.
func convertHighlights(content string) string {
	lines := strings.Split(content, "\n")
	fence := ""
	prevBlank := true
	inCode := false
	listIndent := -1
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if isBlank(line) {
			prevBlank = true
			continue
		}

		col := indentColumns(line)
		threshold := 4
		if listIndent >= 0 {
			threshold = listIndent + 4
		}
		if col >= threshold && (prevBlank || inCode) {
			inCode = true
			prevBlank = false
			continue
		}
		inCode = false

		if m := listItemPattern.FindString(line); m != "" {
			listIndent = len(m)
		} else if col == 0 && prevBlank {
			listIndent = -1
		}
		prevBlank = false

		if col < 4 {
			if marker := fenceMarker(trimmed); marker != "" {
				fence = marker
				continue
			}
		}
		// Setext heading underlines are all '='.
		if strings.Contains(line, "==") && strings.Trim(line, "= \t") != "" {
			lines[i] = convertLineHighlights(line)
		}
	}
	return strings.Join(lines, "\n")
}

// indentColumns counts leading indentation, with tabs stopping every four columns.
func indentColumns(line string) int {
	col := 0
	for _, ch := range line {
		switch ch {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			return col
		}
	}
	return col
}

// fenceMarker returns the opening fence of a code fence line, or "".
func fenceMarker(line string) string {
	for _, ch := range []string{"`", "~"} {
		n := 0
		for n < len(line) && line[n] == ch[0] {
			n++
		}
		if n >= 3 {
			return strings.Repeat(ch, n)
		}
	}
	return ""
}

// convertLineHighlights converts highlights outside backtick code spans.
func convertLineHighlights(line string) string {
	parts := strings.Split(line, "`")
	for i := 0; i < len(parts); i += 2 {
		parts[i] = highlightPattern.ReplaceAllString(parts[i], MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	}
	return strings.Join(parts, "`")
}

// ConvertMarkPlaceholders turns highlight placeholders into styled <mark>
// tags. It runs after goldmark so the source never needs raw HTML.
// Unbalanced placeholders are dropped rather than left as stray runes.
func ConvertMarkPlaceholders(content string, theme *Theme) string {
	if !strings.Contains(content, MarkStartPlaceholder) {
		return strings.ReplaceAll(content, MarkEndPlaceholder, "")
	}
	if theme == nil {
		theme = DefaultTheme()
	}
	open := `<mark style="` + theme.markStyle() + `">`

	var sb strings.Builder
	sb.Grow(len(content))
	depth := 0
	for _, r := range content {
		switch string(r) {
		case MarkStartPlaceholder:
			sb.WriteString(open)
			depth++
		case MarkEndPlaceholder:
			if depth > 0 {
				sb.WriteString("</mark>")
				depth--
			}
		default:
			sb.WriteRune(r)
		}
	}
	for ; depth > 0; depth-- {
		sb.WriteString("</mark>")
	}
	return sb.String()
}
