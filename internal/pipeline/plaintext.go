package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// PlainText extracts the text content of an HTML fragment for the
// clipboard's text/plain flavor. Block boundaries and <br> become line
// breaks; decorative markup (code card dots, list markers) keeps its text.
func PlainText(htmlContent string) (string, error) {
	root, err := parseFragment(htmlContent)
	if err != nil {
		return "", err
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, template").Remove()

	var sb strings.Builder
	collectText(&sb, root, false)
	return tidyLines(sb.String()), nil
}

func collectText(sb *strings.Builder, n *html.Node, inPre bool) {
	switch n.Type {
	case html.TextNode:
		if inPre {
			sb.WriteString(n.Data)
			return
		}
		writeCollapsed(sb, n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "br":
			sb.WriteByte('\n')
			return
		case "pre":
			inPre = true
		}
	}

	block := n.Type == html.ElementNode && (isBlockElement(n) || n.Data == "tr")
	if block {
		sb.WriteByte('\n')
	}
	start := sb.Len()
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(sb, c, inPre)
	}

	switch {
	case block:
		sb.WriteByte('\n')
	case n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th"):
		sb.WriteByte('\t')
	case n.Type == html.ElementNode && n.Data == "span" && isListMarker(sb.String()[start:]):
		sb.WriteByte(' ')
	}
}

// writeCollapsed writes text with whitespace runs reduced to one space.
func writeCollapsed(sb *strings.Builder, text string) {
	words := strings.Fields(text)
	leading := len(text) > 0 && isBlank(text[:1])
	trailing := len(text) > 0 && isBlank(text[len(text)-1:])

	if (leading || len(words) == 0) && len(text) > 0 && !endsWithSpace(sb) {
		sb.WriteByte(' ')
	}
	if len(words) == 0 {
		return
	}
	sb.WriteString(strings.Join(words, " "))
	if trailing {
		sb.WriteByte(' ')
	}
}

func endsWithSpace(sb *strings.Builder) bool {
	s := sb.String()
	return s == "" || isBlank(s[len(s)-1:])
}

// isListMarker reports whether s is a rendered list marker: a bullet
// glyph or an ordinal like "12.".
func isListMarker(s string) bool {
	for _, g := range unorderedGlyphs {
		if s == g {
			return true
		}
	}
	num, ok := strings.CutSuffix(s, ".")
	if !ok || num == "" {
		return false
	}
	for _, r := range num {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// tidyLines trims every line and collapses runs of blank lines to one.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
