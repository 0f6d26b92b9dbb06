package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Reflower rewrites arbitrary HTML into the subset the paste target keeps:
// sections, paragraphs and inline elements, all styled inline. Tables and
// lists are re-expressed without their native tags.
//
// A Reflower holds no mutable state and is safe for concurrent use.
type Reflower struct {
	theme *Theme
}

// NewReflower returns a Reflower using theme colors. A nil theme selects DefaultTheme.
func NewReflower(theme *Theme) *Reflower {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Reflower{theme: theme}
}

// Reflow converts an HTML fragment with the default theme.
func Reflow(fragment string) (string, error) {
	return NewReflower(nil).Reflow(fragment)
}

// Reflow converts an HTML fragment.
func (r *Reflower) Reflow(fragment string) (string, error) {
	root, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}
	doc := goquery.NewDocumentFromNode(root)

	var sb strings.Builder
	r.convertChildren(&sb, doc.Selection, true)
	return sb.String(), nil
}

// convertChildren converts the contents of s into sb. Top-level text is
// trimmed so stray whitespace between blocks does not become content.
func (r *Reflower) convertChildren(sb *strings.Builder, s *goquery.Selection, topLevel bool) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		r.convertNode(sb, c, topLevel)
	})
}

func (r *Reflower) convertNode(sb *strings.Builder, s *goquery.Selection, topLevel bool) {
	node := s.Nodes[0]
	switch node.Type {
	case html.TextNode:
		text := node.Data
		if topLevel {
			text = strings.TrimSpace(text)
		}
		sb.WriteString(html.EscapeString(text))
	case html.ElementNode:
		r.convertElement(sb, s)
	}
}

// convertElement applies the first matching rule; unmatched elements
// contribute their converted content only.
func (r *Reflower) convertElement(sb *strings.Builder, s *goquery.Selection) {
	for _, rule := range reflowRules {
		if s.IsMatcher(rule.match) {
			rule.render(r, sb, s)
			return
		}
	}
	r.convertChildren(sb, s, false)
}

// inner returns the converted contents of s.
func (r *Reflower) inner(s *goquery.Selection) string {
	var sb strings.Builder
	r.convertChildren(&sb, s, false)
	return sb.String()
}

// sanitizePolicy accepts user-generated markup plus class names, which the
// re-flow rules dispatch on.
var sanitizePolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return p
}()

// SanitizeHTML removes scripts, event handlers and unsafe URLs from pasted HTML.
func SanitizeHTML(fragment string) string {
	return sanitizePolicy.Sanitize(fragment)
}
