package pipeline

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// styleDecls is an ordered property -> value mapping parsed from a style attribute.
// Setting an existing property replaces its value in place.
type styleDecls struct {
	names  []string
	values map[string]string
}

// parseStyle parses the contents of a style attribute.
// Malformed declarations are skipped; values keep their original text, so
// commas and semicolons inside functions like rgba() survive intact.
func parseStyle(style string) *styleDecls {
	d := &styleDecls{values: make(map[string]string)}
	if strings.TrimSpace(style) == "" {
		return d
	}

	p := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return d
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			name := strings.ToLower(strings.TrimSpace(string(data)))
			value := joinTokens(p.Values())
			if name == "" || value == "" {
				continue
			}
			d.Set(name, value)
		}
	}
}

// joinTokens rebuilds a declaration value, collapsing whitespace runs to one
// space. The parser drops whitespace after commas, so top-level commas are
// written back as ", " while commas inside functions such as rgba() stay bare.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	depth := 0
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
			continue
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if depth == 0 {
				sb.WriteString(", ")
				continue
			}
		}
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// Get returns the value of a property.
func (d *styleDecls) Get(name string) (string, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Set adds or replaces a property, keeping the original position on replace.
func (d *styleDecls) Set(name, value string) {
	if _, ok := d.values[name]; !ok {
		d.names = append(d.names, name)
	}
	d.values[name] = value
}

// SetDefault adds a property only if it is not already present.
func (d *styleDecls) SetDefault(name, value string) {
	if _, ok := d.values[name]; !ok {
		d.Set(name, value)
	}
}

// Merge sets every declaration of o on d, in o's order.
func (d *styleDecls) Merge(o *styleDecls) {
	for _, name := range o.names {
		d.Set(name, o.values[name])
	}
}

// Delete removes a property.
func (d *styleDecls) Delete(name string) {
	if _, ok := d.values[name]; !ok {
		return
	}
	delete(d.values, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}

// Len returns the number of declarations.
func (d *styleDecls) Len() int {
	return len(d.names)
}

// String serializes declarations as "name:value;name:value;".
func (d *styleDecls) String() string {
	var sb strings.Builder
	for _, name := range d.names {
		sb.WriteString(name)
		sb.WriteByte(':')
		sb.WriteString(d.values[name])
		sb.WriteByte(';')
	}
	return sb.String()
}
