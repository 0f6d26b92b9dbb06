package pipeline

import (
	"math"
	"strconv"
	"strings"
)

// FallbackFontFamily is used when a font family key is not in FontFamilies.
const FallbackFontFamily = "system-default"

// DefaultLineHeight is substituted for explicit line-height values that are
// neither numeric nor a CSS length.
const DefaultLineHeight = "1.6"

// MonospaceFontStack is used for inline and block code.
const MonospaceFontStack = "Menlo, Monaco, Consolas, 'Courier New', monospace"

// FontFamilies maps symbolic font keys to CSS font stacks.
// Stacks use single quotes so they can be embedded in double-quoted attributes.
var FontFamilies = map[string]string{
	"system-default":  "-apple-system, BlinkMacSystemFont, 'Helvetica Neue', 'PingFang SC', 'Hiragino Sans GB', 'Microsoft YaHei UI', 'Microsoft YaHei', Arial, sans-serif",
	"pingfang-sc":     "'PingFang SC', 'Hiragino Sans GB', 'Microsoft YaHei', -apple-system, sans-serif",
	"microsoft-yahei": "'Microsoft YaHei', 'Microsoft YaHei UI', 'PingFang SC', sans-serif",
	"hiragino":        "'Hiragino Sans GB', 'PingFang SC', 'Microsoft YaHei', sans-serif",
	"songti":          "'Songti SC', 'SimSun', 'STSong', serif",
	"kaiti":           "'Kaiti SC', 'STKaiti', 'KaiTi', serif",
	"helvetica":       "'Helvetica Neue', Helvetica, Arial, sans-serif",
	"georgia":         "Georgia, 'Times New Roman', 'Songti SC', serif",
	"optima":          "Optima, 'Microsoft YaHei', 'PingFang SC', sans-serif",
	"monospace":       MonospaceFontStack,
}

// FontSettings controls the typography forced onto rendered HTML.
type FontSettings struct {
	Family        string  // key into FontFamilies
	Size          float64 // base size in px
	LineHeight    string  // "" = derived from Size; number or CSS length
	LetterSpacing float64 // px, 0 = not set
}

// Valid reports whether fs requests any styling at all.
func (fs *FontSettings) Valid() bool {
	return fs != nil && fs.Size > 0 && !math.IsNaN(fs.Size) && !math.IsInf(fs.Size, 0)
}

// ResolveFontFamily returns the CSS font stack for key, or the fallback stack.
func ResolveFontFamily(key string) string {
	if stack, ok := FontFamilies[strings.ToLower(strings.TrimSpace(key))]; ok {
		return stack
	}
	return FontFamilies[FallbackFontFamily]
}

// DeriveLineHeight picks a line-height from the base font size.
func DeriveLineHeight(size float64) string {
	switch {
	case size <= 14:
		return "1.7"
	case size <= 18:
		return "1.6"
	default:
		return "1.5"
	}
}

// cssLengthUnits are the suffixes accepted for explicit line-height values.
var cssLengthUnits = []string{"px", "rem", "em", "%", "pt", "vh", "vw", "ex", "ch"}

// ResolveLineHeight returns the CSS line-height value for fs.
func ResolveLineHeight(fs FontSettings) string {
	raw := strings.TrimSpace(fs.LineHeight)
	if raw == "" {
		return DeriveLineHeight(fs.Size)
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return DeriveLineHeight(fs.Size)
		}
		return formatNumber(v)
	}
	if IsCSSLength(raw) {
		return strings.ToLower(raw)
	}
	return DefaultLineHeight
}

// IsCSSLength reports whether s is a positive number followed by a known unit.
func IsCSSLength(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, unit := range cssLengthUnits {
		num, ok := strings.CutSuffix(lower, unit)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(num, 64)
		return err == nil && v > 0
	}
	return false
}

// Heading size multipliers relative to the base font size.
var headingScale = map[string]float64{
	"h1": 2.2,
	"h2": 1.5,
	"h3": 1.3,
}

// HeadingSize returns the pixel size for a heading tag, rounding half up.
// Tags without a multiplier use the base size.
func HeadingSize(tag string, base float64) int {
	scale, ok := headingScale[tag]
	if !ok {
		scale = 1
	}
	return int(math.Floor(base*scale + 0.5))
}

// formatNumber renders v without trailing zeros ("1.50" -> "1.5", "16" -> "16").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// px renders v as a CSS pixel length.
func px(v float64) string {
	return formatNumber(v) + "px"
}
