package catalogue

import (
	"regexp"
	"strings"
)

// colorTokenRe matches a trailing "#RRGGBB" token, e.g. "祥瑞 #E8B64C".
var colorTokenRe = regexp.MustCompile(`\s*#([0-9A-Fa-f]{6})\s*$`)

// ExtractColor returns the six hex digits of the color token that ends name,
// upper-cased and without "#". It returns "" when name carries no
// well-formed token.
func ExtractColor(name string) string {
	m := colorTokenRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// DisplayName returns name without its trailing color token.
func DisplayName(name string) string {
	return strings.TrimSpace(colorTokenRe.ReplaceAllString(name, ""))
}
