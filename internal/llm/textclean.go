package llm

import (
	"regexp"
	"strings"
)

// emojiRe covers the emoji blocks plus the misc symbol, dingbat and
// variation-selector ranges that models sprinkle into titles.
var emojiRe = regexp.MustCompile(`[` +
	`\x{1F600}-\x{1F64F}` + // emoticons
	`\x{1F300}-\x{1F5FF}` + // symbols and pictographs
	`\x{1F680}-\x{1F6FF}` + // transport and map
	`\x{1F700}-\x{1F77F}` + // alchemical
	`\x{1F780}-\x{1F7FF}` + // geometric extended
	`\x{1F800}-\x{1F8FF}` + // supplemental arrows-C
	`\x{1F900}-\x{1F9FF}` + // supplemental symbols
	`\x{1FA00}-\x{1FAFF}` + // extended-A
	`\x{2600}-\x{26FF}` + // misc symbols
	`\x{2700}-\x{27BF}` + // dingbats
	`\x{2B00}-\x{2BFF}` + // misc symbols and arrows
	`\x{FE00}-\x{FE0F}` + // variation selectors
	`\x{200D}` + // zero-width joiner
	`]`)

var (
	multiSpaceRe    = regexp.MustCompile(` {2,}`)
	headingSpacedRe = regexp.MustCompile(`(?m)^(#{1,6})\s+`)
)

// StripEmoji removes emoji codepoints and tidies the leftover spacing.
func StripEmoji(s string) string {
	s = emojiRe.ReplaceAllString(s, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = headingSpacedRe.ReplaceAllString(s, "$1 ")
	return strings.TrimSpace(s)
}
