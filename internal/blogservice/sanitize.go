package blogservice

import "regexp"

var (
	scriptBlockRX = regexp.MustCompile(`(?is)<\s*script[^>]*>.*?<\s*/\s*script\s*>`)
	// a stray opening or closing tag left after the blocks are gone
	scriptTagRX = regexp.MustCompile(`(?i)<\s*/?\s*script[^>]*>`)
	jsLinkRX    = regexp.MustCompile(`(?i)\]\(\s*javascript:[^)]*\)`)
)

// sanitizeMarkdown strips script elements from the content and neutralises
// javascript: link targets.
func sanitizeMarkdown(markdown string) string {
	markdown = scriptBlockRX.ReplaceAllString(markdown, "")
	markdown = scriptTagRX.ReplaceAllString(markdown, "")
	return jsLinkRX.ReplaceAllString(markdown, "](#)")
}
