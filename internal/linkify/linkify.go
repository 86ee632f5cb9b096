// Package linkify turns plain text into HTML-safe text with clickable
// links. It is pure and stateless; the presentation layer renders its
// output as trusted HTML.
package linkify

import (
	"html"
	"regexp"
	"strings"
)

// urlPattern matches http/https URLs. It runs over text that has
// already been escaped, so literal angle brackets and quotes cannot
// occur inside a match. The entity text of an escaped character
// directly after a URL (&#34; and friends) does satisfy the character
// class and is absorbed into the href.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// trailingPunct is stripped from the end of a matched URL and re-added
// after the anchor, so links never swallow sentence punctuation.
const trailingPunct = ".,;!?"

// Render escapes text and wraps every URL in an anchor that opens in a
// new browsing context without a reference back to the opener. Empty
// input returns empty output; input without URLs returns the escaped
// text unchanged.
func Render(text string) string {
	if text == "" {
		return ""
	}

	// Escape first: nothing in the source text may survive as markup.
	escaped := html.EscapeString(text)

	return urlPattern.ReplaceAllStringFunc(escaped, func(url string) string {
		clean := strings.TrimRight(url, trailingPunct)
		punct := url[len(clean):]

		var b strings.Builder
		b.WriteString(`<a href="`)
		b.WriteString(clean)
		b.WriteString(`" target="_blank" rel="noopener noreferrer" class="text-link">`)
		b.WriteString(clean)
		b.WriteString(`</a>`)
		b.WriteString(punct)
		return b.String()
	})
}
