package core

import (
	"regexp"
	"strings"
)

const (
	linkOpen  = "[["
	linkClose = "]]"
)

// wikiLinkRe matches a link wrapper whose contents hold no brackets.
var wikiLinkRe = regexp.MustCompile(`\[\[[^\[\]]+\]\]`)

// stripWikiLinks removes every link wrapper from text. Offsets shift, so the
// result is only good for presence tests.
func stripWikiLinks(text string) string {
	return wikiLinkRe.ReplaceAllLiteralString(text, "")
}

// wrapLink returns title in link syntax.
func wrapLink(title string) string {
	return linkOpen + title + linkClose
}

// touchesLinkBrackets reports whether text[start:end] sits directly after an
// open bracket pair or directly before a close bracket pair.
func touchesLinkBrackets(text string, start, end int) bool {
	return strings.HasSuffix(text[:start], linkOpen) || strings.HasPrefix(text[end:], linkClose)
}
