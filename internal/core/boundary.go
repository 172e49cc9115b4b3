package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultNonBoundaryScripts lists the scripts whose words are written without
// separators and therefore need no trailing word-boundary check.
var DefaultNonBoundaryScripts = []string{"Han", "Hiragana", "Katakana", "Hangul"}

// BoundaryClassifier reports whether a character belongs to one of the
// configured non-boundary scripts. The zero value classifies nothing.
type BoundaryClassifier struct {
	tables []*unicode.RangeTable
}

// NewBoundaryClassifier resolves script names against the Unicode script
// tables. Unknown names are dropped: they come from free-text configuration
// and simply never match.
func NewBoundaryClassifier(scripts []string) *BoundaryClassifier {
	bc := &BoundaryClassifier{}
	for _, name := range scripts {
		name = strings.TrimSpace(name)
		if t, ok := unicode.Scripts[name]; ok {
			bc.tables = append(bc.tables, t)
		}
	}
	return bc
}

// IsNonBoundaryChar returns true if r is in one of the configured scripts.
func (bc *BoundaryClassifier) IsNonBoundaryChar(r rune) bool {
	if bc == nil || len(bc.tables) == 0 {
		return false
	}
	return unicode.In(r, bc.tables...)
}

// needsBoundary reports whether matches of title must be followed by a word
// boundary. Only the title's last character decides the regime.
func (bc *BoundaryClassifier) needsBoundary(title string) bool {
	last, _ := utf8.DecodeLastRuneInString(title)
	if last == utf8.RuneError {
		return true
	}
	return !bc.IsNonBoundaryChar(last)
}
