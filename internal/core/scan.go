package core

import "regexp"

// titlePattern compiles the literal pattern for title. Titles ending in a
// boundary-using script must be followed by an ASCII word boundary.
// It returns nil for a title that cannot be compiled, such as one holding
// invalid UTF-8; such a title never matches.
func titlePattern(title string, bc *BoundaryClassifier) *regexp.Regexp {
	expr := regexp.QuoteMeta(title)
	if bc.needsBoundary(title) {
		expr += `\b`
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return re
}

// ScanTitles returns the catalog titles mentioned in text outside existing
// links, longest first. currentTitle is never reported.
//
// Titles are tested in catalog order against a working copy of the text.
// Every occurrence of a hit is cut from the working copy before the next
// title is tested, so a shorter title inside a longer hit does not count.
func ScanTitles(text string, catalog *TitleCatalog, currentTitle string, bc *BoundaryClassifier) []string {
	if catalog == nil || catalog.Len() == 0 {
		return nil
	}
	working := stripWikiLinks(text)

	var hits []string
	for _, title := range catalog.titles {
		if title == "" || title == currentTitle {
			continue
		}
		re := titlePattern(title, bc)
		if re == nil || !re.MatchString(working) {
			continue
		}
		hits = append(hits, title)
		working = re.ReplaceAllLiteralString(working, "")
	}
	sortLongestFirst(hits)
	return hits
}
