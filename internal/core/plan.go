package core

import (
	"sort"
	"unicode/utf8"
)

// Match is one located occurrence of a title. Offsets are byte offsets into
// the text the match was found in; End is exclusive.
type Match struct {
	Title string
	Start int
	End   int
}

// Edit replaces the byte range [Start, End) of the planned text with
// Replacement.
type Edit struct {
	Start       int
	End         int
	Title       string
	Replacement string
}

// findMatches enumerates non-overlapping occurrences of title in text, left to
// right, skipping any that touch link brackets. A rejected candidate resumes
// the search one character later so a shifted occurrence can still match.
func findMatches(text, title string, bc *BoundaryClassifier) []Match {
	if title == "" {
		return nil
	}
	re := titlePattern(title, bc)
	if re == nil {
		return nil
	}
	var out []Match
	pos := 0
	for pos <= len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if touchesLinkBrackets(text, start, end) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}
		out = append(out, Match{Title: title, Start: start, End: end})
		pos = end
	}
	return out
}

// PlanEdits turns hit titles into disjoint link edits against text.
//
// Positions are derived afresh from text rather than from the scan, so hits
// may yield no edits. Candidates are ordered by start offset, longer title
// first on ties, and accepted greedily: a candidate that starts before the
// previous accepted end is dropped even if it is longer.
func PlanEdits(text string, hits []string, bc *BoundaryClassifier) []Edit {
	var candidates []Match
	for _, title := range hits {
		candidates = append(candidates, findMatches(text, title, bc)...)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].End-candidates[i].Start > candidates[j].End-candidates[j].Start
	})

	var plan []Edit
	lastEnd := -1
	for _, m := range candidates {
		if m.Start < lastEnd {
			continue
		}
		plan = append(plan, Edit{
			Start:       m.Start,
			End:         m.End,
			Title:       m.Title,
			Replacement: wrapLink(m.Title),
		})
		lastEnd = m.End
	}
	return plan
}
