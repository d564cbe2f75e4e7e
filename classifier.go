package quizify

import (
	"regexp"
	"strings"
)

// PageDecision is the classifier's verdict for a single page.
type PageDecision struct {
	Skip   bool
	Reason string
}

const (
	// edgePageWindow is how many pages at each end of the document are
	// checked for front/back-matter markers.
	edgePageWindow = 5
	// structuralMaxLen is the length under which an edge page containing a
	// structural marker is skipped.
	structuralMaxLen = 600
	// headingSlack is the extra length allowed beyond a bare marker or
	// chapter heading before a page counts as real content.
	headingSlack = 150
	// minContentLen is the minimum page length worth sending to generation.
	minContentLen = 400
)

// structuralMarkers flag pages that belong to a book's front or back matter.
var structuralMarkers = []string{
	"table of contents",
	"contents",
	"index",
	"preface",
	"foreword",
	"appendix",
	"bibliography",
	"references",
	"glossary",
	"acknowledgments",
	"acknowledgements",
	"errata",
	"list of figures",
	"list of tables",
}

var headingPattern = regexp.MustCompile(`^(chapter|part|section)\s+[0-9ivxlc]+\b`)

// Classify decides whether a page is worth generating questions from.
// It is a heuristic filter: false positives and negatives are tolerated
// downstream, where an empty generation result is treated like a skip.
func Classify(pageText string, pageNumber, totalPages int) PageDecision {
	trimmed := strings.TrimSpace(pageText)
	if trimmed == "" {
		return PageDecision{Skip: true, Reason: "no text content"}
	}

	lower := strings.ToLower(trimmed)
	nearEdge := pageNumber <= edgePageWindow || pageNumber > totalPages-edgePageWindow

	if nearEdge && len(lower) < structuralMaxLen {
		for _, marker := range structuralMarkers {
			if strings.Contains(lower, marker) {
				return PageDecision{Skip: true, Reason: "non-content/structural page (" + marker + ")"}
			}
		}
	}

	// Short standalone marker pages anywhere in the document, e.g. a lone
	// "Bibliography" divider in the middle of a compiled volume.
	for _, marker := range structuralMarkers {
		if strings.HasPrefix(lower, marker) && len(lower) <= len(marker)+headingSlack {
			return PageDecision{Skip: true, Reason: "standalone structural heading (" + marker + ")"}
		}
	}

	if headingPattern.MatchString(lower) && len(lower) < headingSlack {
		return PageDecision{Skip: true, Reason: "bare chapter/section heading"}
	}

	if len(trimmed) < minContentLen {
		return PageDecision{Skip: true, Reason: "too short"}
	}

	return PageDecision{}
}
