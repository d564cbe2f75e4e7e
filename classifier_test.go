package quizify_test

import (
	"strings"
	"testing"

	"github.com/Saurav-Ganguly/quizify"
)

func TestClassifyEmptyPage(t *testing.T) {
	decision := quizify.Classify("   \n\t  ", 10, 100)
	if !decision.Skip {
		t.Fatalf("expected empty page to be skipped")
	}
	if decision.Reason != "no text content" {
		t.Fatalf("unexpected reason: %q", decision.Reason)
	}
}

func TestClassifyStructuralMarkerNearEdge(t *testing.T) {
	text := "Table of Contents\n1. Introduction ... 1\n2. Methods ... 15\n3. Results ... 42"
	decision := quizify.Classify(text, 2, 100)
	if !decision.Skip {
		t.Fatalf("expected front-matter page to be skipped")
	}

	// The same short marker page at the back of the document is also skipped.
	decision = quizify.Classify("Index\nalpha, 3\nbeta, 17", 98, 100)
	if !decision.Skip {
		t.Fatalf("expected back-matter page to be skipped")
	}
}

func TestClassifyStandaloneMarkerMidDocument(t *testing.T) {
	// A 50-character page containing only a contents marker is skipped
	// regardless of its position in the document.
	text := "Table of Contents                              ..."
	if len(text) != 50 {
		t.Fatalf("test fixture should be 50 chars, got %d", len(text))
	}
	decision := quizify.Classify(text, 50, 100)
	if !decision.Skip {
		t.Fatalf("expected standalone marker page to be skipped")
	}
}

func TestClassifyBareHeadingPage(t *testing.T) {
	decision := quizify.Classify("Chapter 4", 40, 100)
	if !decision.Skip {
		t.Fatalf("expected bare heading page to be skipped")
	}

	decision = quizify.Classify("Part II", 40, 100)
	if !decision.Skip {
		t.Fatalf("expected bare part heading to be skipped")
	}
}

func TestClassifyChapterWithProseIsContent(t *testing.T) {
	text := "Chapter 4 " + strings.Repeat("The mitochondria convert nutrients into usable energy. ", 37)
	if len(text) < 2000 {
		t.Fatalf("test fixture should exceed 2000 chars, got %d", len(text))
	}
	decision := quizify.Classify(text, 40, 100)
	if decision.Skip {
		t.Fatalf("expected substantive chapter page to pass, skipped with reason %q", decision.Reason)
	}
}

func TestClassifyTooShort(t *testing.T) {
	decision := quizify.Classify("A short paragraph without any structural markers in it.", 40, 100)
	if !decision.Skip {
		t.Fatalf("expected short page to be skipped")
	}
	if decision.Reason != "too short" {
		t.Fatalf("unexpected reason: %q", decision.Reason)
	}
}

func TestClassifyLongContentPasses(t *testing.T) {
	text := strings.Repeat("Plate tectonics explains the motion of continental crust. ", 12)
	decision := quizify.Classify(text, 40, 100)
	if decision.Skip {
		t.Fatalf("expected content page to pass, skipped with reason %q", decision.Reason)
	}
}

func TestClassifyEdgeMarkerLongPageIsContent(t *testing.T) {
	// A long page near the edge that merely mentions a marker is content.
	text := "The appendix of the human body " + strings.Repeat("is a small pouch attached to the large intestine. ", 14)
	if len(text) < 600 {
		t.Fatalf("test fixture should exceed 600 chars, got %d", len(text))
	}
	decision := quizify.Classify(text, 2, 100)
	if decision.Skip {
		t.Fatalf("expected long edge page to pass, skipped with reason %q", decision.Reason)
	}
}
