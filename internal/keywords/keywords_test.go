package keywords

import (
	"reflect"
	"testing"
)

func TestExtractDropsOpenersAndStopWords(t *testing.T) {
	t.Parallel()

	got := Extract("Will the Kansas City Chiefs win Super Bowl 2025?")
	want := []string{"kansas", "city", "chiefs", "win", "super", "bowl"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractRemovesTemporalPhrases(t *testing.T) {
	t.Parallel()

	got := Extract("Bitcoin above $100k before January 2026")
	for _, token := range got {
		if token == "before" || token == "january" || token == "2026" {
			t.Fatalf("temporal token %q survived cleanup: %v", token, got)
		}
	}
	if len(got) == 0 {
		t.Fatalf("Extract dropped everything: %v", got)
	}
}

func TestExtractDeduplicatesPreservingOrder(t *testing.T) {
	t.Parallel()

	got := Extract("Lakers Lakers beat Celtics, Celtics lose")
	want := []string{"lakers", "beat", "celtics", "lose"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractEmptyAndStopOnlyTitles(t *testing.T) {
	t.Parallel()

	if got := Extract(""); len(got) != 0 {
		t.Fatalf("Extract(\"\") = %v, want empty", got)
	}
	if got := Extract("Will this be that?"); len(got) != 0 {
		t.Fatalf("Extract(stop-only) = %v, want empty", got)
	}
}

func TestExtractEmptyResultIsNeverNil(t *testing.T) {
	t.Parallel()

	// The keyword set is stored in a NOT NULL text[] column; a nil
	// slice would render as SQL NULL and fail the event upsert.
	for _, title := range []string{"", "Will", "Will this be that?"} {
		got := Extract(title)
		if got == nil {
			t.Fatalf("Extract(%q) returned nil, want empty slice", title)
		}
		if len(got) != 0 {
			t.Fatalf("Extract(%q) = %v, want empty", title, got)
		}
	}
}

func TestExtractBoundsKeywordCount(t *testing.T) {
	t.Parallel()

	title := "Quantum fusion reactors power orbital habitats near lunar colonies across southern hemisphere networks"
	got := Extract(title)
	if len(got) != maxKeywords {
		t.Fatalf("Extract kept %d keywords, want %d: %v", len(got), maxKeywords, got)
	}
	want := []string{"quantum", "fusion", "reactors", "power", "orbital", "habitats", "near", "lunar"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want first %d tokens %v", got, maxKeywords, want)
	}
}

func TestExtractDropsShortAndNumericTokens(t *testing.T) {
	t.Parallel()

	got := Extract("S&P 500 hits 6000 in Q4")
	for _, token := range got {
		if len(token) < 3 {
			t.Fatalf("short token %q survived: %v", token, got)
		}
		if token == "500" || token == "6000" {
			t.Fatalf("numeric token %q survived: %v", token, got)
		}
	}
}

func TestCleanTitleConsumesStackedOpeners(t *testing.T) {
	t.Parallel()

	got := CleanTitle("Will the Fed cut rates?")
	want := "Fed cut rates?"
	if got != want {
		t.Fatalf("CleanTitle = %q, want %q", got, want)
	}
}

func TestSearchQueriesThreeStrategies(t *testing.T) {
	t.Parallel()

	kws := []string{"chiefs", "super", "bowl", "win", "kansas"}
	got := SearchQueries("Will the Chiefs win the Super Bowl?", "Sports", kws)

	if len(got) != 3 {
		t.Fatalf("SearchQueries returned %d queries, want 3: %v", len(got), got)
	}
	if got[0] != "Chiefs win Super Bowl?" {
		t.Fatalf("cleaned-title query = %q", got[0])
	}
	if got[1] != "chiefs super bowl win" {
		t.Fatalf("top-keywords query = %q", got[1])
	}
	if got[2] != "chiefs super sports" {
		t.Fatalf("keyword+category query = %q", got[2])
	}
}

func TestSearchQueriesCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	// Title cleans to exactly the keyword join, so the two strategies
	// collapse into one.
	got := SearchQueries("fed rates", "", []string{"fed", "rates"})
	if len(got) != 1 {
		t.Fatalf("SearchQueries = %v, want single collapsed query", got)
	}
}

func TestSearchQueriesSkipsCategoryWithFewKeywords(t *testing.T) {
	t.Parallel()

	got := SearchQueries("Election winner", "Politics", []string{"election"})
	for _, q := range got {
		if q == "election politics" {
			t.Fatalf("category query built with a single keyword: %v", got)
		}
	}
}

func TestSearchQueriesEmptyInput(t *testing.T) {
	t.Parallel()

	if got := SearchQueries("", "", nil); len(got) != 0 {
		t.Fatalf("SearchQueries = %v, want empty", got)
	}
}
