package db

import (
	"strings"
	"testing"
)

func TestLinkNewsEventSQLGuardsEmptyFields(t *testing.T) {
	t.Parallel()

	// A feed item can carry a blank title or snippet; the linkage
	// statement must keep the stored values in that case.
	for _, guard := range []string{
		"title = CASE WHEN $2 <> '' THEN $2 ELSE title END",
		"snippet = CASE WHEN $3 <> '' THEN $3 ELSE snippet END",
		"published_at = COALESCE($4, published_at)",
	} {
		if !strings.Contains(linkNewsEventSQL, guard) {
			t.Fatalf("linkage statement missing guard %q", guard)
		}
	}
}
