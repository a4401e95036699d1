package pipeline

import (
	"testing"

	"horse.fit/tickerwire/internal/db"
)

func TestPlanBatchWritesOneTerminalWritePerArticle(t *testing.T) {
	t.Parallel()

	batch := []db.News{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	outcomes := []thumbOutcome{
		{thumbnail: "https://cdn.example.com/a.jpg"},
		{},
		{thumbnail: "https://cdn.example.com/c.jpg"},
	}

	ops := planBatchWrites(batch, outcomes)
	if len(ops) != len(batch) {
		t.Fatalf("planBatchWrites produced %d ops for %d articles", len(ops), len(batch))
	}
	for i, op := range ops {
		if op.id != batch[i].ID {
			t.Fatalf("op %d id = %q, want %q", i, op.id, batch[i].ID)
		}
	}
	if !ops[0].found || ops[0].thumbnail != "https://cdn.example.com/a.jpg" {
		t.Fatalf("successful extraction op = %+v, want found with image", ops[0])
	}
	if ops[1].found || ops[1].thumbnail != "" {
		t.Fatalf("empty extraction op = %+v, want not-found", ops[1])
	}
	if !ops[2].found {
		t.Fatalf("successful extraction op = %+v, want found", ops[2])
	}
}

func TestPlanBatchWritesSnippetRefreshOnlyWhenEmpty(t *testing.T) {
	t.Parallel()

	batch := []db.News{
		{ID: "empty-snippet"},
		{ID: "has-snippet", Snippet: "already stored"},
		{ID: "no-image"},
	}
	outcomes := []thumbOutcome{
		{thumbnail: "https://cdn.example.com/1.jpg", snippet: "fresh text"},
		{thumbnail: "https://cdn.example.com/2.jpg", snippet: "must not replace"},
		{snippet: "no terminal success, no refresh"},
	}

	ops := planBatchWrites(batch, outcomes)
	if ops[0].snippet != "fresh text" {
		t.Fatalf("empty stored snippet not refreshed: %+v", ops[0])
	}
	if ops[1].snippet != "" {
		t.Fatalf("stored snippet would be replaced: %+v", ops[1])
	}
	if ops[2].snippet != "" || ops[2].found {
		t.Fatalf("failed extraction carries a write beyond not-found: %+v", ops[2])
	}
}
