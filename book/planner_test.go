package book

import (
	"context"
	"testing"
)

func plannerFixture() (*PlanningLibrary, *fakeSummarizer) {
	s := &fakeSummarizer{}
	lib := NewStaticLibrary(
		Info{ID: 1, Title: "T"},
		[]Chapter{
			{Number: ChapterNumber{1}, Name: "Unplanned", Content: "alpha"},
			{
				Number: ChapterNumber{2}, Name: "Planned", Content: "beta",
				Plan: ChapterPlan{Plan: "baked plan", Summary: "baked summary"},
			},
		},
	)
	return NewPlanningLibrary(lib, s), s
}

func TestPlanningLibrary_GeneratesAndCaches(t *testing.T) {
	lib, s := plannerFixture()
	ctx := context.Background()

	ch, err := lib.Chapter(ctx, 1, ChapterNumber{1})
	if err != nil {
		t.Fatalf("chapter: %v", err)
	}
	if ch.Plan.Plan != "plan for: alpha" || ch.Plan.Summary != "summary of: alpha" {
		t.Fatalf("plan not generated: %+v", ch.Plan)
	}
	if len(s.calls) != 2 {
		t.Fatalf("expected plan+summary calls, got %v", s.calls)
	}

	// Second lookup is served from the cache.
	ch, err = lib.Chapter(ctx, 1, ChapterNumber{1})
	if err != nil {
		t.Fatalf("second chapter: %v", err)
	}
	if ch.Plan.Plan != "plan for: alpha" {
		t.Fatalf("cached plan wrong: %+v", ch.Plan)
	}
	if len(s.calls) != 2 {
		t.Fatalf("cache miss on second lookup: %v calls", len(s.calls))
	}
}

func TestPlanningLibrary_KeepsBakedPlan(t *testing.T) {
	lib, s := plannerFixture()

	ch, err := lib.Chapter(context.Background(), 1, ChapterNumber{2})
	if err != nil {
		t.Fatalf("chapter: %v", err)
	}
	if ch.Plan.Plan != "baked plan" {
		t.Fatalf("baked plan replaced: %+v", ch.Plan)
	}
	if len(s.calls) != 0 {
		t.Fatalf("summarizer called for a planned chapter: %v", s.calls)
	}
}

func TestPlanningLibrary_GenerationFailureFailsLookup(t *testing.T) {
	lib, s := plannerFixture()
	s.fail = true

	if _, err := lib.Chapter(context.Background(), 1, ChapterNumber{1}); err == nil {
		t.Fatal("expected error when plan generation fails")
	}
}

func TestPlanningLibrary_PropagatesLookupErrors(t *testing.T) {
	lib, s := plannerFixture()

	if _, err := lib.Chapter(context.Background(), 1, ChapterNumber{9}); err == nil {
		t.Fatal("expected error for missing chapter")
	}
	if len(s.calls) != 0 {
		t.Fatalf("summarizer called for a missing chapter: %v", s.calls)
	}
}
