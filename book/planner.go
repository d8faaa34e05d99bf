package book

import (
	"context"
	"fmt"
	"sync"
)

// PlanningLibrary wraps a Library so every chapter is served with a teaching
// plan: when the underlying chapter has none, one is generated via the
// Summarizer on first lookup and cached for the rest of the session.
type PlanningLibrary struct {
	inner Library
	s     Summarizer

	mu    sync.Mutex
	plans map[string]ChapterPlan
}

// NewPlanningLibrary wraps inner with on-demand plan generation.
func NewPlanningLibrary(inner Library, s Summarizer) *PlanningLibrary {
	return &PlanningLibrary{
		inner: inner,
		s:     s,
		plans: make(map[string]ChapterPlan),
	}
}

func (l *PlanningLibrary) Info(ctx context.Context, bookID int64) (*Info, error) {
	return l.inner.Info(ctx, bookID)
}

// Chapter returns the chapter with its plan populated. A plan baked into the
// source is used as-is; otherwise the cached or freshly generated plan is
// attached. Generation failure fails the lookup, so the caller never teaches
// from an unplanned chapter.
func (l *PlanningLibrary) Chapter(ctx context.Context, bookID int64, number ChapterNumber) (*Chapter, error) {
	ch, err := l.inner.Chapter(ctx, bookID, number)
	if err != nil {
		return nil, err
	}
	if ch.Plan != (ChapterPlan{}) {
		return ch, nil
	}

	key := fmt.Sprintf("%d/%s", bookID, number)
	l.mu.Lock()
	plan, ok := l.plans[key]
	l.mu.Unlock()
	if !ok {
		// The lock is not held across the provider call; concurrent first
		// lookups may build the same plan twice, last write wins.
		plan, err = BuildPlan(ctx, l.s, ch)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.plans[key] = plan
		l.mu.Unlock()
	}
	ch.Plan = plan
	return ch, nil
}
