package book

import (
	"context"
	"fmt"
)

// Summarizer produces a one-shot condensation of text. The completion
// provider implements this; the tutor core never summarizes on its own.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxWords int, prompt string) (string, error)
}

const planPrompt = `Generate a teaching plan for the following chapter.
Structure it as:
- Chapter Objectives: what the student should understand afterwards.
- Teaching Outline: the concepts in teaching order, with short notes.
- Activities and Methods: tailored examples, practice exercises, an
  end-of-chapter quiz.
- Next Steps: homework and the bridge to the following chapter.`

// BuildPlan generates the teaching plan and short summary for a chapter.
func BuildPlan(ctx context.Context, s Summarizer, ch *Chapter) (ChapterPlan, error) {
	plan, err := s.Summarize(ctx, ch.Content, 1000, planPrompt)
	if err != nil {
		return ChapterPlan{}, fmt.Errorf("chapter %s plan: %w", ch.Number, err)
	}
	summary, err := s.Summarize(ctx, ch.Content, 100, "")
	if err != nil {
		return ChapterPlan{}, fmt.Errorf("chapter %s summary: %w", ch.Number, err)
	}
	return ChapterPlan{Plan: plan, Summary: summary}, nil
}
