package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// Summarize condenses text in a single non-streaming call, independent of
// any conversation. prompt may be empty for a plain summary; maxWords is a
// soft target passed to the model.
func (p *Anthropic) Summarize(ctx context.Context, text string, maxWords int, prompt string) (string, error) {
	if prompt == "" {
		prompt = "Summarize the following text."
	}
	system := fmt.Sprintf("%s\nKeep the result under roughly %d words.", prompt, maxWords)

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    []anthropic.TextBlockParam{{Type: "text", Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}
