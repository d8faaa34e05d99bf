// Package provider adapts the Anthropic Messages API to the tutor core:
// streamed SDK events become provider-neutral chat.Fragment values, and the
// one-shot Summarize call backs chapter-plan generation. Nothing outside
// this package touches SDK stream types.
package provider

import (
	"context"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/book-tutor/internal/chat"
	"github.com/petasbytes/book-tutor/tools"
)

// NewClient returns a client using the API key from the env.
func NewClient() *anthropic.Client {
	c := anthropic.NewClient()
	return &c
}

const DefaultModel = string(anthropic.ModelClaude3_7SonnetLatest)

const defaultMaxTokens = int64(1024)

// Anthropic is the completion provider handle: one explicitly constructed
// client plus model configuration, shared read-only across conversations.
type Anthropic struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic builds a provider handle for the given model.
func NewAnthropic(client *anthropic.Client, model string) *Anthropic {
	return &Anthropic{
		client:    client,
		model:     anthropic.Model(model),
		maxTokens: defaultMaxTokens,
	}
}

// Stream opens a streaming completion for the conversation snapshot and the
// registered tool definitions. The returned stream yields fragments until
// io.EOF; this provider never emits refusal deltas (the Messages API has no
// refusal channel).
func (p *Anthropic) Stream(ctx context.Context, msgs []chat.Message, defs []tools.Definition) (chat.FragmentStream, error) {
	system, messages, err := toMessageParams(msgs)
	if err != nil {
		return nil, fmt.Errorf("convert messages: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(defs) > 0 {
		params.Tools = toToolParams(defs)
	}

	out := make(chan streamItem, 10)
	go func() {
		defer close(out)

		stream := p.client.Messages.NewStreaming(ctx, params)
		for stream.Next() {
			frag, ok := toFragment(stream.Current())
			if !ok {
				continue
			}
			select {
			case out <- streamItem{frag: frag}:
			case <-ctx.Done():
				// Best effort: an abandoned consumer may have left the
				// buffer full, and the producer must still exit. The
				// deferred close turns that exit into io.EOF for any
				// reader that comes back.
				select {
				case out <- streamItem{err: ctx.Err()}:
				default:
				}
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case out <- streamItem{err: fmt.Errorf("anthropic stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return &fragmentStream{items: out}, nil
}

type streamItem struct {
	frag chat.Fragment
	err  error
}

type fragmentStream struct {
	items <-chan streamItem
}

func (s *fragmentStream) Recv() (chat.Fragment, error) {
	item, ok := <-s.items
	if !ok {
		return chat.Fragment{}, io.EOF
	}
	if item.err != nil {
		return chat.Fragment{}, item.err
	}
	return item.frag, nil
}

// toFragment maps one SDK stream event onto a fragment. Events that carry
// no delta payload (message start/stop, block stop) are skipped.
func toFragment(event anthropic.MessageStreamEventUnion) (chat.Fragment, bool) {
	switch e := event.AsAny().(type) {
	case anthropic.ContentBlockStartEvent:
		if e.ContentBlock.Type == "tool_use" {
			return chat.Fragment{ToolDeltas: []chat.ToolCallDelta{{
				Index: int(e.Index),
				ID:    e.ContentBlock.ID,
				Name:  e.ContentBlock.Name,
			}}}, true
		}

	case anthropic.ContentBlockDeltaEvent:
		switch e.Delta.Type {
		case "text_delta":
			return chat.Fragment{TextDelta: e.Delta.Text}, true
		case "input_json_delta":
			return chat.Fragment{ToolDeltas: []chat.ToolCallDelta{{
				Index:     int(e.Index),
				ArgsDelta: e.Delta.PartialJSON,
			}}}, true
		}
	}
	return chat.Fragment{}, false
}
