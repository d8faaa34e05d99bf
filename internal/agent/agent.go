package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/petasbytes/book-tutor/internal/assembly"
	"github.com/petasbytes/book-tutor/internal/chat"
	"github.com/petasbytes/book-tutor/memory"
	"github.com/petasbytes/book-tutor/tools"
)

// ErrToolRoundsExceeded signals that the model kept requesting tools past
// the per-input round bound.
var ErrToolRoundsExceeded = errors.New("agent: tool round limit exceeded")

const defaultMaxToolRounds = 8

// Streamer opens one streaming completion over a conversation snapshot.
type Streamer interface {
	Stream(ctx context.Context, msgs []chat.Message, defs []tools.Definition) (chat.FragmentStream, error)
}

// Options configures an Orchestrator.
type Options struct {
	// MaxToolRounds bounds model/tool alternations per input; <= 0 uses
	// the default of 8.
	MaxToolRounds int
	Logger        *zap.Logger
}

// Orchestrator drives one conversation. Not safe for concurrent use: one
// Input call at a time.
type Orchestrator struct {
	streamer  Streamer
	registry  *tools.Registry
	mem       *memory.Manager
	log       *zap.Logger
	maxRounds int
}

// New wires a conversation loop over the given provider, tools, and history.
func New(s Streamer, reg *tools.Registry, mem *memory.Manager, opts Options) *Orchestrator {
	maxRounds := opts.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		streamer:  s,
		registry:  reg,
		mem:       mem,
		log:       log,
		maxRounds: maxRounds,
	}
}

// Input processes one user message to completion, emitting ordered events
// on the channel as the turn unfolds. The caller owns ctx: cancelling it
// aborts the turn, including a consumer that stops reading events. The
// channel is not closed; the caller closes it after Input returns.
//
// A stream that completes cleanly but yields neither text nor refusal nor
// tool invocations ends the input successfully with no assistant message
// recorded and no events emitted; only the warning log distinguishes it
// from an ordinary short answer.
func (o *Orchestrator) Input(ctx context.Context, text string, events chan<- Event) error {
	turnID := uuid.NewString()
	log := o.log.With(zap.String("turn_id", turnID))

	// History is only ever evicted between turns, so a turn always sees a
	// consistent snapshot.
	o.mem.EvictToBudget()

	if err := o.append(ctx, log, chat.NewUserMessage(text)); err != nil {
		return err
	}

	for round := 0; round < o.maxRounds; round++ {
		turn, err := o.streamOnce(ctx, log.With(zap.Int("round", round)), events)
		if err != nil {
			return err
		}

		msg := chat.Message{Role: chat.RoleAssistant}
		if turn.Content != "" {
			msg.Content = turn.Content
		}
		if turn.Refusal != "" {
			msg.Refusal = turn.Refusal
			if err := emit(ctx, events, Event{Kind: EventRefusal, Text: turn.Refusal}); err != nil {
				return err
			}
		}
		msg.ToolCalls = turn.Calls

		if msg.Content == "" && msg.Refusal == "" && len(msg.ToolCalls) == 0 {
			log.Warn("empty turn from provider")
			return nil
		}
		if err := o.append(ctx, log, msg); err != nil {
			return err
		}
		if len(turn.Calls) == 0 {
			return nil
		}

		if err := o.runTools(ctx, log, events, turn.Calls); err != nil {
			return err
		}
	}

	log.Warn("tool round limit exceeded", zap.Int("max_rounds", o.maxRounds))
	return fmt.Errorf("%w: %d rounds", ErrToolRoundsExceeded, o.maxRounds)
}

// streamOnce runs one completion stream to the end, emitting content deltas
// as they arrive. Any stream error aborts the round with nothing recorded.
func (o *Orchestrator) streamOnce(ctx context.Context, log *zap.Logger, events chan<- Event) (assembly.Turn, error) {
	stream, err := o.streamer.Stream(ctx, o.mem.Messages(), o.registry.Definitions())
	if err != nil {
		return assembly.Turn{}, fmt.Errorf("open stream: %w", err)
	}

	asm := assembly.New()
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("stream aborted", zap.Error(err))
			return assembly.Turn{}, err
		}
		asm.Add(frag)
		if frag.TextDelta != "" {
			if err := emit(ctx, events, Event{Kind: EventContent, Text: frag.TextDelta}); err != nil {
				return assembly.Turn{}, err
			}
		}
	}
	return asm.Finalize(), nil
}

// runTools announces, dispatches, and records one round's invocations.
// Individual tool failures come back as error results and do not abort
// the turn.
func (o *Orchestrator) runTools(ctx context.Context, log *zap.Logger, events chan<- Event, calls []chat.ToolCall) error {
	for i := range calls {
		if err := emit(ctx, events, Event{Kind: EventToolCall, Call: &calls[i]}); err != nil {
			return err
		}
	}

	results := o.registry.Call(ctx, calls)
	for i := range results {
		if results[i].IsError {
			log.Warn("tool failed",
				zap.String("tool", calls[i].Name),
				zap.String("result", results[i].Content))
		}
		if err := emit(ctx, events, Event{Kind: EventToolResult, Result: &results[i]}); err != nil {
			return err
		}
		if err := o.append(ctx, log, chat.NewToolMessage(results[i])); err != nil {
			return err
		}
	}
	return nil
}

// append records a message, tolerating flush failures: the log is retained
// in memory and a later append retries persistence.
func (o *Orchestrator) append(ctx context.Context, log *zap.Logger, msg chat.Message) error {
	err := o.mem.Append(ctx, msg)
	if errors.Is(err, memory.ErrFlush) {
		log.Warn("history flush failed, retrying on next append", zap.Error(err))
		return nil
	}
	return err
}

// emit delivers one event, honoring cancellation while the consumer is not
// reading.
func emit(ctx context.Context, events chan<- Event, e Event) error {
	select {
	case events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
