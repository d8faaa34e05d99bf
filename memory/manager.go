package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petasbytes/book-tutor/internal/chat"
)

// ErrFlush marks a persistence failure during a threshold flush. The
// in-memory log and the unflushed counter are retained, so a later append
// retries the flush; callers typically log this and continue.
var ErrFlush = errors.New("memory: flush failed")

// ErrOrphanToolResult rejects a tool-role message whose ToolCallID does not
// answer an unanswered invocation of the closest preceding assistant message.
var ErrOrphanToolResult = errors.New("memory: tool result answers no pending invocation")

// Identity names the conversation owner.
type Identity struct {
	StudentID int64
	BookID    int64
}

// Store persists full conversation logs per identity. Implementations must
// be safe for concurrent use across conversations; within one conversation
// the Manager is the single writer.
type Store interface {
	LoadMessages(ctx context.Context, id Identity) ([]chat.Message, error)
	SaveMessages(ctx context.Context, id Identity, msgs []chat.Message) error
}

// Options configures Load.
type Options struct {
	// Budget is the token budget; <= 0 means unbounded.
	Budget int
	// AutoSaveEvery flushes after this many unflushed appends; <= 0 means
	// flush on every append.
	AutoSaveEvery int
	// Counter estimates message cost; nil uses CountMessage.
	Counter TokenCounter
	// SystemPrompt seeds a fresh conversation when no log exists yet.
	SystemPrompt string
}

// Manager owns one conversation's ordered message log. Not safe for
// concurrent use: one orchestrator owns it at a time.
type Manager struct {
	store     Store
	id        Identity
	budget    int
	autoSave  int
	counter   TokenCounter
	msgs      []chat.Message
	estimate  int
	unflushed int
}

// Load restores the most recent persisted messages for the identity, oldest
// first, trimming whole groups from the oldest end until the budget fits.
// When nothing is stored yet, the log is seeded with the system prompt; the
// seed is persisted with the first threshold flush.
func Load(ctx context.Context, st Store, id Identity, opts Options) (*Manager, error) {
	msgs, err := st.LoadMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	counter := opts.Counter
	if counter == nil {
		counter = CountMessage
	}
	autoSave := opts.AutoSaveEvery
	if autoSave <= 0 {
		autoSave = 1
	}

	m := &Manager{
		store:    st,
		id:       id,
		budget:   opts.Budget,
		autoSave: autoSave,
		counter:  counter,
	}

	if len(msgs) == 0 && opts.SystemPrompt != "" {
		msgs = []chat.Message{{
			Role:      chat.RoleSystem,
			Content:   opts.SystemPrompt,
			CreatedAt: time.Now().UTC(),
		}}
		m.unflushed = 1
	}

	m.msgs = trimToBudget(msgs, m.budget, counter)
	for _, msg := range m.msgs {
		m.estimate += counter(msg)
	}
	return m, nil
}

// Append adds one message, updates the token estimate, and flushes the full
// log once the auto-save threshold of unflushed appends is reached. A flush
// failure is returned wrapped in ErrFlush; the message itself is retained.
func (m *Manager) Append(ctx context.Context, msg chat.Message) error {
	if msg.Role == chat.RoleTool {
		if err := m.checkToolResult(msg); err != nil {
			return err
		}
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	m.msgs = append(m.msgs, msg)
	m.estimate += m.counter(msg)
	m.unflushed++

	if m.unflushed >= m.autoSave {
		return m.Flush(ctx)
	}
	return nil
}

// AppendMany appends in order, with the same flush semantics per message.
func (m *Manager) AppendMany(ctx context.Context, msgs []chat.Message) error {
	for _, msg := range msgs {
		if err := m.Append(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Flush persists the full in-memory log. On success the unflushed counter
// resets; on failure state is unchanged and the error wraps ErrFlush.
func (m *Manager) Flush(ctx context.Context) error {
	if err := m.store.SaveMessages(ctx, m.id, m.msgs); err != nil {
		return errors.Join(ErrFlush, err)
	}
	m.unflushed = 0
	return nil
}

// EvictToBudget drops the oldest non-pinned groups until the estimate fits
// the budget again. Called between turns, never mid-turn.
func (m *Manager) EvictToBudget() {
	if m.budget <= 0 || m.estimate <= m.budget {
		return
	}
	m.msgs = trimToBudget(m.msgs, m.budget, m.counter)
	m.estimate = 0
	for _, msg := range m.msgs {
		m.estimate += m.counter(msg)
	}
}

// Messages returns a snapshot of the log for the next provider request.
func (m *Manager) Messages() []chat.Message {
	out := make([]chat.Message, len(m.msgs))
	copy(out, m.msgs)
	return out
}

// TokenEstimate returns the running cost estimate of the retained log.
func (m *Manager) TokenEstimate() int { return m.estimate }

// checkToolResult enforces the pairing invariant: walking back over the
// tool results already appended this turn, the next message must be an
// assistant message holding an unanswered invocation with this ID.
func (m *Manager) checkToolResult(msg chat.Message) error {
	answered := make(map[string]bool)
	i := len(m.msgs) - 1
	for ; i >= 0 && m.msgs[i].Role == chat.RoleTool; i-- {
		answered[m.msgs[i].ToolCallID] = true
	}
	if i < 0 || m.msgs[i].Role != chat.RoleAssistant {
		return fmt.Errorf("%w: id %q", ErrOrphanToolResult, msg.ToolCallID)
	}
	for _, call := range m.msgs[i].ToolCalls {
		if call.ID == msg.ToolCallID && !answered[call.ID] {
			return nil
		}
	}
	return fmt.Errorf("%w: id %q", ErrOrphanToolResult, msg.ToolCallID)
}
