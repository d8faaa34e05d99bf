package chat

// Fragment is one unit of a streamed response: a partial increment of text,
// refusal text, or tool-call data. A single fragment may carry any mix of
// the three; empty fields mean "no increment of that kind".
type Fragment struct {
	TextDelta    string
	RefusalDelta string
	ToolDeltas   []ToolCallDelta
}

// ToolCallDelta extends the in-progress tool invocation at Index.
// ID and Name are supplied by the first delta for an index; ArgsDelta
// fragments arrive on subsequent deltas and are concatenated in order.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	ArgsDelta string
}

// FragmentStream yields fragments in provider order. Recv returns io.EOF
// when the stream completed cleanly; any other error is a transport failure
// and aborts the current input.
type FragmentStream interface {
	Recv() (Fragment, error)
}
