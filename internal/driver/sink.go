// File: internal/driver/sink.go
package driver

// EventSink receives the driver's outward-facing events. The core emits
// discrete events and leaves rendering entirely to the host.
type EventSink interface {
	// Chat delivers agent text the human should read.
	Chat(text string)
	// Action announces the single function call being executed this turn.
	Action(description string)
	// Info delivers out-of-band notices (errors surfaced to the human).
	Info(text string)
	// CostDelta reports new LLM spend and the running session total.
	CostDelta(delta, total float64)
	// Overlay toggles browser visibility for human intervention.
	Overlay(visible bool)
	// Spinner toggles the busy indicator.
	Spinner(active bool)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Chat(string)              {}
func (NopSink) Action(string)            {}
func (NopSink) Info(string)              {}
func (NopSink) CostDelta(_, _ float64)   {}
func (NopSink) Overlay(bool)             {}
func (NopSink) Spinner(bool)             {}
