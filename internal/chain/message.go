// File: internal/chain/message.go
package chain

import (
	"time"
)

// Conversation roles on the LLM wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Redacted replaces field values dropped from projections for token budget
// reasons. The key stays present so the agent knows the field existed.
const Redacted = "REMOVED DUE TO TOKEN LIMITS"

// DateLayout is the human-readable timestamp format used in message bodies.
const DateLayout = "01/02/2006, 15:04:05 MST"

// ChatMessage is one role/content pair as sent to the LLM.
type ChatMessage struct {
	Role    string
	Content string
}

// Message is one entry of the conversation transcript. Messages are
// append-only; projection for the LLM never mutates them.
type Message interface {
	Role() string
	// FullText is the complete message body as constructed.
	FullText() string
	// ChatText is the human-visible subset, possibly empty.
	ChatText() string
	SentAt() time.Time
	// Cost is the token cost attributed to this message, in dollars.
	Cost() float64
}

// UserMessage is a direct human instruction. It is never truncated in
// projections; only its timestamp ages out.
type UserMessage struct {
	params Params
	text   string
	date   time.Time
}

// NewUserMessage wraps a human instruction with its sent-at timestamp.
func NewUserMessage(text string, date time.Time) *UserMessage {
	return &UserMessage{
		params: Params{
			{Key: "Sent At", Value: date.Format(DateLayout)},
			{Key: "USER DIRECT MESSAGE", Value: text},
		},
		text: text,
		date: date,
	}
}

func (m *UserMessage) Role() string      { return RoleUser }
func (m *UserMessage) FullText() string  { return m.params.Render() }
func (m *UserMessage) ChatText() string  { return m.text }
func (m *UserMessage) SentAt() time.Time { return m.date }
func (m *UserMessage) Cost() float64     { return 0 }

func (m *UserMessage) forAI(index int) *ChatMessage {
	params := m.params.Clone()
	if index > 1 {
		params.Delete("Sent At")
	}
	return &ChatMessage{Role: RoleUser, Content: params.Render()}
}

// AppMessage is the structured key->value state snapshot generated after each
// action executes. It is sent with the user role and carries no chat text.
type AppMessage struct {
	params Params
	date   time.Time
}

// NewAppMessage builds an app message from the action result fields,
// stamping the sent-at time.
func NewAppMessage(params Params, date time.Time) *AppMessage {
	p := params.Clone()
	p.Set("Sent At", date.Format(DateLayout))
	return &AppMessage{params: p, date: date}
}

func (m *AppMessage) Role() string      { return RoleUser }
func (m *AppMessage) FullText() string  { return m.params.Render() }
func (m *AppMessage) ChatText() string  { return "" }
func (m *AppMessage) SentAt() time.Time { return m.date }
func (m *AppMessage) Cost() float64     { return 0 }

// Params exposes the message fields for projection decisions.
func (m *AppMessage) Params() Params { return m.params }

// forAI projects the snapshot for the LLM. Older snapshots progressively lose
// fields: page text survives only on the newest snapshot, find results on the
// two newest, and structural metadata on the two newest; the page URL is also
// dropped when it matches the next-newer snapshot (unchanged state).
func (m *AppMessage) forAI(index, maxAIMessages int, nextNewer *AppMessage) *ChatMessage {
	if index >= maxAIMessages {
		return nil
	}

	params := m.params.Clone()

	if index > 1 {
		if nextNewer != nil {
			thisURL, _ := params.Get("Page URL")
			newerURL, ok := nextNewer.params.Get("Page URL")
			if ok && thisURL == newerURL {
				params.Delete("Page URL")
			}
		}
		params.Delete("Sent At")
		params.Delete("Page Number")
		params.Delete("Notice")
		if params.Has("All Find Results") {
			params.Set("All Find Results", Redacted)
		}
	}

	if index > 0 && params.Has("Page Text") {
		params.Set("Page Text", Redacted)
	}

	return &ChatMessage{Role: RoleUser, Content: params.Render()}
}

// SystemMessage is an ad hoc informational notice (e.g. elision accounting).
type SystemMessage struct {
	params Params
	date   time.Time
}

// NewSystemMessage wraps notice fields in a system-role message.
func NewSystemMessage(params Params, date time.Time) *SystemMessage {
	return &SystemMessage{params: params, date: date}
}

func (m *SystemMessage) Role() string      { return RoleSystem }
func (m *SystemMessage) FullText() string  { return m.params.Render() }
func (m *SystemMessage) ChatText() string  { return "" }
func (m *SystemMessage) SentAt() time.Time { return m.date }
func (m *SystemMessage) Cost() float64     { return 0 }

// Chain is the ordered conversation transcript. Only the driver appends;
// projection reads but never mutates.
type Chain struct {
	msgs []Message
}

// NewChain starts a transcript seeded with the system prompt.
func NewChain(prompt *SystemPrompt) *Chain {
	return &Chain{msgs: []Message{prompt}}
}

// Append adds messages to the end of the transcript.
func (c *Chain) Append(msgs ...Message) {
	c.msgs = append(c.msgs, msgs...)
}

// Messages returns the transcript in conversation order.
func (c *Chain) Messages() []Message { return c.msgs }

// Len returns the transcript length.
func (c *Chain) Len() int { return len(c.msgs) }

// Prompt returns the system prompt heading the chain, if present.
func (c *Chain) Prompt() *SystemPrompt {
	if len(c.msgs) > 0 {
		if sp, ok := c.msgs[0].(*SystemPrompt); ok {
			return sp
		}
	}
	return nil
}

// TotalCost sums the cost attributed to every message.
func (c *Chain) TotalCost() float64 {
	var total float64
	for _, m := range c.msgs {
		total += m.Cost()
	}
	return total
}

// LastCost returns the cost of the most recent message.
func (c *Chain) LastCost() float64 {
	if len(c.msgs) == 0 {
		return 0
	}
	return c.msgs[len(c.msgs)-1].Cost()
}
