// File: internal/chain/minify.go
package chain

import (
	"fmt"
)

// Minifier projects the transcript into the message list actually sent to the
// LLM. The transcript itself is never mutated; every call re-derives the
// projection from scratch, so a message's rendering changes as it ages.
type Minifier struct {
	// MaxAIMessages is how many recent assistant replies keep their full
	// body; older replies collapse to their trailing question or are elided.
	// The same horizon drops old state snapshots entirely.
	MaxAIMessages int
}

// NewMinifier returns a Minifier with the given assistant-reply horizon.
func NewMinifier(maxAIMessages int) *Minifier {
	return &Minifier{MaxAIMessages: maxAIMessages}
}

// Project walks the transcript newest to oldest, applying per-kind aging
// counters, and returns the projected messages in conversation order. Each
// contiguous run of fully elided messages is replaced by a single system
// notice stating how many messages were cut, so the model can tell the
// transcript has gaps.
func (mf *Minifier) Project(c *Chain) []ChatMessage {
	msgs := c.Messages()

	var (
		out           []ChatMessage
		aiIndex       int
		appIndex      int
		userIndex     int
		dropped       int
		newerSnapshot *AppMessage
	)

	flush := func() {
		if dropped == 0 {
			return
		}
		notice := Params{{Key: "Notice", Value: fmt.Sprintf("Truncated %d messages", dropped)}}
		out = append(out, ChatMessage{Role: RoleSystem, Content: notice.Render()})
		dropped = 0
	}

	for i := len(msgs) - 1; i >= 0; i-- {
		var projected *ChatMessage

		switch m := msgs[i].(type) {
		case *AIMessage:
			projected = m.forAI(aiIndex, mf.MaxAIMessages)
			aiIndex++
		case *AppMessage:
			projected = m.forAI(appIndex, mf.MaxAIMessages, newerSnapshot)
			newerSnapshot = m
			appIndex++
		case *UserMessage:
			projected = m.forAI(userIndex)
			userIndex++
		default:
			projected = &ChatMessage{Role: msgs[i].Role(), Content: msgs[i].FullText()}
		}

		if projected == nil {
			dropped++
			continue
		}
		flush()
		out = append(out, *projected)
	}
	flush()

	// Walked newest first; conversation order is oldest first.
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}
