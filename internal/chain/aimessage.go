// File: internal/chain/aimessage.go
package chain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ActionSpec tells the parser which action names exist without importing the
// action implementations. Multiline actions swallow the remainder of the
// reply as their payload (literal text to type may itself contain lines that
// look like action calls).
type ActionSpec interface {
	Recognized(name string) bool
	Multiline(name string) bool
}

// ActionCall is one parsed function call from an assistant reply.
type ActionCall struct {
	Name    string
	Payload string
}

// String renders the call the way the assistant wrote it.
func (c ActionCall) String() string {
	return fmt.Sprintf("%s: %s", c.Name, c.Payload)
}

// PageLink pairs a full destination URL with its truncated rendering in the
// serialized page text.
type PageLink struct {
	Full      string
	Truncated string
}

// truncatedToQuestion replaces an aged-out assistant reply body, keeping only
// its trailing question so unanswered questions stay visible to the model.
const truncatedToQuestion = "TRUNCATED TO QUESTION ONLY:\n...\n"

const planMovedNotice = "... (TRUNCATED & MOVED TO SYSTEM PROMPT)"

// leadMarkerPattern strips quote/bullet prefixes some models put before
// function-call lines.
var leadMarkerPattern = regexp.MustCompile(`^[>\-\s]+`)

// AIMessage is one assistant reply, parsed into its chat text, action calls,
// and trailing question at construction time.
type AIMessage struct {
	text     string
	chat     string
	isPlan   bool
	plan     string
	actions  []ActionCall
	question string
	date     time.Time
	cost     float64
}

// NewAIMessage parses a raw assistant reply. Action calls are lines of the
// form "name: payload" whose name (after stripping any leading quote or
// bullet markers, case-insensitively) the vocabulary recognizes; a multiline action
// consumes every remaining line and ends parsing. Truncated URLs quoted back
// from the page text are repaired against links before parsing, so goto_url
// payloads come out whole.
func NewAIMessage(text string, spec ActionSpec, policy QuestionPolicy, links []PageLink, date time.Time) *AIMessage {
	text = fixURLs(text, links)

	var (
		actions   []ActionCall
		chatLines []string
	)

	lines := strings.Split(text, "\n")
	isAction := make([]bool, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		stripped := leadMarkerPattern.ReplaceAllString(line, "")

		name, payload, found := strings.Cut(stripped, ": ")
		if found {
			name = strings.ToLower(strings.TrimSpace(name))
			if spec.Recognized(name) {
				if spec.Multiline(name) {
					payload = strings.Join(append([]string{payload}, lines[i+1:]...), "\n")
					actions = append(actions, ActionCall{Name: name, Payload: payload})
					for j := i; j < len(lines); j++ {
						isAction[j] = true
					}
					break
				}
				actions = append(actions, ActionCall{Name: name, Payload: strings.TrimSpace(payload)})
				isAction[i] = true
				continue
			}
		}

		chatLines = append(chatLines, line)
	}

	chat := strings.TrimSpace(strings.Join(chatLines, "\n"))

	// A "Goal:" line anywhere in the reply (outside action payloads) marks it
	// as a planning message; the plan body runs from that line onward.
	planStart := -1
	for i, line := range lines {
		if !isAction[i] && strings.HasPrefix(line, GoalPrefix) {
			planStart = i
			break
		}
	}
	var plan string
	if planStart >= 0 {
		plan = planText(lines[planStart:], isAction[planStart:])
	}

	return &AIMessage{
		text:     text,
		chat:     chat,
		isPlan:   planStart >= 0,
		plan:     plan,
		actions:  actions,
		question: policy.TrailingQuestion(chat),
		date:     date,
	}
}

// planText trims a planning reply down to the plan itself: trailing blank
// lines, question lines, and action calls are conversation, not plan, and
// must not land in the system prompt.
func planText(lines []string, isAction []bool) string {
	end := len(lines)
	for end > 0 {
		line := strings.TrimSpace(lines[end-1])
		if line == "" || strings.Contains(line, "?") || isAction[end-1] {
			end--
			continue
		}
		break
	}
	return strings.TrimSpace(strings.Join(lines[:end], "\n"))
}

func (m *AIMessage) Role() string      { return RoleAssistant }
func (m *AIMessage) FullText() string  { return m.text }
func (m *AIMessage) ChatText() string  { return m.chat }
func (m *AIMessage) SentAt() time.Time { return m.date }
func (m *AIMessage) Cost() float64     { return m.cost }

// AddCost attributes LLM spend to this reply.
func (m *AIMessage) AddCost(cost float64) { m.cost += cost }

// Actions returns the parsed function calls in reply order.
func (m *AIMessage) Actions() []ActionCall { return m.actions }

// Question returns the trailing open question, or "".
func (m *AIMessage) Question() string { return m.question }

// IsPlan reports whether the reply contains a planning block.
func (m *AIMessage) IsPlan() bool { return m.isPlan }

// PlanText returns the plan body of a planning message, with trailing
// questions and action calls stripped.
func (m *AIMessage) PlanText() string { return m.plan }

// forAI projects the reply for the LLM. A planning message always collapses
// to a pointer at the system prompt (the plan itself lives there, whatever
// the reply's age), keeping its question or first action so the
// conversational flow still reads. Other replies older than maxAIMessages
// collapse to their trailing question, or vanish outright.
func (m *AIMessage) forAI(index, maxAIMessages int) *ChatMessage {
	if m.IsPlan() {
		content := GoalPrefix + planMovedNotice
		if m.question != "" {
			content += "\n" + m.question
		} else if len(m.actions) > 0 {
			content += "\n" + m.actions[0].String()
		}
		return &ChatMessage{Role: RoleAssistant, Content: content}
	}

	if index >= maxAIMessages {
		if m.question == "" {
			return nil
		}
		return &ChatMessage{Role: RoleAssistant, Content: truncatedToQuestion + m.question}
	}

	return &ChatMessage{Role: RoleAssistant, Content: m.text}
}

// fixURLs replaces truncated URL renderings the model quoted back from page
// text with their full destinations. Longest truncations are substituted
// first so a shorter truncation never clobbers part of a longer one.
func fixURLs(text string, links []PageLink) string {
	repairable := make([]PageLink, 0, len(links))
	for _, link := range links {
		if link.Truncated != "" && link.Truncated != link.Full && strings.Contains(text, link.Truncated) {
			repairable = append(repairable, link)
		}
	}

	sort.SliceStable(repairable, func(i, j int) bool {
		return len(repairable[i].Truncated) > len(repairable[j].Truncated)
	})

	for _, link := range repairable {
		text = strings.ReplaceAll(text, link.Truncated, link.Full)
	}
	return text
}
