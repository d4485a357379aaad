// File: internal/textpage/paginator.go
package textpage

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// TruncatedAboveMarker tells the agent that earlier page content was cut.
	TruncatedAboveMarker = "# ^ TRUNCATED"
	// TruncatedBelowMarker tells the agent that later page content was cut.
	TruncatedBelowMarker = "# v TRUNCATED"
)

// Tokenizer is the exact token codec used to slice page text. Token counts
// govern what literally fits in the model's context, so this must be the
// model-consistent tokenizer, not an approximation.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// tiktokenTokenizer adapts pkoukk/tiktoken-go. The encoding is initialized
// lazily since the BPE data may be fetched on first use.
type tiktokenTokenizer struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
	initErr  error
}

// NewTiktoken returns a Tokenizer for the named tiktoken encoding
// (e.g. "cl100k_base").
func NewTiktoken(encoding string) Tokenizer {
	return &tiktokenTokenizer{encoding: encoding}
}

func (t *tiktokenTokenizer) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	if err := t.init(); err != nil {
		return nil
	}
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	if err := t.init(); err != nil {
		return ""
	}
	return t.enc.Decode(tokens)
}

// Paginator divides serialized page text into fixed-size token pages.
type Paginator struct {
	tok Tokenizer
}

// New creates a Paginator over the given tokenizer.
func New(tok Tokenizer) *Paginator {
	return &Paginator{tok: tok}
}

// Count returns the exact token length of text.
func (p *Paginator) Count(text string) int {
	return len(p.tok.Encode(text))
}

// Truncate returns the substring of text spanning tokens [start, end).
func (p *Paginator) Truncate(text string, start, end int) string {
	tokens := p.tok.Encode(text)
	if start < 0 {
		start = 0
	}
	if start >= len(tokens) {
		return ""
	}
	if end > len(tokens) {
		end = len(tokens)
	}
	if start >= end {
		return ""
	}
	return p.tok.Decode(tokens[start:end])
}

// TotalPages returns the number of token pages text occupies, never less
// than 1.
func (p *Paginator) TotalPages(text string, tokensPerPage int) int {
	total := (p.Count(text) + tokensPerPage - 1) / tokensPerPage
	if total < 1 {
		total = 1
	}
	return total
}

// Page renders one token page of text with truncation markers. Out-of-range
// page indices are clamped to [1, totalPages]: paging up from page 1 or down
// past the last page is a no-op rather than an error. Returns the rendered
// page, the clamped page index, and the total page count.
func (p *Paginator) Page(text string, page, tokensPerPage int) (string, int, int) {
	totalPages := p.TotalPages(text, tokensPerPage)

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	out := ""
	if page > 1 {
		out += TruncatedAboveMarker + "\n"
	}

	out += p.Truncate(text, tokensPerPage*(page-1), tokensPerPage*page)

	if page != totalPages {
		out += "\n" + TruncatedBelowMarker
	}

	return out, page, totalPages
}
