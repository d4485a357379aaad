// File: internal/textpage/paginator_test.go
package textpage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// runeTokenizer treats every rune as one token, keeping tests offline and
// byte-exact.
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	runes := []rune(text)
	out := make([]int, len(runes))
	for i, r := range runes {
		out[i] = int(r)
	}
	return out
}

func (runeTokenizer) Decode(tokens []int) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteRune(rune(tok))
	}
	return sb.String()
}

func TestCountAndTotalPages(t *testing.T) {
	p := New(runeTokenizer{})

	assert.Equal(t, 5, p.Count("hello"))
	assert.Equal(t, 1, p.TotalPages("", 10))
	assert.Equal(t, 1, p.TotalPages("hello", 10))
	assert.Equal(t, 2, p.TotalPages("hello world", 10))
	assert.Equal(t, 1, p.TotalPages(strings.Repeat("x", 10), 10))
}

func TestPageMarkers(t *testing.T) {
	p := New(runeTokenizer{})
	text := "aaaaabbbbbccccc" // 3 pages of 5

	first, page, total := p.Page(text, 1, 5)
	assert.Equal(t, 1, page)
	assert.Equal(t, 3, total)
	assert.Equal(t, "aaaaa\n"+TruncatedBelowMarker, first)

	middle, page, _ := p.Page(text, 2, 5)
	assert.Equal(t, 2, page)
	assert.Equal(t, TruncatedAboveMarker+"\nbbbbb\n"+TruncatedBelowMarker, middle)

	last, page, _ := p.Page(text, 3, 5)
	assert.Equal(t, 3, page)
	assert.Equal(t, TruncatedAboveMarker+"\nccccc", last)
}

func TestPageClampsOutOfRange(t *testing.T) {
	p := New(runeTokenizer{})
	text := "aaaaabbbbb"

	// Paging above page 1 is a no-op, not an error.
	_, page, total := p.Page(text, 0, 5)
	assert.Equal(t, 1, page)
	assert.Equal(t, 2, total)

	_, page, _ = p.Page(text, 99, 5)
	assert.Equal(t, 2, page)
}

func TestPageSinglePageHasNoMarkers(t *testing.T) {
	p := New(runeTokenizer{})
	out, page, total := p.Page("short", 1, 100)
	assert.Equal(t, "short", out)
	assert.Equal(t, 1, page)
	assert.Equal(t, 1, total)
}

func TestTruncateBounds(t *testing.T) {
	p := New(runeTokenizer{})
	assert.Equal(t, "bc", p.Truncate("abcd", 1, 3))
	assert.Equal(t, "abcd", p.Truncate("abcd", 0, 99))
	assert.Equal(t, "", p.Truncate("abcd", 9, 12))
	assert.Equal(t, "", p.Truncate("abcd", 3, 2))
}
