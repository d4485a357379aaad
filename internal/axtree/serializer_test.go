// File: internal/axtree/serializer_test.go
package axtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// page assembles an arena tree from a root node builder.
func page(t *testing.T, build func(tree *Tree) NodeID) *Tree {
	t.Helper()
	tree := &Tree{Root: NoNode}
	tree.Root = build(tree)
	require.NotEqual(t, NoNode, tree.Root)
	return tree
}

func TestSerializeBasicPage(t *testing.T) {
	tree := page(t, func(tr *Tree) NodeID {
		heading := tr.Add(Node{Role: "heading", Name: "Welcome", HeadingLevel: 2, Visible: true})
		link := tr.Add(Node{Role: "link", Name: "Docs", Visible: true, BackendID: 1,
			Destination: "https://www.example.com/documentation/getting-started/install"})
		search := tr.Add(Node{Role: "textbox", Name: "Search", Value: "go", Focused: true, Visible: true, BackendID: 2})
		check := tr.Add(Node{Role: "checkbox", Name: "Remember me", Checked: true, Visible: true, BackendID: 3})
		logo := tr.Add(Node{Role: "image", Name: "Logo", Visible: true})
		text := tr.Add(Node{Role: "StaticText", Name: "Hello world", Visible: true})
		return tr.Add(Node{Role: "RootWebArea", Name: "Home", Visible: true,
			Children: []NodeID{heading, link, search, check, logo, text}})
	})

	got := Serialize(tree, false)
	want := strings.Join([]string{
		"% START Home",
		"## Welcome",
		"{link: Docs}",
		"{► textbox: Search}[go]",
		"{☑ checkbox: Remember me}",
		"<image: Logo>",
		"Hello world",
		"% END Home",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestSerializeIncludesTruncatedURLs(t *testing.T) {
	tree := page(t, func(tr *Tree) NodeID {
		link := tr.Add(Node{Role: "link", Name: "Docs", Visible: true, BackendID: 1,
			Destination: "https://www.example.com/documentation/getting-started/install"})
		return tr.Add(Node{Role: "RootWebArea", Name: "Home", Visible: true, Children: []NodeID{link}})
	})

	got := Serialize(tree, true)
	assert.Contains(t, got, "{link: Docs}(example.com/documentation/getting-star...)")

	// The paged view never leaks destinations.
	assert.NotContains(t, Serialize(tree, false), "example.com")
}

func TestSerializeDisambiguatesCollidingLabels(t *testing.T) {
	tree := page(t, func(tr *Tree) NodeID {
		first := tr.Add(Node{Role: "link", Name: "More", Visible: true, BackendID: 1})
		second := tr.Add(Node{Role: "link", Name: "More", Visible: true, BackendID: 2})
		button := tr.Add(Node{Role: "button", Name: "More", Visible: true, BackendID: 3})
		return tr.Add(Node{Role: "RootWebArea", Name: "Feed", Visible: true,
			Children: []NodeID{first, second, button}})
	})

	got := Serialize(tree, false)
	assert.Contains(t, got, "{link: More #1#}")
	assert.Contains(t, got, "{link: More #2#}")
	// The button's key does not collide with the links'.
	assert.Contains(t, got, "{button: More}")
	assert.NotContains(t, got, "{button: More #")
}

func TestSerializeInvisibleInteractiveRecursesChildren(t *testing.T) {
	tree := page(t, func(tr *Tree) NodeID {
		inner := tr.Add(Node{Role: "StaticText", Name: "hidden label", Visible: true})
		box := tr.Add(Node{Role: "textbox", Name: "ghost", Visible: false, BackendID: 1,
			Children: []NodeID{inner}})
		return tr.Add(Node{Role: "RootWebArea", Name: "Page", Visible: true, Children: []NodeID{box}})
	})

	got := Serialize(tree, false)
	assert.NotContains(t, got, "{textbox")
	assert.Contains(t, got, "hidden label")
}

func TestSerializeIsDeterministic(t *testing.T) {
	tree := page(t, func(tr *Tree) NodeID {
		a := tr.Add(Node{Role: "link", Name: "Same", Visible: true, BackendID: 1})
		b := tr.Add(Node{Role: "link", Name: "Same", Visible: true, BackendID: 2})
		c := tr.Add(Node{Role: "button", Name: "Go", Visible: true, BackendID: 3})
		return tr.Add(Node{Role: "RootWebArea", Name: "P", Visible: true, Children: []NodeID{a, b, c}})
	})

	assert.Equal(t, Serialize(tree, false), Serialize(tree, false))
	assert.Equal(t, Serialize(tree, true), Serialize(tree, true))
}

func TestTruncateURL(t *testing.T) {
	assert.Equal(t, "example.com/a", TruncateURL("https://www.example.com/a", 40))
	assert.Equal(t, "example.com/a", TruncateURL("http://example.com/a", 40))

	long := "https://example.com/" + strings.Repeat("x", 100)
	got := TruncateURL(long, 40)
	assert.Len(t, got, 43)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestLinksCollectsFullDestinations(t *testing.T) {
	tree := page(t, func(tr *Tree) NodeID {
		a := tr.Add(Node{Role: "link", Name: "A", Visible: true, BackendID: 1, Destination: "https://a.example.com/1"})
		b := tr.Add(Node{Role: "button", Name: "B", Visible: true, BackendID: 2, Destination: "https://b.example.com/2"})
		c := tr.Add(Node{Role: "link", Name: "C", Visible: true, BackendID: 3})
		return tr.Add(Node{Role: "RootWebArea", Name: "P", Visible: true, Children: []NodeID{a, b, c}})
	})

	assert.Equal(t, []string{"https://a.example.com/1", "https://b.example.com/2"}, Links(tree))
}
