// File: internal/axtree/types.go
package axtree

import (
	"github.com/chromedp/cdproto/cdp"
)

// NodeID indexes a node inside a Tree's arena.
type NodeID int

// NoNode marks the absence of a node (a skipped or detached subtree).
const NoNode NodeID = -1

// Node is one semantic node of the accessibility tree. Child links are arena
// indices rather than pointers, which keeps ownership a strict tree and makes
// snapshots trivially comparable in tests.
type Node struct {
	Role    string
	Name    string
	Value   string
	Ignored bool

	Focused      bool
	Checked      bool
	Selected     bool
	HeadingLevel int

	// Destination carries the href of link/button elements, already resolved
	// at build time so serialization stays a pure function of the snapshot.
	Destination string

	// Visible is false when the live element had no renderable box at build
	// time. Invisible interactive elements are skipped by the serializer.
	Visible bool

	// BackendID is the opaque handle to the live DOM element; zero for purely
	// structural nodes.
	BackendID cdp.BackendNodeID
	FrameID   cdp.FrameID

	Children []NodeID
}

// Tree is an arena-backed accessibility tree snapshot.
type Tree struct {
	Nodes []Node
	Root  NodeID
}

// Add appends a node to the arena and returns its ID.
func (t *Tree) Add(n Node) NodeID {
	t.Nodes = append(t.Nodes, n)
	return NodeID(len(t.Nodes) - 1)
}

// Node returns a pointer into the arena. The pointer is invalidated by Add.
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Role sets, mirroring the ARIA semantics the serializer and resolver care
// about.
var (
	interactiveRoles = map[string]bool{
		"link": true, "button": true, "combobox": true, "searchbox": true,
		"textbox": true, "select": true, "menuitem": true,
		"menuitemcheckbox": true, "menuitemradio": true, "radio": true,
		"checkbox": true, "option": true, "slider": true, "spinbutton": true,
		"switch": true, "tab": true, "treeitem": true,
	}

	editableRoles = map[string]bool{
		"searchbox": true, "combobox": true, "textbox": true,
	}

	checkableRoles = map[string]bool{
		"checkbox": true, "menuitemcheckbox": true, "radio": true, "switch": true,
	}

	selectableRoles = map[string]bool{
		"switch": true, "tab": true, "treeitem": true,
	}

	// destinationRoles are the interactive roles that can carry a navigable
	// destination URL.
	destinationRoles = map[string]bool{
		"link": true, "button": true,
	}
)

// IsInteractive reports whether the role belongs to the closed interactive
// set.
func IsInteractive(role string) bool {
	return interactiveRoles[role]
}
