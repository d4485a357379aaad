// File: internal/axtree/builder.go
package axtree

import (
	"context"
	"errors"
	"strings"

	"github.com/chromedp/cdproto/accessibility"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Backend abstracts the CDP calls the builder needs, allowing the tree
// construction logic to be exercised against a fake in tests.
type Backend interface {
	// FullAXTree fetches the complete accessibility tree for one frame.
	// An empty frame ID targets the top frame.
	FullAXTree(ctx context.Context, frameID cdp.FrameID) ([]*accessibility.Node, error)

	// DescribeNode resolves a backend node to its DOM description (frame ID
	// for iframes, attributes for links).
	DescribeNode(ctx context.Context, backendID cdp.BackendNodeID) (*cdp.Node, error)

	// IsVisible reports whether the element currently has a renderable box.
	IsVisible(ctx context.Context, backendID cdp.BackendNodeID) (bool, error)
}

// CDPBackend is the production Backend, issuing raw cdproto commands. Its
// methods must run on a chromedp target context.
type CDPBackend struct{}

func (CDPBackend) FullAXTree(ctx context.Context, frameID cdp.FrameID) ([]*accessibility.Node, error) {
	p := accessibility.GetFullAXTree()
	if frameID != "" {
		p = p.WithFrameID(frameID)
	}
	return p.Do(ctx)
}

func (CDPBackend) DescribeNode(ctx context.Context, backendID cdp.BackendNodeID) (*cdp.Node, error) {
	return dom.DescribeNode().WithBackendNodeID(backendID).Do(ctx)
}

func (CDPBackend) IsVisible(ctx context.Context, backendID cdp.BackendNodeID) (bool, error) {
	box, err := dom.GetBoxModel().WithBackendNodeID(backendID).Do(ctx)
	if err != nil {
		// No box model means the element does not render (display:none,
		// detached, zero-sized).
		return false, nil
	}
	return box != nil && box.Width > 0 && box.Height > 0, nil
}

// Builder assembles an arena Tree from the live page, splicing nested frame
// trees into their parent at the Iframe node.
type Builder struct {
	backend Backend
	logger  *zap.Logger
}

// NewBuilder creates a Builder on top of the given Backend.
func NewBuilder(backend Backend, logger *zap.Logger) *Builder {
	return &Builder{backend: backend, logger: logger.Named("axtree")}
}

// Build fetches the accessibility tree of the top frame and every reachable
// child frame. Subtrees whose DOM elements detach mid-build are skipped, not
// fatal; only a failure to fetch the top frame is an error.
func (b *Builder) Build(ctx context.Context) (*Tree, error) {
	tree := &Tree{Root: NoNode}

	root, err := b.buildFrame(ctx, tree, "")
	if err != nil {
		return nil, err
	}

	tree.Root = root
	return tree, nil
}

func (b *Builder) buildFrame(ctx context.Context, tree *Tree, frameID cdp.FrameID) (NodeID, error) {
	axNodes, err := b.backend.FullAXTree(ctx, frameID)
	if err != nil {
		return NoNode, err
	}

	byID := make(map[accessibility.NodeID]*accessibility.Node, len(axNodes))
	var root *accessibility.Node
	for _, n := range axNodes {
		byID[n.NodeID] = n
		if n.ParentID == "" && root == nil {
			root = n
		}
	}
	if root == nil {
		return NoNode, errors.New("frame accessibility tree has no root node")
	}

	if frameID == "" {
		frameID = root.FrameID
	}

	return b.buildNode(ctx, tree, byID, root, frameID), nil
}

// buildNode recursively copies one AX node and its descendants into the
// arena. It returns NoNode when the subtree should be dropped.
func (b *Builder) buildNode(ctx context.Context, tree *Tree, byID map[accessibility.NodeID]*accessibility.Node, ax *accessibility.Node, frameID cdp.FrameID) NodeID {
	n := Node{
		Role:      axString(ax.Role),
		Name:      axString(ax.Name),
		Value:     axString(ax.Value),
		Ignored:   ax.Ignored,
		Visible:   true,
		BackendID: ax.BackendDOMNodeID,
		FrameID:   frameID,
	}

	for _, p := range ax.Properties {
		switch p.Name {
		case accessibility.PropertyNameFocused:
			n.Focused = axBool(p.Value)
		case accessibility.PropertyNameChecked:
			n.Checked = axBool(p.Value)
		case accessibility.PropertyNameSelected:
			n.Selected = axBool(p.Value)
		case accessibility.PropertyNameLevel:
			n.HeadingLevel = axInt(p.Value)
		}
	}

	id := tree.Add(n)

	var children []NodeID
	for _, childAXID := range ax.ChildIDs {
		child, ok := byID[childAXID]
		if !ok {
			continue
		}

		if axString(child.Role) == "Iframe" {
			// Cross the frame boundary: resolve the child browsing context
			// and splice its own tree in place of the Iframe node.
			described, err := b.backend.DescribeNode(ctx, child.BackendDOMNodeID)
			if err != nil || described == nil || described.FrameID == "" {
				b.logger.Debug("Skipping unresolvable iframe node.", zap.Error(err))
				continue
			}

			sub, err := b.buildFrame(ctx, tree, described.FrameID)
			if err != nil {
				b.logger.Debug("Skipping child frame.",
					zap.String("frame_id", string(described.FrameID)), zap.Error(err))
				continue
			}
			if sub != NoNode {
				children = append(children, sub)
			}
			continue
		}

		if cid := b.buildNode(ctx, tree, byID, child, frameID); cid != NoNode {
			children = append(children, cid)
		}
	}

	tree.Node(id).Children = children

	role := tree.Node(id).Role
	if IsInteractive(role) || role == "image" {
		b.finishInteractive(ctx, tree, id)
		if tree.Node(id).Role == "" {
			return NoNode
		}
	}

	return id
}

// finishInteractive flattens an interactive (or image) node: its name becomes
// the concatenated text of its whole subtree so the element is addressable by
// its complete visible label, and the now-redundant children are dropped.
func (b *Builder) finishInteractive(ctx context.Context, tree *Tree, id NodeID) {
	name := strings.TrimSpace(strings.Join(subtreeText(tree, id, nil), " "))
	if name == "" && IsInteractive(tree.Node(id).Role) {
		name = "unnamed"
	}

	node := tree.Node(id)
	node.Name = name
	node.Children = nil

	if node.BackendID == 0 {
		return
	}

	if IsInteractive(node.Role) {
		visible, err := b.backend.IsVisible(ctx, node.BackendID)
		if err != nil {
			// Element detached while we were looking at it (page navigated
			// mid-build). Drop the subtree.
			b.logger.Debug("Dropping detached element.", zap.Error(err))
			node.Role = ""
			return
		}
		node.Visible = visible
	}

	if destinationRoles[node.Role] {
		if described, err := b.backend.DescribeNode(ctx, node.BackendID); err == nil && described != nil {
			node.Destination = described.AttributeValue("href")
		}
	}
}

// subtreeText collects the distinct accessible names of a subtree in
// pre-order. Names of ignored nodes are skipped; duplicates keep their first
// occurrence.
func subtreeText(tree *Tree, id NodeID, seen map[string]bool) []string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	var out []string
	node := tree.Node(id)
	if !node.Ignored && node.Name != "" && !seen[node.Name] {
		seen[node.Name] = true
		out = append(out, node.Name)
	}

	for _, child := range node.Children {
		out = append(out, subtreeText(tree, child, seen)...)
	}
	return out
}

// -- AXValue decoding helpers --

func axString(v *accessibility.Value) string {
	if v == nil || len(v.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err == nil {
		return s
	}
	return strings.Trim(string(v.Value), `"`)
}

func axBool(v *accessibility.Value) bool {
	if v == nil || len(v.Value) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(v.Value, &b); err == nil {
		return b
	}
	// Tristate properties (checked) encode as the string "true"/"false"/"mixed".
	var s string
	if err := json.Unmarshal(v.Value, &s); err == nil {
		return s == "true"
	}
	return false
}

func axInt(v *accessibility.Value) int {
	if v == nil || len(v.Value) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(v.Value, &f); err == nil {
		return int(f)
	}
	return 0
}
