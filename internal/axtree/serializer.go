// File: internal/axtree/serializer.go
package axtree

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// FocusGlyph marks the text-entry element that currently holds input
	// focus.
	FocusGlyph = "►"
	// CheckedGlyph marks checked or selected elements.
	CheckedGlyph = "☑"
)

var (
	tokenPattern   = regexp.MustCompile(`\{([^:]+):\s*(.*)\}(.*)`)
	newlineRuns    = regexp.MustCompile(`\n+`)
	schemePrefixes = []string{"https://www.", "http://www.", "https://", "http://"}
)

// Serialize renders a tree snapshot into the linear text form consumed by the
// language model. It is a pure function of the snapshot: serializing the same
// tree twice yields byte-identical output, including the #N# numbering.
func Serialize(tree *Tree, includeURLs bool) string {
	if tree == nil || tree.Root == NoNode {
		return ""
	}

	var lines []string
	emit(tree, tree.Root, includeURLs, &lines)
	lines = disambiguate(lines)

	text := strings.Join(lines, "\n")
	return newlineRuns.ReplaceAllString(text, "\n")
}

func emit(tree *Tree, id NodeID, includeURLs bool, lines *[]string) {
	node := tree.Node(id)

	recurse := func() {
		for _, child := range node.Children {
			emit(tree, child, includeURLs, lines)
		}
	}

	if node.Ignored || node.Role == "" {
		recurse()
		return
	}

	switch {
	case destinationRoles[node.Role]:
		line := fmt.Sprintf("{%s: %s}", node.Role, node.Name)
		if includeURLs && node.Destination != "" {
			line += fmt.Sprintf("(%s)", TruncateURL(node.Destination, URLTruncationLength))
		}
		*lines = append(*lines, line)

	case interactiveRoles[node.Role]:
		if !node.Visible {
			// The element itself does not render; any text content below it
			// is still part of the page.
			recurse()
			return
		}

		glyph := ""
		switch {
		case editableRoles[node.Role] && node.Focused:
			glyph = FocusGlyph + " "
		case checkableRoles[node.Role] && node.Checked:
			glyph = CheckedGlyph + " "
		case selectableRoles[node.Role] && node.Selected:
			glyph = CheckedGlyph + " "
		}

		value := ""
		if editableRoles[node.Role] {
			value = fmt.Sprintf("[%s]", node.Value)
		}

		*lines = append(*lines, fmt.Sprintf("{%s%s: %s}%s", glyph, node.Role, node.Name, value))

	case node.Role == "RootWebArea":
		*lines = append(*lines, fmt.Sprintf("%% START %s", node.Name))
		recurse()
		*lines = append(*lines, fmt.Sprintf("%% END %s", node.Name))

	case node.Role == "heading":
		level := node.HeadingLevel
		if level < 1 {
			level = 1
		}
		*lines = append(*lines, strings.Repeat("#", level)+" "+node.Name)
		recurse()

	case node.Role == "image":
		if name := strings.TrimSpace(node.Name); name != "" {
			*lines = append(*lines, fmt.Sprintf("<image: %s>", name))
		}

	case node.Role == "generic" || node.Role == "none":
		// Structural wrappers are transparent.
		recurse()

	default:
		if text := strings.TrimSpace(node.Name); text != "" {
			*lines = append(*lines, text)
		}
		recurse()
	}
}

// disambiguate appends a stable #N# suffix to interactive-token labels that
// collide, N being the 1-based rank within the colliding group in emission
// order.
func disambiguate(lines []string) []string {
	counts := make(map[string]int)
	ranks := make(map[string]int)

	for _, line := range lines {
		if m := tokenPattern.FindStringSubmatch(line); m != nil {
			counts[m[1]+": "+m[2]]++
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		m := tokenPattern.FindStringSubmatch(line)
		if m == nil {
			out[i] = line
			continue
		}

		key := m[1] + ": " + m[2]
		if counts[key] <= 1 {
			out[i] = line
			continue
		}

		ranks[key]++
		if m[2] == "" {
			out[i] = fmt.Sprintf("{%s: #%d#}%s", m[1], ranks[key], m[3])
		} else {
			out[i] = fmt.Sprintf("{%s: %s #%d#}%s", m[1], m[2], ranks[key], m[3])
		}
	}
	return out
}

// URLTruncationLength is the character budget for rendered destinations.
const URLTruncationLength = 40

// TruncateURL strips the scheme and www. prefix and hard-truncates the rest
// to max characters, marking the cut with an ellipsis.
func TruncateURL(url string, max int) string {
	for _, prefix := range schemePrefixes {
		if strings.HasPrefix(url, prefix) {
			url = strings.TrimPrefix(url, prefix)
			break
		}
	}
	if len(url) > max {
		return url[:max] + "..."
	}
	return url
}

// Links returns the full destination URLs of every link and button in the
// tree, in emission order. The driver uses these to repair truncated URLs the
// model quotes back in chat.
func Links(tree *Tree) []string {
	if tree == nil || tree.Root == NoNode {
		return nil
	}

	var urls []string
	var walk func(id NodeID)
	walk = func(id NodeID) {
		node := tree.Node(id)
		if destinationRoles[node.Role] && node.Destination != "" {
			urls = append(urls, node.Destination)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(tree.Root)
	return urls
}
