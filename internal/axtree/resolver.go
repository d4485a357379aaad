// File: internal/axtree/resolver.go
package axtree

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrElementNotFound reports that a target description matched no element
// with sufficient confidence. The wrapped message names the closest miss so
// the agent can adjust.
var ErrElementNotFound = errors.New("element not found")

// fuzzyAcceptThreshold is the maximum normalized edit distance accepted for a
// fuzzy match. Above it we refuse to click: clicking the wrong element is
// worse than reporting failure.
const fuzzyAcceptThreshold = 0.5

var disambiguatorPattern = regexp.MustCompile(`#(\d+)#`)

// Resolve finds the single interactive element best matching the free-text
// target description, honoring an optional #N# disambiguator suffix. The
// description is matched against the same "role: full subtree text" keys the
// serializer renders, since the agent quotes that text back.
func Resolve(tree *Tree, target string) (NodeID, error) {
	index := 0
	if m := disambiguatorPattern.FindStringSubmatch(target); m != nil {
		n, _ := strconv.Atoi(m[1])
		index = n - 1
		target = strings.TrimSpace(strings.Replace(target, m[0], "", 1))
	}

	keys, byKey := keyElements(tree)
	if len(keys) == 0 {
		return NoNode, fmt.Errorf("%w: page has no interactive elements", ErrElementNotFound)
	}

	// Exact/substring containment first.
	var containing []string
	for _, key := range keys {
		if strings.Contains(key, target) {
			containing = append(containing, key)
		}
	}

	if len(containing) == 1 {
		elements := byKey[containing[0]]
		if index != 0 || len(elements) == 1 {
			return pick(elements, index, containing[0])
		}
	}

	// Fuzzy fallback: best normalized edit distance below the acceptance
	// threshold wins.
	bestKey := ""
	bestDist := 1.0
	for _, key := range keys {
		if d := normalizedDistance(target, key); d < bestDist {
			bestDist = d
			bestKey = key
		}
	}

	if bestKey == "" || bestDist >= fuzzyAcceptThreshold {
		return NoNode, fmt.Errorf("%w: no match for %q, closest match was %q",
			ErrElementNotFound, target, bestKey)
	}

	return pick(byKey[bestKey], index, bestKey)
}

func pick(elements []NodeID, index int, key string) (NodeID, error) {
	if index < 0 || index >= len(elements) {
		return NoNode, fmt.Errorf("%w: %q has %d occurrence(s), index %d requested",
			ErrElementNotFound, key, len(elements), index+1)
	}
	return elements[index], nil
}

// keyElements maps "role: name" keys to the elements sharing that key, in
// emission order, and returns the keys sorted for deterministic iteration.
func keyElements(tree *Tree) ([]string, map[string][]NodeID) {
	byKey := make(map[string][]NodeID)

	var walk func(id NodeID)
	walk = func(id NodeID) {
		node := tree.Node(id)
		if IsInteractive(node.Role) && node.BackendID != 0 {
			key := fmt.Sprintf("%s: %s", node.Role, strings.TrimSpace(node.Name))
			byKey[key] = append(byKey[key], id)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}

	if tree != nil && tree.Root != NoNode {
		walk(tree.Root)
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, byKey
}

func normalizedDistance(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}
