// File: internal/chain/params.go
package chain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Param is one key/value field of a structured message body. Values are
// strings or string slices (instruction lists in the system prompt).
type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered set of fields. YAML map types would sort
// keys on marshal; field order is part of the payload the model sees, so we
// keep our own ordering.
type Params []Param

// MarshalYAML renders the params as a YAML mapping preserving field order.
func (p Params) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range p {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: kv.Key}
		valNode := &yaml.Node{}
		if err := valNode.Encode(kv.Value); err != nil {
			return nil, fmt.Errorf("encode param %q: %w", kv.Key, err)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// Render serializes the params to YAML text.
func (p Params) Render() string {
	out, err := yaml.Marshal(p)
	if err != nil {
		return ""
	}
	return string(out)
}

// Get returns the string value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			s, ok := kv.Value.(string)
			return s, ok
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	for _, kv := range p {
		if kv.Key == key {
			return true
		}
	}
	return false
}

// Set replaces the value for key, appending the field if absent.
func (p *Params) Set(key string, value any) {
	for i, kv := range *p {
		if kv.Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// Delete removes key, reporting whether it was present.
func (p *Params) Delete(key string) bool {
	for i, kv := range *p {
		if kv.Key == key {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a shallow copy safe for per-projection mutation.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	copy(out, p)
	return out
}
