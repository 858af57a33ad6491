package xmlrecord

import (
	"fmt"
	"strings"

	"github.com/parabank-conformance/internal/domain/shared"
)

// NormalizeSequence returns the elements at childKey as an ordered slice.
// A sequence is returned unchanged; a single element is wrapped in a
// one-element slice. childKey is a dotted path such as "accounts.account".
// A missing path segment is a MalformedResponseError.
func NormalizeSequence(node *Node, childKey string) ([]*Node, error) {
	v, err := lookup(node, childKey)
	if err != nil {
		return nil, err
	}
	return v.sequence(), nil
}

// NormalizeOptionalSequence behaves like NormalizeSequence but treats a missing
// final segment under an existing container as an empty sequence.
func NormalizeOptionalSequence(node *Node, childKey string) ([]*Node, error) {
	segments := splitKey(childKey)
	if len(segments) > 1 {
		parent, err := Lookup(node, strings.Join(segments[:len(segments)-1], "."))
		if err != nil {
			return nil, err
		}
		v, ok := parent.Child(segments[len(segments)-1])
		if !ok {
			return []*Node{}, nil
		}
		return v.sequence(), nil
	}
	return NormalizeSequence(node, childKey)
}

// Lookup returns the single element at the dotted path
func Lookup(node *Node, path string) (*Node, error) {
	v, err := lookup(node, path)
	if err != nil {
		return nil, err
	}
	if v.Kind != KindSingle {
		return nil, shared.MalformedResponseError{
			Resource: rootOf(path),
			Reason:   fmt.Sprintf("expected a single %s, found %d", path, len(v.Nodes)),
		}
	}
	return v.Nodes[0], nil
}

func lookup(node *Node, path string) (Value, error) {
	segments := splitKey(path)
	if node == nil || len(segments) == 0 {
		return Value{}, shared.MalformedResponseError{Resource: rootOf(path), Reason: "empty path or document"}
	}

	current := node
	var v Value
	for i, segment := range segments {
		var ok bool
		v, ok = current.Child(segment)
		if !ok {
			return Value{}, shared.MalformedResponseError{
				Resource: rootOf(path),
				Reason:   "missing node " + strings.Join(segments[:i+1], "."),
			}
		}
		if i < len(segments)-1 {
			if v.Kind != KindSingle {
				return Value{}, shared.MalformedResponseError{
					Resource: rootOf(path),
					Reason:   "ambiguous path through repeated node " + strings.Join(segments[:i+1], "."),
				}
			}
			current = v.Nodes[0]
		}
	}
	return v, nil
}

func (v Value) sequence() []*Node {
	if v.Kind == KindSequence {
		return v.Nodes
	}
	return []*Node{v.Nodes[0]}
}

func splitKey(key string) []string {
	var segments []string
	for _, s := range strings.Split(key, ".") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func rootOf(path string) string {
	if segments := splitKey(path); len(segments) > 0 {
		return segments[0]
	}
	return "xml"
}
