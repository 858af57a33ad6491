// Package xmlrecord turns ledger XML documents into typed records.
// Decoding produces a generic tree in which a child tag seen once is a single
// value and a tag seen repeatedly is a sequence, the same collapse the ledger's
// serializer applies to one-element lists. NormalizeSequence undoes it.
package xmlrecord

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/parabank-conformance/internal/domain/shared"
)

// Kind discriminates the two shapes a child value can take
type Kind int

const (
	KindSingle Kind = iota + 1
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Value holds every child element sharing one tag name.
// A KindSingle value has exactly one node.
type Value struct {
	Kind  Kind
	Nodes []*Node
}

// Node is an XML element with its text and children grouped by tag
type Node struct {
	Name     string
	Text     string
	children map[string]*Value
	order    []string
}

func newNode(name string) *Node {
	return &Node{Name: name, children: make(map[string]*Value)}
}

func (n *Node) add(child *Node) {
	v, ok := n.children[child.Name]
	if !ok {
		n.children[child.Name] = &Value{Kind: KindSingle, Nodes: []*Node{child}}
		n.order = append(n.order, child.Name)
		return
	}
	v.Kind = KindSequence
	v.Nodes = append(v.Nodes, child)
}

// Child returns the value stored under the given tag
func (n *Node) Child(name string) (Value, bool) {
	if n == nil {
		return Value{}, false
	}
	v, ok := n.children[name]
	if !ok {
		return Value{}, false
	}
	return *v, true
}

// ChildNames lists child tags in first-seen order
func (n *Node) ChildNames() []string {
	return append([]string(nil), n.order...)
}

// ChildText returns the text of the first child with the given tag
func (n *Node) ChildText(name string) (string, bool) {
	v, ok := n.Child(name)
	if !ok || len(v.Nodes) == 0 {
		return "", false
	}
	return v.Nodes[0].Text, true
}

// Decode parses an XML document into a tree. The returned node is the
// document itself; its only child is the root element.
func Decode(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	doc := newNode("")
	stack := []*Node{doc}
	text := []*strings.Builder{{}}

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, shared.MalformedResponseError{Resource: "xml", Reason: err.Error()}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 1 && len(doc.order) > 0 {
				return nil, shared.MalformedResponseError{Resource: "xml", Reason: "more than one root element: " + t.Name.Local}
			}
			stack = append(stack, newNode(t.Name.Local))
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(stack) == 1 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, shared.MalformedResponseError{Resource: "xml", Reason: "text outside the root element"}
				}
				continue
			}
			text[len(text)-1].Write(t)
		case xml.EndElement:
			// The decoder enforces matching tags, so the stack always has the element open here
			node := stack[len(stack)-1]
			node.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
			stack[len(stack)-1].add(node)
		}
	}

	if len(stack) != 1 {
		return nil, shared.MalformedResponseError{Resource: "xml", Reason: "unexpected end of document"}
	}
	if len(doc.order) == 0 {
		return nil, shared.MalformedResponseError{Resource: "xml", Reason: "empty document"}
	}
	return doc, nil
}
