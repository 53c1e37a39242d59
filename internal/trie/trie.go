// Package trie implements a prefix tree over sequences of comparable elements.
package trie

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrMalformedPath is returned by Validate for a path holding an element
// that cannot be used as a map key.
var ErrMalformedPath = errors.New("malformed path")

// Node is one state of the tree. Each child edge is labelled by a single
// path element.
type Node[E comparable] struct {
	children map[E]*Node[E]
	terminal bool
}

func newNode[E comparable]() *Node[E] {
	return &Node[E]{children: map[E]*Node[E]{}}
}

// Terminal reports whether an inserted path ends exactly at this node.
func (n *Node[E]) Terminal() bool {
	return n.terminal
}

// Child returns the node reached from n over element e.
func (n *Node[E]) Child(e E) (*Node[E], bool) {
	c, ok := n.children[e]
	return c, ok
}

// Trie holds a set of paths sharing common prefixes.
// It is not safe for concurrent mutation.
type Trie[E comparable] struct {
	root  *Node[E]
	count int
}

// New returns an empty trie.
func New[E comparable]() *Trie[E] {
	return &Trie[E]{root: newNode[E]()}
}

// Root returns the node of the empty path.
func (t *Trie[E]) Root() *Node[E] {
	return t.root
}

// Insert adds path, creating nodes as needed, and marks its last node
// terminal. Inserting the empty path marks the root.
func (t *Trie[E]) Insert(path []E) {
	node := t.root
	for _, e := range path {
		next, ok := node.children[e]
		if !ok {
			next = newNode[E]()
			node.children[e] = next
		}
		node = next
	}
	if !node.terminal {
		node.terminal = true
		t.count++
	}
}

// walk follows path from the root and returns the node it ends at, or nil
// if some element has no edge.
func (t *Trie[E]) walk(path []E) *Node[E] {
	node := t.root
	for _, e := range path {
		next, ok := node.children[e]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

// ContainsExact reports whether path itself was inserted. A path that is
// only a prefix of an inserted path is not contained.
func (t *Trie[E]) ContainsExact(path []E) bool {
	node := t.walk(path)
	return node != nil && node.terminal
}

// HasPrefix reports whether path can be walked from the root, that is,
// whether it is a prefix of (or equal to) some inserted path.
func (t *Trie[E]) HasPrefix(path []E) bool {
	return t.walk(path) != nil
}

// Len returns the number of distinct paths inserted.
func (t *Trie[E]) Len() int {
	return t.count
}

// Validate checks that every element of path can be used as a map key.
// Only interface element types can hold non-comparable values; Insert and
// the lookups panic on such a path, so callers taking arbitrary input
// validate first.
func Validate[E comparable](path []E) error {
	for i, e := range path {
		if !reflect.ValueOf(&e).Elem().Comparable() {
			return fmt.Errorf("%w: element %d has non-comparable value of type %T", ErrMalformedPath, i, e)
		}
	}
	return nil
}
