// Package hashtable implements a fixed-size hash table with separate chaining.
//
// The bucket count is chosen once at construction (usually from
// sizing.Size) and never changes: a table that outgrows it keeps working
// with longer chains. A Table is not safe for concurrent mutation; callers
// serialize access per instance.
package hashtable

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring"
)

var (
	// ErrNotFound is returned by Lookup and Remove when the key is absent.
	ErrNotFound = errors.New("key not found")
	// ErrUnhashable is returned when a key has no stable byte representation.
	ErrUnhashable = errors.New("key cannot be hashed")
	// ErrInvalidSize is returned by New for a non-positive bucket count.
	ErrInvalidSize = errors.New("table size must be positive")
)

// entry is one link of a bucket's collision chain.
type entry[K comparable, V any] struct {
	key   K
	value V
	next  *entry[K, V]
}

// Item is a key/value pair produced by Items.
type Item[K comparable, V any] struct {
	Key   K
	Value V
}

// Stats describes how keys are spread over the buckets.
type Stats struct {
	Size         int
	Count        int
	Occupied     int
	LongestChain int
	LoadFactor   float64
}

// Table is a generic key/value store over a fixed array of chained buckets.
type Table[K comparable, V any] struct {
	size      int
	buckets   []*entry[K, V]
	occupancy *roaring.Bitmap // bit i set iff buckets[i] != nil
	count     int
	hasher    Hasher[K]
}

// Option configures a Table.
type Option[K comparable, V any] func(*Table[K, V])

// WithHasher replaces the default FNV-1a hasher.
func WithHasher[K comparable, V any](h Hasher[K]) Option[K, V] {
	return func(t *Table[K, V]) {
		if h != nil {
			t.hasher = h
		}
	}
}

// New creates a table with size buckets.
func New[K comparable, V any](size int, opts ...Option[K, V]) (*Table[K, V], error) {
	if size <= 0 || uint64(size) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	t := &Table[K, V]{
		size:      size,
		buckets:   make([]*entry[K, V], size),
		occupancy: roaring.New(),
		hasher:    FNV1a[K]{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Size returns the fixed bucket count.
func (t *Table[K, V]) Size() int {
	return t.size
}

// Index returns the bucket a key maps to.
func (t *Table[K, V]) Index(key K) (int, error) {
	h, err := t.hasher.Sum64(key)
	if err != nil {
		if !errors.Is(err, ErrUnhashable) {
			err = fmt.Errorf("%w: %w", ErrUnhashable, err)
		}
		return 0, err
	}
	return int(h % uint64(t.size)), nil
}

// Insert stores value under key, overwriting the value of an existing key
// in place. New keys are appended at the tail of their bucket's chain.
func (t *Table[K, V]) Insert(key K, value V) error {
	idx, err := t.Index(key)
	if err != nil {
		return err
	}

	cur := t.buckets[idx]
	if cur == nil {
		t.buckets[idx] = &entry[K, V]{key: key, value: value}
		t.count++
	} else {
		for {
			if cur.key == key {
				cur.value = value
				break
			}
			if cur.next == nil {
				cur.next = &entry[K, V]{key: key, value: value}
				t.count++
				break
			}
			cur = cur.next
		}
	}
	t.occupancy.Add(uint32(idx))
	return nil
}

// Lookup returns the value stored under key. It returns ErrNotFound when the
// key is absent and ErrUnhashable when the key cannot be hashed.
func (t *Table[K, V]) Lookup(key K) (V, error) {
	var zero V
	idx, err := t.Index(key)
	if err != nil {
		return zero, err
	}
	for cur := t.buckets[idx]; cur != nil; cur = cur.next {
		if cur.key == key {
			return cur.value, nil
		}
	}
	return zero, ErrNotFound
}

// Get returns the value stored under key, or def if there is none.
//
// An unhashable key also yields def. Use Lookup to tell the two apart.
func (t *Table[K, V]) Get(key K, def V) V {
	v, err := t.Lookup(key)
	if err != nil {
		return def
	}
	return v
}

// Contains reports whether key is stored.
func (t *Table[K, V]) Contains(key K) bool {
	_, err := t.Lookup(key)
	return err == nil
}

// Remove unlinks key from its chain. It returns ErrNotFound when the key is
// absent and ErrUnhashable when the key cannot be hashed.
func (t *Table[K, V]) Remove(key K) error {
	idx, err := t.Index(key)
	if err != nil {
		return err
	}

	var prev *entry[K, V]
	for cur := t.buckets[idx]; cur != nil; prev, cur = cur, cur.next {
		if cur.key != key {
			continue
		}
		if prev == nil {
			t.buckets[idx] = cur.next
		} else {
			prev.next = cur.next
		}
		cur.next = nil
		t.count--
		if t.buckets[idx] == nil {
			t.occupancy.Remove(uint32(idx))
		}
		return nil
	}
	return ErrNotFound
}

// Delete removes key and reports whether it was present.
//
// An unhashable key reports false, like an absent one. Use Remove to tell the
// two apart.
func (t *Table[K, V]) Delete(key K) bool {
	return t.Remove(key) == nil
}

// Len returns the number of distinct keys stored.
func (t *Table[K, V]) Len() int {
	return t.count
}

// All iterates over the stored pairs in bucket order, and in chain order
// within a bucket. The table must not be mutated during iteration.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := t.occupancy.Iterator()
		for it.HasNext() {
			for cur := t.buckets[it.Next()]; cur != nil; cur = cur.next {
				if !yield(cur.key, cur.value) {
					return
				}
			}
		}
	}
}

// Keys returns a snapshot of the stored keys in iteration order.
func (t *Table[K, V]) Keys() []K {
	keys := make([]K, 0, t.count)
	for k := range t.All() {
		keys = append(keys, k)
	}
	return keys
}

// Values returns a snapshot of the stored values in iteration order.
func (t *Table[K, V]) Values() []V {
	values := make([]V, 0, t.count)
	for _, v := range t.All() {
		values = append(values, v)
	}
	return values
}

// Items returns a snapshot of the stored pairs in iteration order.
func (t *Table[K, V]) Items() []Item[K, V] {
	items := make([]Item[K, V], 0, t.count)
	for k, v := range t.All() {
		items = append(items, Item[K, V]{Key: k, Value: v})
	}
	return items
}

// Occupied reports whether bucket i holds at least one entry.
func (t *Table[K, V]) Occupied(i int) bool {
	if i < 0 || i >= t.size {
		return false
	}
	return t.occupancy.Contains(uint32(i))
}

// Stats reports the table's current shape.
func (t *Table[K, V]) Stats() Stats {
	s := Stats{
		Size:     t.size,
		Count:    t.count,
		Occupied: int(t.occupancy.GetCardinality()),
	}
	it := t.occupancy.Iterator()
	for it.HasNext() {
		n := 0
		for cur := t.buckets[it.Next()]; cur != nil; cur = cur.next {
			n++
		}
		s.LongestChain = max(s.LongestChain, n)
	}
	s.LoadFactor = float64(t.count) / float64(t.size)
	return s
}
