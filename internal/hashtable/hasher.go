package hashtable

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"strconv"

	"github.com/spf13/cast"
)

// Hasher maps a key to a 64-bit hash. Implementations must be deterministic.
type Hasher[K comparable] interface {
	Sum64(key K) (uint64, error)
}

// HasherFunc adapts a plain function to the Hasher interface.
type HasherFunc[K comparable] func(key K) (uint64, error)

// Sum64 implements Hasher.
func (f HasherFunc[K]) Sum64(key K) (uint64, error) {
	return f(key)
}

// FNV1a hashes the canonical string form of a key with 64-bit FNV-1a
// (offset basis 14695981039346656037, prime 1099511628211, arithmetic mod 2^64).
type FNV1a[K comparable] struct{}

// Sum64 implements Hasher.
func (FNV1a[K]) Sum64(key K) (uint64, error) {
	s, err := CanonicalString(key)
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // never fails
	return h.Sum64(), nil
}

// CanonicalString returns the string form a key is hashed by.
//
// Pointers and channels are compared by identity, so they are hashed by
// address, never by what they point to. Strings, numbers, booleans, byte
// slices and non-pointer fmt.Stringer and error values are converted with
// cast. Named types over those kinds (type NodeID string) are converted by
// kind. Anything else has no stable byte form and yields
// ErrUnhashable; such keys need a custom Hasher. A panicking String method
// is reported the same way.
func CanonicalString(key any) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = "", fmt.Errorf("%w: %T: %v", ErrUnhashable, key, r)
		}
	}()

	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
		return "0x" + strconv.FormatUint(uint64(v.Pointer()), 16), nil
	}

	if s, err := cast.ToStringE(key); err == nil {
		return s, nil
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: no canonical string form for %T", ErrUnhashable, key)
}
