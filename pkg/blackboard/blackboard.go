// Package blackboard implements the hierarchical, typed key-value store
// shared by all nodes of a tree scope. Subtrees get their own Blackboard
// whose parent is the enclosing scope; keys cross the boundary only through
// explicit remapping rules (or auto-remapping when enabled).
package blackboard

import (
	"fmt"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
)

// entry is the shared cell behind a key. Remapped keys in child scopes alias
// the parent's entry, so writes through either name mutate the same cell.
type entry struct {
	mu    sync.Mutex
	value any
}

// Blackboard stores type-erased values by string key.
//
// The zero value is not usable; construct with New or NewWithParent.
type Blackboard struct {
	mu      sync.Mutex
	storage map[string]*entry
	// remaps maps a key in this scope to a key in the parent scope.
	remaps    map[string]string
	autoRemap bool
	parent    *Blackboard
}

// New creates a root-level Blackboard.
func New() *Blackboard {
	return &Blackboard{
		storage: make(map[string]*entry),
		remaps:  make(map[string]string),
	}
}

// NewWithParent creates a child Blackboard. The parent must outlive the
// child; the engine guarantees this by tying both to the tree's lifetime.
func NewWithParent(parent *Blackboard) *Blackboard {
	bb := New()
	bb.parent = parent
	return bb
}

// Parent returns the enclosing scope, or nil for a root Blackboard.
func (b *Blackboard) Parent() *Blackboard { return b.parent }

// AddSubtreeRemapping maps internal (a key in this scope) to external (a key
// in the parent scope). Installed once when entering a subtree.
func (b *Blackboard) AddSubtreeRemapping(internal, external string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remaps[internal] = external
}

// EnableAutoRemapping makes keys without an explicit remapping rule resolve
// transparently in the parent scope. Explicit rules still take precedence.
func (b *Blackboard) EnableAutoRemapping(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoRemap = enabled
}

// getEntry resolves key through the remap chain. After resolving a remapped
// key once, the parent's entry is cached locally so later lookups are direct.
func (b *Blackboard) getEntry(key string) *entry {
	b.mu.Lock()
	if e, ok := b.storage[key]; ok {
		b.mu.Unlock()
		return e
	}
	external, remapped := b.remaps[key]
	auto := b.autoRemap
	parent := b.parent
	b.mu.Unlock()

	if parent == nil {
		return nil
	}
	if remapped {
		e := parent.getEntry(external)
		if e != nil {
			b.mu.Lock()
			b.storage[key] = e
			b.mu.Unlock()
		}
		return e
	}
	if auto {
		return parent.getEntry(key)
	}
	return nil
}

// createEntry returns the entry for key, creating it in the deepest scope
// the remap chain points at. The entry is always cached locally.
func (b *Blackboard) createEntry(key string) *entry {
	b.mu.Lock()
	if e, ok := b.storage[key]; ok {
		b.mu.Unlock()
		return e
	}
	external, remapped := b.remaps[key]
	auto := b.autoRemap
	parent := b.parent
	b.mu.Unlock()

	var e *entry
	switch {
	case remapped && parent != nil:
		e = parent.createEntry(external)
	case auto && parent != nil:
		e = parent.createEntry(key)
	default:
		e = &entry{}
	}

	b.mu.Lock()
	// Re-check: a concurrent creator wins.
	if existing, ok := b.storage[key]; ok {
		e = existing
	} else {
		b.storage[key] = e
	}
	b.mu.Unlock()
	return e
}

// Set writes value at key, following remapping rules: a remapped key writes
// into the scope that defines it, an unknown key is created locally.
func (b *Blackboard) Set(key string, value any) {
	e := b.createEntry(key)
	e.mu.Lock()
	e.value = value
	e.mu.Unlock()
}

// Contains reports whether key resolves to an entry in this scope or, via
// remapping, in an ancestor scope.
func (b *Blackboard) Contains(key string) bool {
	return b.getEntry(key) != nil
}

// Keys lists the keys materialized in this scope, for debugging output.
func (b *Blackboard) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.storage))
	for k := range b.storage {
		keys = append(keys, k)
	}
	return keys
}

// Get fetches key as T. Resolution order:
//  1. the stored value already is a T;
//  2. the stored value is a string (an XML literal) that parses as T — the
//     parsed value then replaces the string so the next read is direct;
//  3. the stored value is a map (e.g. a YAML seed) decodable into T.
//
// Errors wrap domain.ErrKeyMissing, domain.ErrParse or domain.ErrTypeMismatch.
func Get[T any](b *Blackboard, key string) (T, error) {
	var zero T

	e := b.getEntry(key)
	if e == nil {
		return zero, fmt.Errorf("%w: [%s]", domain.ErrKeyMissing, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.value.(T); ok {
		return v, nil
	}

	if s, ok := e.value.(string); ok {
		v, err := ParseString[T](s)
		if err != nil {
			return zero, fmt.Errorf("%w: [%s] held %q: %v", domain.ErrParse, key, s, err)
		}
		e.value = v
		return v, nil
	}

	if v, ok, err := decodeMap[T](e.value); ok {
		if err != nil {
			return zero, fmt.Errorf("%w: [%s]: %v", domain.ErrParse, key, err)
		}
		return v, nil
	}

	return zero, fmt.Errorf("%w: [%s] holds %T, want %T", domain.ErrTypeMismatch, key, e.value, zero)
}

// GetExact is Get without the string-parse and map-decode fallbacks.
func GetExact[T any](b *Blackboard, key string) (T, error) {
	var zero T

	e := b.getEntry(key)
	if e == nil {
		return zero, fmt.Errorf("%w: [%s]", domain.ErrKeyMissing, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.value.(T); ok {
		return v, nil
	}
	return zero, fmt.Errorf("%w: [%s] holds %T, want %T", domain.ErrTypeMismatch, key, e.value, zero)
}
