package buildctx

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"iter"
	"sort"
	"strings"
)

// Registry holds the leaf hashes and base relations of a set of named build
// contexts. It is immutable once constructed.
type Registry struct {
	leaf  map[string]string
	base  map[string]string
	names []string
}

// CycleError reports a build context that is its own ancestor.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("build context cycle detected: %s", strings.Join(e.Path, " -> "))
}

// New creates a Registry from leaf hashes keyed by context name and the base
// of every derived context. Every base must itself be a known context, and the
// base relation must be acyclic.
func New(leaves map[string]string, bases map[string]string) (*Registry, error) {
	r := &Registry{
		leaf: make(map[string]string, len(leaves)),
		base: make(map[string]string, len(bases)),
	}
	for name, h := range leaves {
		r.leaf[name] = h
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	for name, base := range bases {
		if _, ok := r.leaf[name]; !ok {
			return nil, fmt.Errorf("base declared for unknown build context %q", name)
		}
		if _, ok := r.leaf[base]; !ok {
			return nil, fmt.Errorf("build context %q has unknown base %q", name, base)
		}
		r.base[name] = base
	}

	if err := r.detectCycles(); err != nil {
		return nil, err
	}
	return r, nil
}

// detectCycles walks every base chain with a visiting set.
func (r *Registry) detectCycles() error {
	visited := make(map[string]bool, len(r.names))

	for _, start := range r.names {
		if visited[start] {
			continue
		}
		visiting := make(map[string]bool)
		var path []string
		for name := start; ; {
			if visiting[name] {
				return &CycleError{Path: append(path, name)}
			}
			if visited[name] {
				break
			}
			visiting[name] = true
			path = append(path, name)
			base, ok := r.base[name]
			if !ok {
				break
			}
			name = base
		}
		for _, name := range path {
			visited[name] = true
		}
	}
	return nil
}

// Contains reports whether name is a known context.
func (r *Registry) Contains(name string) bool {
	_, ok := r.leaf[name]
	return ok
}

// Names returns all context names, sorted.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Base returns the base of a derived context.
func (r *Registry) Base(name string) (string, bool) {
	base, ok := r.base[name]
	return base, ok
}

// LeafHash returns the content hash of the context's own file tree.
func (r *Registry) LeafHash(name string) (string, error) {
	h, ok := r.leaf[name]
	if !ok {
		return "", fmt.Errorf("unknown build context %q", name)
	}
	return h, nil
}

// Resolve returns the chain hash of a context: its leaf hash when it has no
// base, otherwise the digest of the base's chain hash followed by its own
// leaf hash.
func (r *Registry) Resolve(name string) (string, error) {
	if !r.Contains(name) {
		return "", fmt.Errorf("unknown build context %q", name)
	}

	// Collect the ancestry, nearest first.
	var chain []string
	seen := make(map[string]bool)
	for cur, ok := name, true; ok; cur, ok = r.base[cur] {
		if seen[cur] {
			return "", &CycleError{Path: append(chain, cur)}
		}
		seen[cur] = true
		chain = append(chain, cur)
	}

	h := r.leaf[chain[len(chain)-1]]
	for i := len(chain) - 2; i >= 0; i-- {
		h = combine(h, r.leaf[chain[i]])
	}
	return h, nil
}

func combine(base, leaf string) string {
	d := sha1.New()
	d.Write([]byte(base))
	d.Write([]byte(leaf))
	return hex.EncodeToString(d.Sum(nil))
}

// All yields every context name after its base. Contexts without a base come
// first in name order; then emitted contexts are scanned for dependents that
// have not been emitted yet. Iteration stops early if a scan makes no
// progress, which cannot happen for a registry built by New.
func (r *Registry) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		dependents := make(map[string][]string)
		for _, name := range r.names {
			if base, ok := r.base[name]; ok {
				dependents[base] = append(dependents[base], name)
			}
		}

		emitted := make(map[string]bool, len(r.names))
		order := make([]string, 0, len(r.names))
		emit := func(name string) bool {
			emitted[name] = true
			order = append(order, name)
			return yield(name)
		}

		for _, name := range r.names {
			if _, ok := r.base[name]; ok {
				continue
			}
			if !emit(name) {
				return
			}
		}

		for len(order) < len(r.names) {
			progress := false
			for i := 0; i < len(order); i++ {
				for _, dep := range dependents[order[i]] {
					if emitted[dep] {
						continue
					}
					progress = true
					if !emit(dep) {
						return
					}
				}
			}
			if !progress {
				return
			}
		}
	}
}
