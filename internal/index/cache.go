// Package index resolves cache keys to task IDs through the Taskcluster
// index, so tasks whose output is still available are reused instead of run
// again.
package index

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/slugid"
	"github.com/digideskio/git-cinnabar/internal/taskcluster"
)

// SafetyMargin is how long an indexed task must remain available for it to
// be reused.
const SafetyMargin = time.Hour

// Finder looks up indexed tasks by namespace.
type Finder interface {
	FindTask(ctx context.Context, namespace string) (*taskcluster.IndexedTask, error)
}

// Entry is the outcome of resolving one key.
type Entry struct {
	TaskID string
	// Reused is set when TaskID came from the index and the task does not
	// need to be submitted again.
	Reused bool
}

// Namespaces describe where keys are looked up. Keys are first looked up
// under Head when it differs from Base, which lets pull requests from forks
// reuse work done on the upstream repository.
type Namespaces struct {
	Head string
	Base string
}

// RepoNamespace is the index namespace prefix of a GitHub repository.
func RepoNamespace(user, repo string) string {
	return fmt.Sprintf("github.%s.%s", user, repo)
}

// Cache memoizes key resolution for one run. It is not safe for concurrent
// use.
type Cache struct {
	finder  Finder
	ns      Namespaces
	now     time.Time
	newID   func() string
	entries map[string]Entry
	order   []string
}

// Option customizes a Cache.
type Option func(*Cache)

// WithIDGenerator replaces slugid.New for fresh identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(c *Cache) { c.newID = fn }
}

// New creates a cache that evaluates expiry against now.
func New(finder Finder, ns Namespaces, now time.Time, opts ...Option) *Cache {
	c := &Cache{
		finder:  finder,
		ns:      ns,
		now:     now,
		newID:   slugid.New,
		entries: make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCreate returns the task ID for key. The index is consulted only the
// first time a key is seen; later calls return the same entry.
func (c *Cache) GetOrCreate(ctx context.Context, key string) Entry {
	if entry, ok := c.Lookup(key); ok {
		return entry
	}

	var entry Entry
	if c.ns.Head != "" && c.ns.Head != c.ns.Base {
		entry = c.try(ctx, c.ns.Head+"."+key, false)
	}
	if entry.TaskID == "" {
		entry = c.try(ctx, c.ns.Base+"."+key, true)
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
	return entry
}

// try looks namespace up. When nothing reusable is found it returns a fresh
// ID if create is set, and an empty entry otherwise.
func (c *Cache) try(ctx context.Context, namespace string, create bool) Entry {
	logger := ctxlog.FromContext(ctx).With("namespace", namespace)

	found, err := c.finder.FindTask(ctx, namespace)
	switch {
	case err != nil:
		logger.Debug("Index lookup found nothing.", "error", err)
	case found == nil:
		logger.Debug("Index lookup returned no record.")
	case found.TaskID == "":
		logger.Debug("Index record has no task ID.")
	default:
		expires := parseExpires(found.Expires, c.now)
		if expires.After(c.now.Add(SafetyMargin)) {
			logger.Info("Found task in index.", "task_id", found.TaskID, "expires", expires)
			return Entry{TaskID: found.TaskID, Reused: true}
		}
		logger.Debug("Indexed task expires too soon, not reusing it.", "task_id", found.TaskID, "expires", found.Expires)
	}

	if !create {
		return Entry{}
	}
	return Entry{TaskID: c.newID()}
}

// parseExpires reads the index record expiry. A missing or malformed value
// counts as already expired.
func parseExpires(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return now
	}
	return t
}

// Lookup returns the entry for a key already resolved in this run.
func (c *Cache) Lookup(key string) (Entry, bool) {
	entry, ok := c.entries[key]
	return entry, ok
}

// Keys returns the keys resolved so far, in resolution order.
func (c *Cache) Keys() []string {
	return append([]string(nil), c.order...)
}

// SearchPrefix finds the single resolved key starting with prefix.
func (c *Cache) SearchPrefix(prefix string) (string, Entry, error) {
	var matches []string
	for _, key := range c.order {
		if strings.HasPrefix(key, prefix) {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return "", Entry{}, fmt.Errorf("no match for prefix %q", prefix)
	case 1:
		return matches[0], c.entries[matches[0]], nil
	default:
		sort.Strings(matches)
		return "", Entry{}, fmt.Errorf("multiple matches for prefix %q: %s", prefix, strings.Join(matches, ", "))
	}
}
