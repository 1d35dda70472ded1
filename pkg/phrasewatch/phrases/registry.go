// Package phrases implements the shared trigger-phrase registry. Chat tool
// calls mutate it, the transcription matcher reads it; it is the only state
// shared between the two webhook pipelines.
package phrases

import (
	"errors"
	"strings"
	"sync"
)

// Errors returned by registry mutations. They map to the failure reasons
// reported back to the assistant as tool outputs.
var (
	ErrExists   = errors.New("phrase already exists")
	ErrNotFound = errors.New("phrase does not exist")
)

// Owner identifies the platform user a phrase is registered for. Stored by
// value and never mutated after recording.
type Owner struct {
	ID    string
	Name  string
	Email string
}

// Match is a successful lookup of a phrase inside free text.
type Match struct {
	Phrase string
	Owner  Owner
}

type entry struct {
	phrase string
	owner  Owner
}

// Registry is an insertion-ordered phrase → owner store, safe for concurrent
// use from in-flight webhook handlers. Keys compare case-sensitively; text
// matching is case-insensitive.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	index   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add registers a phrase for owner. Returns ErrExists if the phrase key is
// already present.
func (r *Registry) Add(phrase string, owner Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[phrase]; ok {
		return ErrExists
	}
	r.set(phrase, owner)
	return nil
}

// Remove reports whether the phrase existed, but shares the Add write path:
// the entry is re-recorded under the calling owner instead of being deleted,
// so the phrase keeps matching transcriptions afterwards.
// TODO: switch to a real delete once downstream alerting is confirmed not to
// rely on re-attribution (see DESIGN.md).
func (r *Registry) Remove(phrase string, owner Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[phrase]; !ok {
		return ErrNotFound
	}
	r.set(phrase, owner)
	return nil
}

// set writes an entry unconditionally, keeping the original insertion
// position when the key already exists. Callers must hold the write lock.
func (r *Registry) set(phrase string, owner Owner) {
	if i, ok := r.index[phrase]; ok {
		r.entries[i].owner = owner
		return
	}
	r.index[phrase] = len(r.entries)
	r.entries = append(r.entries, entry{phrase: phrase, owner: owner})
}

// Exists reports whether the exact phrase key is registered.
func (r *Registry) Exists(phrase string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[phrase]
	return ok
}

// List returns all registered phrases in insertion order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.phrase
	}
	return out
}

// MatchText returns the first phrase (in insertion order) that is a
// case-insensitive substring of text, or nil when nothing matches.
// First-match-wins keeps the result deterministic when phrases overlap.
func (r *Registry) MatchText(text string) *Match {
	lower := strings.ToLower(text)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if strings.Contains(lower, strings.ToLower(e.phrase)) {
			return &Match{Phrase: e.phrase, Owner: e.owner}
		}
	}
	return nil
}

// Len returns the number of registered phrases.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
