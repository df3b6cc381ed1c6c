package memory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// DefaultNamespace is used when no namespace is given.
const DefaultNamespace = "default"

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("memory not found")

// Entry is one stored memory.
type Entry struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Hit is a search result.
type Hit struct {
	Entry
	Score float64 `json:"score"`
}

// Options configures a Store.
type Options struct {
	// EchoLimit caps the echoes returned per envelope. Default 3.
	EchoLimit int
	// MinScore drops hits scoring below it. Default 0.
	MinScore float64
	// NamespaceKey is the kwarg selecting the namespace for echoes.
	// Default "namespace".
	NamespaceKey string
}

// Store is a naive process-local memory:
//  1. namespace scoped key/value facts (Get / Put)
//  2. append-only entries with keyword Search
//
// Concurrency: protected by RWMutex.
type Store struct {
	opts Options

	mu      sync.RWMutex
	seq     int
	facts   map[string]map[string]any   // namespace -> key -> value
	entries map[string]map[string]Entry // namespace -> id -> entry
	order   map[string][]string         // namespace -> ids in insertion order
}

// NewStore creates an empty Store.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{EchoLimit: 3, NamespaceKey: "namespace"}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.EchoLimit <= 0 {
		opts.EchoLimit = 3
	}

	return &Store{
		opts:    opts,
		facts:   make(map[string]map[string]any),
		entries: make(map[string]map[string]Entry),
		order:   make(map[string][]string),
	}
}

func ns(namespace string) string {
	if namespace == "" {
		return DefaultNamespace
	}
	return namespace
}

// Get returns a copy of the facts of the namespace.
func (s *Store) Get(namespace string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	facts := s.facts[ns(namespace)]
	out := make(map[string]any, len(facts))
	for k, v := range facts {
		out[k] = v
	}
	return out
}

// Put merges delta into the facts of the namespace.
func (s *Store) Put(namespace string, delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	namespace = ns(namespace)
	if _, ok := s.facts[namespace]; !ok {
		s.facts[namespace] = make(map[string]any, len(delta))
	}
	for k, v := range delta {
		s.facts[namespace][k] = v
	}
}

// Add stores content and returns the generated id.
func (s *Store) Add(namespace, content string, metadata map[string]any) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errors.New("memory content is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	namespace = ns(namespace)
	if _, ok := s.entries[namespace]; !ok {
		s.entries[namespace] = make(map[string]Entry)
	}

	s.seq++
	id := fmt.Sprintf("mem_%d", s.seq)
	s.entries[namespace][id] = Entry{ID: id, Content: content, Metadata: copyMap(metadata)}
	s.order[namespace] = append(s.order[namespace], id)

	return id, nil
}

// Delete removes an entry.
func (s *Store) Delete(namespace, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	namespace = ns(namespace)
	if _, ok := s.entries[namespace][id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.entries[namespace], id)

	ids := s.order[namespace]
	for i, other := range ids {
		if other == id {
			s.order[namespace] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of entries in the namespace.
func (s *Store) Len(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[ns(namespace)])
}

// Search scores every entry by the share of query terms it contains and
// returns up to limit hits, best first. Ties keep insertion order. An empty
// query matches everything with score 1.
func (s *Store) Search(namespace, query string, limit int) []Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	namespace = ns(namespace)
	terms := tokenize(query)

	hits := make([]Hit, 0)
	for _, id := range s.order[namespace] {
		e := s.entries[namespace][id]
		score := 1.0
		if len(terms) > 0 {
			score = overlap(terms, tokenize(e.Content))
		}
		if score == 0 || score < s.opts.MinScore {
			continue
		}
		e.Metadata = copyMap(e.Metadata)
		hits = append(hits, Hit{Entry: e, Score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			set[f] = struct{}{}
		}
	}
	return set
}

func overlap(terms, content map[string]struct{}) float64 {
	matched := 0
	for t := range terms {
		if _, ok := content[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
