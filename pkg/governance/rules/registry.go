package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidRule is returned when registering a rule without an ID or category.
var ErrInvalidRule = errors.New("invalid rule")

// CheckFunc runs a rule's finalize predicate against input. It returns the
// replacement text and true when the rule fires.
type CheckFunc func(rule Rule, input string) (string, bool)

// Resolver re-attaches predicate kinds to a rule restored from a Summary.
// It returns false when the ID is unknown to compiled-in code, in which case
// the restored rule carries no predicates.
type Resolver func(id int) (finalize, streaming Kind, ok bool)

// Registry is the set of governance rules indexed by ID and by category.
//
// Every rule in the ID index appears in exactly one category bucket, and a
// bucket exists only while it holds at least one rule. Reads may run
// concurrently; mutations are exclusive.
type Registry struct {
	mu         sync.RWMutex
	byID       map[int]Rule
	byCategory map[string][]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:       make(map[int]Rule),
		byCategory: make(map[string][]int),
	}
}

// NewBuiltinRegistry returns a registry holding the compiled-in rule catalog.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range Builtin() {
		// Builtin rules are valid by construction.
		_ = r.Register(rule)
	}
	return r
}

// Register adds a rule, replacing any existing rule with the same ID. A
// replaced rule that changes category is moved between buckets.
func (r *Registry) Register(rule Rule) error {
	if rule.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidRule, rule.ID)
	}
	if rule.Category == "" {
		return fmt.Errorf("%w: rule %d has no category", ErrInvalidRule, rule.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byID[rule.ID]; ok {
		r.removeFromCategory(old.Category, old.ID)
	}
	r.byID[rule.ID] = rule
	r.byCategory[rule.Category] = insertSorted(r.byCategory[rule.Category], rule.ID)
	return nil
}

// Unregister removes a rule. It reports whether the rule existed.
func (r *Registry) Unregister(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	r.removeFromCategory(rule.Category, id)
	return true
}

// Get returns the rule with the given ID.
func (r *Registry) Get(id int) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.byID[id]
	return rule, ok
}

// ByCategory returns the rules in a category ordered by ID. An unknown
// category yields an empty slice.
func (r *Registry) ByCategory(category string) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byCategory[category]
	out := make([]Rule, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}

// All returns every rule ordered by ascending ID.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allLocked()
}

func (r *Registry) allLocked() []Rule {
	out := make([]Rule, 0, len(r.byID))
	for _, rule := range r.byID {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Categories returns the category names in sorted order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byCategory))
	for name := range r.byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Clear removes every rule.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[int]Rule)
	r.byCategory = make(map[string][]int)
}

// Evaluate runs the finalize predicates of the selected rules in ID order and
// returns the first replacement produced. An empty category selects every
// rule. Rules without a finalize predicate are skipped.
func (r *Registry) Evaluate(input, category string, check CheckFunc) (string, bool) {
	var candidates []Rule
	if category == "" {
		candidates = r.All()
	} else {
		candidates = r.ByCategory(category)
	}

	for _, rule := range candidates {
		if !rule.HasFinalize() {
			continue
		}
		if out, fired := check(rule, input); fired {
			return out, true
		}
	}
	return "", false
}

// Status renders the registry as a markdown listing grouped by category.
func (r *Registry) Status() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("## Governance Rules Status\n\n")
	fmt.Fprintf(&sb, "Total Rules: %d\n\n", len(r.byID))

	categories := make([]string, 0, len(r.byCategory))
	for name := range r.byCategory {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Fprintf(&sb, "### Category: %s\n", category)
		for _, id := range r.byCategory[category] {
			fmt.Fprintf(&sb, "- **Rule %d**: %s\n", id, r.byID[id].Name)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Catalog returns the persisted form of every rule ordered by ID.
func (r *Registry) Catalog() []Summary {
	rules := r.All()
	out := make([]Summary, len(rules))
	for i, rule := range rules {
		out[i] = rule.Summarize()
	}
	return out
}

// Restore replaces the registry contents with the given catalog. Predicate
// kinds come from resolve; a nil resolve restores rules without predicates.
// Entries that would not register (no ID or category) are skipped and
// counted in the returned error.
func (r *Registry) Restore(catalog []Summary, resolve Resolver) error {
	r.Clear()

	skipped := 0
	for _, s := range catalog {
		rule := Rule{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Category:    s.Category,
		}
		if resolve != nil {
			if fin, str, ok := resolve(s.ID); ok {
				rule.Finalize, rule.Streaming = fin, str
			}
		}
		if err := r.Register(rule); err != nil {
			skipped++
		}
	}
	if skipped > 0 {
		return fmt.Errorf("%w: skipped %d catalog entries", ErrInvalidRule, skipped)
	}
	return nil
}

// removeFromCategory drops id from a bucket, deleting the bucket when empty.
// Caller must hold the write lock.
func (r *Registry) removeFromCategory(category string, id int) {
	ids := r.byCategory[category]
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(r.byCategory, category)
		return
	}
	r.byCategory[category] = ids
}

func insertSorted(ids []int, id int) []int {
	i := sort.SearchInts(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
