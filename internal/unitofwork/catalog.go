package unitofwork

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Catalog is a Discoverer backed by explicit registrations, typically made
// by each data-access package at wiring time. Namespaces are slash
// separated ("billing/invoices").
//
// A lookup matches a namespace exactly, any namespace below it
// ("billing" finds "billing/invoices"), or a doublestar glob ("billing/**").
type Catalog struct {
	mu      sync.RWMutex
	entries map[string][]Binding
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string][]Binding)}
}

// Register adds bindings to namespace.
func (c *Catalog) Register(namespace string, bindings ...Binding) error {
	ns := normalizeNamespace(namespace)
	if ns == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	for _, b := range bindings {
		if b.Type == nil || b.New == nil {
			return fmt.Errorf("%w: incomplete binding in namespace %q", ErrInvalidType, ns)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ns] = append(c.entries[ns], bindings...)
	return nil
}

// Namespaces returns every registered namespace, sorted.
func (c *Catalog) Namespaces() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.entries))
	for ns := range c.entries {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// ListTypesInNamespace implements Discoverer. Results follow namespace
// order; duplicates are left for the Registry to collapse.
func (c *Catalog) ListTypesInNamespace(pattern string) ([]Binding, error) {
	pattern = normalizeNamespace(pattern)
	glob := strings.ContainsAny(pattern, "*?[{")
	if glob && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid namespace pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	var out []Binding
	for _, ns := range c.Namespaces() {
		var match bool
		if glob {
			// Validated above; Match cannot fail.
			match, _ = doublestar.Match(pattern, ns)
		} else {
			match = pattern != "" && (ns == pattern || strings.HasPrefix(ns, pattern+"/"))
		}
		if !match {
			continue
		}

		c.mu.RLock()
		out = append(out, c.entries[ns]...)
		c.mu.RUnlock()
	}
	return out, nil
}

func normalizeNamespace(ns string) string {
	return strings.Trim(strings.TrimSpace(ns), "/")
}
