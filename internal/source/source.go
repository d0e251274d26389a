// Package source abstracts where compiled zone data comes from: a
// zoneinfo directory tree, an in-memory map, a packed bundle, or a
// chain of fallbacks consulted in order.
//
// Sources deal in raw TZif bytes only; decoding and caching belong to
// the caller.
package source

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound reports a zone name a source does not carry. Chains use
// it to fall through to the next source; any other error stops the
// chain.
var ErrNotFound = errors.New("source: zone not found")

// Source supplies raw TZif data by zone name.
type Source interface {
	// Lookup returns the compiled data for a zone, or an error
	// wrapping ErrNotFound when the source does not carry it.
	Lookup(name string) ([]byte, error)

	// Zones lists the zone names the source carries, sorted.
	Zones() ([]string, error)

	// String identifies the source in logs and errors.
	String() string
}

// Map is a fixed in-memory source, mainly for tests and embedded zone
// sets.
type Map map[string][]byte

func (m Map) Lookup(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, m)
	}
	return data, nil
}

func (m Map) Zones() ([]string, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m Map) String() string { return "map" }

// Chain consults sources in order, falling through on ErrNotFound and
// stopping on any other error.
type Chain []Source

// NewChain builds a chain over sources in lookup order.
func NewChain(sources ...Source) Chain { return Chain(sources) }

func (c Chain) Lookup(name string) ([]byte, error) {
	for _, src := range c {
		data, err := src.Lookup(name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, c)
}

// Zones merges the zone lists of every source. Sources that cannot
// enumerate are skipped rather than failing the merge.
func (c Chain) Zones() ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, src := range c {
		zs, err := src.Zones()
		if err != nil {
			continue
		}
		for _, z := range zs {
			if !seen[z] {
				seen[z] = true
				names = append(names, z)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, src := range c {
		parts[i] = src.String()
	}
	return strings.Join(parts, ",")
}
