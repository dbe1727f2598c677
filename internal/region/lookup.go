// Package region attaches a continent-level Region to each country using a
// static lookup table. The default table ships as an embedded JSON asset and
// is decoded once per process.
package region

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
)

//go:embed regions.json
var regionsJSON []byte

// Continents lists the region names a lookup value may be built from.
// Composite values join two of them with "/", e.g. "Europe/Asia".
var Continents = []string{
	"Africa", "Asia", "Europe", "North America", "South America", "Oceania", "Antarctica",
}

// Lookup is an immutable country → region mapping. Keys match exactly: no
// case folding, no accent stripping.
type Lookup struct {
	m map[string]string
}

var defaultLookup = sync.OnceValue(func() *Lookup {
	l, err := Decode(bytes.NewReader(regionsJSON))
	if err != nil {
		panic(fmt.Sprintf("region: embedded table: %v", err))
	}
	return l
})

// Default returns the built-in lookup table.
func Default() *Lookup { return defaultLookup() }

// New builds a lookup from m after validating every region name. The map is
// copied.
func New(m map[string]string) (*Lookup, error) {
	for country, reg := range m {
		if err := validRegion(reg); err != nil {
			return nil, fmt.Errorf("region: %q: %w", country, err)
		}
	}
	return &Lookup{m: maps.Clone(m)}, nil
}

// Decode reads a JSON object of country → region pairs.
func Decode(r io.Reader) (*Lookup, error) {
	var m map[string]string
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("region: decode: %w", err)
	}
	return New(m)
}

// Region returns the region for country and whether it was found.
func (l *Lookup) Region(country string) (string, bool) {
	r, ok := l.m[country]
	return r, ok
}

// Len returns the number of countries in the table.
func (l *Lookup) Len() int { return len(l.m) }

// Regions returns the distinct region values, sorted.
func (l *Lookup) Regions() []string {
	seen := make(map[string]struct{})
	for _, r := range l.m {
		seen[r] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

func validRegion(r string) error {
	parts := strings.Split(r, "/")
	if len(parts) > 2 {
		return fmt.Errorf("region %q has more than two parts", r)
	}
	for _, p := range parts {
		if !slices.Contains(Continents, p) {
			return fmt.Errorf("unknown region %q", p)
		}
	}
	return nil
}
