// Package filter narrows extracted dragons down by rarity, element and name.
//
// A filter matches when every active criterion matches; within one criterion
// any listed value may match. An empty filter matches everything.
//
// Example usage:
//
//	// Legendary or heroic fire dragons
//	f, err := filter.Parse("rarity:legendary,heroic element:fire")
//	if err != nil {
//		return err
//	}
//	dragons = f.Apply(dragons)
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/deetlist/internal/dragon"
)

// Filter represents dragon filtering criteria
type Filter struct {
	// Rarity filtering (exact match on any listed tier)
	Rarities []dragon.Rarity `json:"rarities,omitempty"`

	// Element filtering (dragon must have at least one listed element)
	Elements []dragon.Element `json:"elements,omitempty"`

	// Name filtering (case-insensitive substring match)
	Names []string `json:"names,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
func NewFilter() *Filter {
	return &Filter{
		Rarities: []dragon.Rarity{},
		Elements: []dragon.Element{},
		Names:    []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.Rarities) == 0 && len(f.Elements) == 0 && len(f.Names) == 0)
}

// Matches checks if a dragon matches all active filter criteria.
func (f *Filter) Matches(d *dragon.Dragon) bool {
	if f.IsEmpty() {
		return true
	}
	if !f.matchRarity(d.Rarity) || !f.matchName(d.Name) {
		return false
	}

	if len(f.Elements) > 0 {
		matched := false
		for _, e := range f.Elements {
			if d.HasElement(e) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// MatchesEntry checks a listing entry. Listing rows carry no elements, so
// element criteria are ignored.
func (f *Filter) MatchesEntry(e dragon.ListingEntry) bool {
	if f.IsEmpty() {
		return true
	}
	return f.matchRarity(e.Rarity) && f.matchName(e.Name)
}

func (f *Filter) matchRarity(r dragon.Rarity) bool {
	if len(f.Rarities) == 0 {
		return true
	}
	for _, want := range f.Rarities {
		if r == want {
			return true
		}
	}
	return false
}

func (f *Filter) matchName(name string) bool {
	if len(f.Names) == 0 {
		return true
	}
	nameLower := strings.ToLower(name)
	for _, n := range f.Names {
		if strings.Contains(nameLower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Apply returns the dragons that match. If the filter is empty, returns the
// original list unchanged.
func (f *Filter) Apply(dragons []*dragon.Dragon) []*dragon.Dragon {
	if f.IsEmpty() {
		return dragons
	}

	filtered := make([]*dragon.Dragon, 0, len(dragons))
	for _, d := range dragons {
		if f.Matches(d) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// ApplyListing returns the listing entries that match.
func (f *Filter) ApplyListing(entries []dragon.ListingEntry) []dragon.ListingEntry {
	if f.IsEmpty() {
		return entries
	}

	filtered := make([]dragon.ListingEntry, 0, len(entries))
	for _, e := range entries {
		if f.MatchesEntry(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "Rarity: LEGENDARY, HEROIC | Elements: fire | Names: flame"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Rarities) > 0 {
		names := make([]string, len(f.Rarities))
		for i, r := range f.Rarities {
			names[i] = string(r)
		}
		parts = append(parts, fmt.Sprintf("Rarity: %s", strings.Join(names, ", ")))
	}

	if len(f.Elements) > 0 {
		names := make([]string, len(f.Elements))
		for i, e := range f.Elements {
			names[i] = string(e)
		}
		parts = append(parts, fmt.Sprintf("Elements: %s", strings.Join(names, ", ")))
	}

	if len(f.Names) > 0 {
		parts = append(parts, fmt.Sprintf("Names: %s", strings.Join(f.Names, ", ")))
	}

	return strings.Join(parts, " | ")
}
