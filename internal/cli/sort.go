package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/deetlist/internal/dragon"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone     SortOrder = ""
	SortByName   SortOrder = "name"
	SortByRarity SortOrder = "rarity"
	SortByDate   SortOrder = "released"
)

// parseSortOrder validates a --sort value.
func parseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortByName, SortByRarity, SortByDate:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'name', 'rarity' or 'released')", s)
	}
}

// sortListing sorts listing entries in place. Page order is kept when
// sortOrder is SortNone.
func sortListing(entries []dragon.ListingEntry, sortOrder SortOrder) {
	switch sortOrder {
	case SortByName:
		sort.SliceStable(entries, func(i, j int) bool {
			return lessName(entries[i].Name, entries[j].Name)
		})
	case SortByRarity:
		sort.SliceStable(entries, func(i, j int) bool {
			ri, rj := entries[i].Rarity.Rank(), entries[j].Rarity.Rank()
			if ri != rj {
				// Rarest first
				return ri > rj
			}
			return lessName(entries[i].Name, entries[j].Name)
		})
	case SortByDate:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].ReleasedAt != entries[j].ReleasedAt {
				// Newest first
				return entries[i].ReleasedAt > entries[j].ReleasedAt
			}
			return lessName(entries[i].Name, entries[j].Name)
		})
	}
}

// sortDragons sorts resolved dragons in place. SortByDate has no release
// data on a dragon page and falls back to page order.
func sortDragons(dragons []*dragon.Dragon, sortOrder SortOrder) {
	switch sortOrder {
	case SortByName:
		sort.SliceStable(dragons, func(i, j int) bool {
			return lessName(dragons[i].Name, dragons[j].Name)
		})
	case SortByRarity:
		sort.SliceStable(dragons, func(i, j int) bool {
			ri, rj := dragons[i].Rarity.Rank(), dragons[j].Rarity.Rank()
			if ri != rj {
				return ri > rj
			}
			return lessName(dragons[i].Name, dragons[j].Name)
		})
	}
}

func lessName(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}
