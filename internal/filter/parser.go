package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/deetlist/internal/dragon"
)

// Parse parses a filter expression into a Filter.
//
// An expression is a space-separated list of key:values terms, values
// separated by commas:
//   - "rarity:legendary,heroic" - rarity names or page codes (l, h)
//   - "element:fire,water" - element names or page codes (f, w)
//   - "name:flame" - name substrings
//
// Repeating a key adds to its values. An empty expression yields an empty
// filter.
func Parse(input string) (*Filter, error) {
	f := NewFilter()

	for _, term := range strings.Fields(input) {
		key, values, ok := strings.Cut(term, ":")
		if !ok || values == "" {
			return nil, fmt.Errorf("invalid filter term %q. Use 'rarity:legendary', 'element:fire' or 'name:flame'", term)
		}

		for _, v := range strings.Split(values, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			switch strings.ToLower(key) {
			case "rarity":
				r, err := parseRarity(v)
				if err != nil {
					return nil, err
				}
				f.Rarities = append(f.Rarities, r)
			case "element":
				e, err := parseElement(v)
				if err != nil {
					return nil, err
				}
				f.Elements = append(f.Elements, e)
			case "name":
				f.Names = append(f.Names, v)
			default:
				return nil, fmt.Errorf("unknown filter key %q (must be 'rarity', 'element' or 'name')", key)
			}
		}
	}

	return f, nil
}

var rarityNames = map[string]dragon.Rarity{
	"common":    dragon.RarityCommon,
	"rare":      dragon.RarityRare,
	"very_rare": dragon.RarityVeryRare,
	"very-rare": dragon.RarityVeryRare,
	"epic":      dragon.RarityEpic,
	"legendary": dragon.RarityLegendary,
	"heroic":    dragon.RarityHeroic,
}

// parseRarity accepts a rarity name or its one-letter page code.
func parseRarity(v string) (dragon.Rarity, error) {
	if r, ok := rarityNames[strings.ToLower(v)]; ok {
		return r, nil
	}
	return dragon.ParseRarity(v)
}

// parseElement accepts an element name or its page code. Names win where
// both would match.
func parseElement(v string) (dragon.Element, error) {
	if e, err := dragon.ElementByName(v); err == nil {
		return e, nil
	}
	return dragon.ParseElement(v)
}
