package dragon

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownRarity is returned for a rarity code outside the known set.
	ErrUnknownRarity = errors.New("unknown rarity")

	// ErrUnknownElement is returned for an element code or name outside the known set.
	ErrUnknownElement = errors.New("unknown element")
)

// Rarity is a dragon's rarity tier.
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityVeryRare  Rarity = "VERY_RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
	RarityHeroic    Rarity = "HEROIC"
)

var rarityCodes = map[string]Rarity{
	"c": RarityCommon,
	"r": RarityRare,
	"v": RarityVeryRare,
	"e": RarityEpic,
	"l": RarityLegendary,
	"h": RarityHeroic,
}

var rarityRanks = map[Rarity]int{
	RarityCommon:    1,
	RarityRare:      2,
	RarityVeryRare:  3,
	RarityEpic:      4,
	RarityLegendary: 5,
	RarityHeroic:    6,
}

// Rank orders rarities from COMMON (1) to HEROIC (6). Unknown values rank 0.
func (r Rarity) Rank() int {
	return rarityRanks[r]
}

// ParseRarity maps a page rarity code ("l", "L") to a Rarity.
func ParseRarity(code string) (Rarity, error) {
	r, ok := rarityCodes[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRarity, code)
	}
	return r, nil
}

// Element is a dragon or attack element.
type Element string

const (
	ElementWater    Element = "water"
	ElementPlant    Element = "plant"
	ElementFire     Element = "fire"
	ElementDark     Element = "dark"
	ElementEarth    Element = "earth"
	ElementElectric Element = "electric"
	ElementMetal    Element = "metal"
	ElementIce      Element = "ice"
	ElementWar      Element = "war"
	ElementLegend   Element = "legend"
	ElementLight    Element = "light"
	ElementPure     Element = "pure"
	ElementBeauty   Element = "beauty"
	ElementChaos    Element = "chaos"
	ElementMagic    Element = "magic"
	ElementHappy    Element = "happy"
	ElementDream    Element = "dream"
	ElementSoul     Element = "soul"
	ElementPrimal   Element = "primal"
	ElementWind     Element = "wind"
	ElementTime     Element = "time"
)

var elementCodes = map[string]Element{
	"w":  ElementWater,
	"p":  ElementPlant,
	"f":  ElementFire,
	"d":  ElementDark,
	"e":  ElementEarth,
	"el": ElementElectric,
	"m":  ElementMetal,
	"i":  ElementIce,
	"wr": ElementWar,
	"l":  ElementLegend,
	"li": ElementLight,
	"pu": ElementPure,
	"bt": ElementBeauty,
	"ch": ElementChaos,
	"mg": ElementMagic,
	"hp": ElementHappy,
	"dr": ElementDream,
	"so": ElementSoul,
	"pr": ElementPrimal,
	"wd": ElementWind,
	"ti": ElementTime,
}

// ParseElement maps a page element code ("f", "el") to an Element.
func ParseElement(code string) (Element, error) {
	e, ok := elementCodes[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return "", fmt.Errorf("%w: code %q", ErrUnknownElement, code)
	}
	return e, nil
}

// ElementByName maps a spelled-out element name ("Fire") to an Element.
func ElementByName(name string) (Element, error) {
	n := Element(strings.ToLower(strings.TrimSpace(name)))
	for _, e := range elementCodes {
		if e == n {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: name %q", ErrUnknownElement, name)
}
