package dragon

import (
	"encoding/json"

	"github.com/pfrederiksen/deetlist/internal/dom"
)

// Attack is a basic attack listed on a dragon page.
type Attack struct {
	Name    string  `json:"name"`
	Damage  int     `json:"damage"`
	Element Element `json:"element"`
}

// Price is an in-game cost.
type Price struct {
	Currency string `json:"currency"`
	Amount   int    `json:"amount"`
}

// Dragon is a dragon detail page.
type Dragon struct {
	SourceURL    string    `json:"source_url"`
	Name         string    `json:"name"`
	Rarity       Rarity    `json:"rarity"`
	Elements     []Element `json:"elements"`
	ImageURL     string    `json:"image_url"`
	Description  string    `json:"description"`
	BasicAttacks []Attack  `json:"basic_attacks"`

	TrainableAttacks   Attr[[]Attack]  `json:"trainable_attacks"`
	Weakness           Attr[[]Element] `json:"weakness"`
	Strengths          Attr[[]Element] `json:"strengths"`
	BookID             Attr[int]       `json:"book_id"`
	Category           Attr[int]       `json:"category"`
	Breedable          Attr[bool]      `json:"breedable"`
	SummonTimeSeconds  Attr[int]       `json:"summon_time_seconds"`
	BuyPrice           Attr[Price]     `json:"buy_price"`
	HatchTimeSeconds   Attr[int]       `json:"hatch_time_seconds"`
	HatchXP            Attr[int]       `json:"hatch_xp"`
	ReleaseDate        Attr[int]       `json:"release_date"`
	SellPrice          Attr[int]       `json:"sell_price"`
	StartingGoldIncome Attr[int]       `json:"starting_gold_income"`
}

// HasElement reports whether the dragon carries e.
func (d *Dragon) HasElement(e Element) bool {
	for _, el := range d.Elements {
		if el == e {
			return true
		}
	}
	return false
}

// ListingEntry is one row of the new dragons listing.
type ListingEntry struct {
	Name       string `json:"name"`
	ReleasedAt int    `json:"released_at"`
	Rarity     Rarity `json:"rarity"`
	ImageURL   string `json:"image_url"`
}

// Listing is the new dragons release listing.
type Listing struct {
	SourceURL string         `json:"source_url"`
	Entries   []ListingEntry `json:"entries"`
}

// MarshalJSON keeps an empty listing as [] rather than null.
func (l Listing) MarshalJSON() ([]byte, error) {
	type plain Listing
	out := plain(l)
	if out.Entries == nil {
		out.Entries = []ListingEntry{}
	}
	return json.Marshal(out)
}

// IndexEntry is one dragon on the all-dragons page.
type IndexEntry struct {
	Name     string      `json:"name"`
	PageURL  dom.PageRef `json:"page_url"`
	ImageURL string      `json:"image_url"`
}

// Index is the all-dragons page.
type Index struct {
	SourceURL string       `json:"source_url"`
	Entries   []IndexEntry `json:"entries"`
}

// Refs returns the page references of every entry in order.
func (ix *Index) Refs() []dom.PageRef {
	refs := make([]dom.PageRef, len(ix.Entries))
	for i, e := range ix.Entries {
		refs[i] = e.PageURL
	}
	return refs
}
