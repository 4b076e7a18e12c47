package filter

import (
	"testing"

	"github.com/pfrederiksen/deetlist/internal/dragon"
)

func testDragons() []*dragon.Dragon {
	return []*dragon.Dragon{
		{Name: "Flame Dragon", Rarity: dragon.RarityLegendary, Elements: []dragon.Element{dragon.ElementFire, dragon.ElementElectric}},
		{Name: "Frost Wyrm", Rarity: dragon.RarityHeroic, Elements: []dragon.Element{dragon.ElementIce}},
		{Name: "Mud Dragon", Rarity: dragon.RarityCommon, Elements: []dragon.Element{dragon.ElementEarth, dragon.ElementWater}},
	}
}

func TestFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{name: "nil filter", filter: nil, want: true},
		{name: "empty filter", filter: NewFilter(), want: true},
		{name: "filter with rarity", filter: &Filter{Rarities: []dragon.Rarity{dragon.RarityEpic}}, want: false},
		{name: "filter with element", filter: &Filter{Elements: []dragon.Element{dragon.ElementFire}}, want: false},
		{name: "filter with name", filter: &Filter{Names: []string{"flame"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("Filter.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   []string
	}{
		{
			name:   "empty filter keeps everything",
			filter: NewFilter(),
			want:   []string{"Flame Dragon", "Frost Wyrm", "Mud Dragon"},
		},
		{
			name:   "any listed rarity",
			filter: &Filter{Rarities: []dragon.Rarity{dragon.RarityLegendary, dragon.RarityHeroic}},
			want:   []string{"Flame Dragon", "Frost Wyrm"},
		},
		{
			name:   "any listed element",
			filter: &Filter{Elements: []dragon.Element{dragon.ElementWater, dragon.ElementElectric}},
			want:   []string{"Flame Dragon", "Mud Dragon"},
		},
		{
			name:   "name substring is case-insensitive",
			filter: &Filter{Names: []string{"DRAGON"}},
			want:   []string{"Flame Dragon", "Mud Dragon"},
		},
		{
			name: "criteria combine",
			filter: &Filter{
				Rarities: []dragon.Rarity{dragon.RarityLegendary, dragon.RarityCommon},
				Elements: []dragon.Element{dragon.ElementEarth},
			},
			want: []string{"Mud Dragon"},
		},
		{
			name:   "no match",
			filter: &Filter{Elements: []dragon.Element{dragon.ElementDark}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(testDragons())
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() returned %d dragons, want %d", len(got), len(tt.want))
			}
			for i, d := range got {
				if d.Name != tt.want[i] {
					t.Errorf("Apply()[%d] = %s, want %s", i, d.Name, tt.want[i])
				}
			}
		})
	}
}

func TestFilter_ApplyListing(t *testing.T) {
	entries := []dragon.ListingEntry{
		{Name: "Flame Dragon", Rarity: dragon.RarityLegendary},
		{Name: "Mud Dragon", Rarity: dragon.RarityCommon},
	}

	f := &Filter{
		Rarities: []dragon.Rarity{dragon.RarityLegendary},
		Elements: []dragon.Element{dragon.ElementIce},
	}
	got := f.ApplyListing(entries)
	if len(got) != 1 || got[0].Name != "Flame Dragon" {
		t.Errorf("ApplyListing() = %+v, want only Flame Dragon (elements ignored)", got)
	}
}

func TestFilter_String(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   string
	}{
		{name: "empty", filter: NewFilter(), want: "No active filters"},
		{
			name: "all criteria",
			filter: &Filter{
				Rarities: []dragon.Rarity{dragon.RarityLegendary, dragon.RarityHeroic},
				Elements: []dragon.Element{dragon.ElementFire},
				Names:    []string{"flame"},
			},
			want: "Rarity: LEGENDARY, HEROIC | Elements: fire | Names: flame",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
