package dragon

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pfrederiksen/deetlist/internal/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://deetlist.com/dragoncity/dragon/Flame%20Dragon"

const dragonPage = `
<html>
<body>
  <h1>Flame Dragon</h1>
  <div class="img_rar img_rp_l"></div>
  <div id="typ_hull">
    <i class="typ_i typ_f"></i>
    <i class="typ_i typ_el"></i>
    <i class="typ_i typ_f"></i>
  </div>
  <img class="drag_img" src="../img/flame dragon.png">
  <div id="self_bio">
    <b>Bio</b>
    Description: Born in a volcano.
  </div>
  <p class="brtext">Basic Attacks</p>
  <div class="b_split">
    <div class="att_hold">
      <img src="../img/att.png">
      Fire Blast
      Damage: 1,200 | Fire
    </div>
    <div class="att_hold">
      Shock
      Damage: 900 | Electric
    </div>
  </div>
  <p class="other">Trainable Attacks</p>
  <div class="b_split">
    <div class="att_hold">
      Secret
      Damage: 5000 | Legend
    </div>
  </div>
</body>
</html>`

func mustParse(t *testing.T, url, html string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(url, html)
	require.NoError(t, err)
	return doc
}

func TestParsePage(t *testing.T) {
	d, err := ParsePage(mustParse(t, pageURL, dragonPage))
	require.NoError(t, err)

	assert.Equal(t, pageURL, d.SourceURL)
	assert.Equal(t, "Flame Dragon", d.Name)
	assert.Equal(t, RarityLegendary, d.Rarity)
	assert.Equal(t, []Element{ElementFire, ElementElectric}, d.Elements, "elements deduplicated in page order")
	assert.True(t, d.HasElement(ElementElectric))
	assert.False(t, d.HasElement(ElementIce))
	assert.Equal(t, "https://deetlist.com/dragoncity/img/flame%20dragon.png", d.ImageURL)
	assert.Equal(t, "Born in a volcano.", d.Description)
	assert.Equal(t, []Attack{
		{Name: "Fire Blast", Damage: 1200, Element: ElementFire},
		{Name: "Shock", Damage: 900, Element: ElementElectric},
	}, d.BasicAttacks)

	for name, state := range map[string]AttrState{
		"weakness":   d.Weakness.State(),
		"strengths":  d.Strengths.State(),
		"breedable":  d.Breedable.State(),
		"buy_price":  d.BuyPrice.State(),
		"hatch_time": d.HatchTimeSeconds.State(),
		"release":    d.ReleaseDate.State(),
		"trainable":  d.TrainableAttacks.State(),
	} {
		assert.Equal(t, AttrUnsupported, state, name)
	}
}

func TestParsePage_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		remove string
		field  string
	}{
		{"name", "<h1>Flame Dragon</h1>", "name"},
		{"rarity", `<div class="img_rar img_rp_l"></div>`, "rarity"},
		{"image", `<img class="drag_img" src="../img/flame dragon.png">`, "image_url"},
		{"description", "Description: Born in a volcano.", "description"},
		{"attacks", `<p class="brtext">Basic Attacks</p>`, "basic_attacks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := strings.Replace(dragonPage, tt.remove, "", 1)
			_, err := ParsePage(mustParse(t, pageURL, html))
			require.Error(t, err)
			assert.True(t, errors.Is(err, dom.ErrFieldNotFound), "got %v", err)

			var fe *dom.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestParsePage_MissingElements(t *testing.T) {
	html := strings.ReplaceAll(dragonPage, "typ_i", "badge")
	_, err := ParsePage(mustParse(t, pageURL, html))
	assert.True(t, errors.Is(err, dom.ErrFieldNotFound))
}

func TestParsePage_UnknownCodes(t *testing.T) {
	_, err := ParsePage(mustParse(t, pageURL, strings.Replace(dragonPage, "img_rp_l", "img_rp_x", 1)))
	assert.True(t, errors.Is(err, ErrUnknownRarity), "got %v", err)

	_, err = ParsePage(mustParse(t, pageURL, strings.Replace(dragonPage, "typ_el", "typ_zz", 1)))
	assert.True(t, errors.Is(err, ErrUnknownElement), "got %v", err)

	_, err = ParsePage(mustParse(t, pageURL, strings.Replace(dragonPage, "| Electric", "| Plasma", 1)))
	assert.True(t, errors.Is(err, ErrUnknownElement), "got %v", err)
}

func TestParseRarity(t *testing.T) {
	tests := map[string]Rarity{
		"c": RarityCommon,
		"r": RarityRare,
		"v": RarityVeryRare,
		"e": RarityEpic,
		"L": RarityLegendary,
		"h": RarityHeroic,
	}
	for code, want := range tests {
		got, err := ParseRarity(code)
		require.NoError(t, err, code)
		assert.Equal(t, want, got, code)
	}

	_, err := ParseRarity("q")
	assert.True(t, errors.Is(err, ErrUnknownRarity))
}

func TestRarity_Rank(t *testing.T) {
	order := []Rarity{RarityCommon, RarityRare, RarityVeryRare, RarityEpic, RarityLegendary, RarityHeroic}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1].Rank(), order[i].Rank(), "%s < %s", order[i-1], order[i])
	}
	assert.Equal(t, 0, Rarity("MYTHIC").Rank())
}

func TestParseElement(t *testing.T) {
	assert.Len(t, elementCodes, 21)

	for code, want := range elementCodes {
		got, err := ParseElement(code)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		byName, err := ElementByName(strings.ToUpper(string(want)))
		require.NoError(t, err)
		assert.Equal(t, want, byName)
	}

	_, err := ParseElement("zz")
	assert.True(t, errors.Is(err, ErrUnknownElement))
	_, err = ElementByName("plasma")
	assert.True(t, errors.Is(err, ErrUnknownElement))
}

func TestAttr(t *testing.T) {
	var zero Attr[int]
	assert.Equal(t, AttrUnsupported, zero.State())

	_, ok := Absent[int]().Get()
	assert.False(t, ok)

	v, ok := Present(42).Get()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestAttr_JSON(t *testing.T) {
	tests := []struct {
		name string
		attr Attr[int]
		want string
	}{
		{"unsupported", Unsupported[int](), `{"status":"unsupported"}`},
		{"absent", Absent[int](), `{"status":"absent"}`},
		{"present", Present(0), `{"status":"present","value":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.attr)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Attr[int]
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.attr, back)
		})
	}

	var bad Attr[int]
	assert.Error(t, json.Unmarshal([]byte(`{"status":"present"}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"status":"maybe"}`), &bad))
}
