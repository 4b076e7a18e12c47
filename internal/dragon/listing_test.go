package dragon

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pfrederiksen/deetlist/internal/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingURL = "https://deetlist.com/dragoncity/new-dragons/"

type listingRow struct {
	name     string
	released string
	rarity   string
	image    string
}

// buildListing renders each column independently so tests can give them
// different lengths.
func buildListing(names, released, rarities, images []string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, n := range names {
		fmt.Fprintf(&b, `<div class="rn">%s</div>`, n)
	}
	for _, r := range released {
		fmt.Fprintf(&b, `<div class="rt">%s</div>`, r)
	}
	for _, r := range rarities {
		fmt.Fprintf(&b, `<div class="img_rp_%s img_rar"></div>`, r)
	}
	for _, src := range images {
		fmt.Fprintf(&b, `<img class="newi" src="%s">`, src)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func columns(rows []listingRow) (names, released, rarities, images []string) {
	for _, r := range rows {
		names = append(names, r.name)
		released = append(released, r.released)
		rarities = append(rarities, r.rarity)
		images = append(images, r.image)
	}
	return
}

func TestParseListing(t *testing.T) {
	rows := []listingRow{
		{"Ice Dragon", "1700000000", "c", "../img/ice dragon.png"},
		{"Hydra", "1700086400", "l", "../img/hydra.png"},
		{"Seraph", "1700172800", "h", "/dragoncity/img/seraph.png"},
	}
	doc, err := dom.Parse(listingURL, buildListing(columns(rows)))
	require.NoError(t, err)

	listing, err := ParseListing(doc)
	require.NoError(t, err)
	require.Len(t, listing.Entries, len(rows))

	assert.Equal(t, listingURL, listing.SourceURL)
	assert.Equal(t, ListingEntry{
		Name:       "Ice Dragon",
		ReleasedAt: 1700000000,
		Rarity:     RarityCommon,
		ImageURL:   "https://deetlist.com/dragoncity/img/ice%20dragon.png",
	}, listing.Entries[0])
	assert.Equal(t, "Hydra", listing.Entries[1].Name)
	assert.Equal(t, RarityLegendary, listing.Entries[1].Rarity)
	assert.Equal(t, 1700172800, listing.Entries[2].ReleasedAt)
	assert.Equal(t, RarityHeroic, listing.Entries[2].Rarity)
}

func TestParseListing_Empty(t *testing.T) {
	doc, err := dom.Parse(listingURL, "<html><body></body></html>")
	require.NoError(t, err)

	listing, err := ParseListing(doc)
	require.NoError(t, err)
	assert.Empty(t, listing.Entries)
}

func TestParseListing_LengthMismatch(t *testing.T) {
	names, released, rarities, images := columns([]listingRow{
		{"A", "1", "c", "a.png"},
		{"B", "2", "r", "b.png"},
	})

	tests := []struct {
		name string
		html string
	}{
		{"missing name", buildListing(names[:1], released, rarities, images)},
		{"missing release", buildListing(names, released[:1], rarities, images)},
		{"missing rarity", buildListing(names, released, rarities[:1], images)},
		{"extra image", buildListing(names, released, rarities, append(images, "c.png"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := dom.Parse(listingURL, tt.html)
			require.NoError(t, err)

			_, err = ParseListing(doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrListingLengthMismatch))

			var le *LengthError
			require.ErrorAs(t, err, &le)
		})
	}
}

func TestParseListing_BadReleaseCode(t *testing.T) {
	doc, err := dom.Parse(listingURL, buildListing([]string{"A"}, []string{"soon"}, []string{"c"}, []string{"a.png"}))
	require.NoError(t, err)

	_, err = ParseListing(doc)
	assert.True(t, errors.Is(err, dom.ErrFieldNotFound), "got %v", err)
}

func TestParseIndex(t *testing.T) {
	html := `
	<html><body>
	  <a href="../dragon/Fire Dragon"><div class="drag">Fire Dragon</div></a>
	  <a href="../about">About</a>
	  <a href="../dragon/Hydra"><div class="drag">Hydra</div></a>
	</body></html>`

	doc, err := dom.Parse("https://deetlist.com/dragoncity/all-dragons/", html)
	require.NoError(t, err)

	index, err := ParseIndex(doc)
	require.NoError(t, err)
	require.Len(t, index.Entries, 2)

	assert.Equal(t, IndexEntry{
		Name:     "Fire Dragon",
		PageURL:  "https://deetlist.com/dragoncity/dragon/Fire%20Dragon",
		ImageURL: "https://deetlist.com/dragoncity/img/dragon/fire%20dragon.png",
	}, index.Entries[0])
	assert.Equal(t, "Hydra", index.Entries[1].Name)
	assert.Equal(t, []dom.PageRef{
		"https://deetlist.com/dragoncity/dragon/Fire%20Dragon",
		"https://deetlist.com/dragoncity/dragon/Hydra",
	}, index.Refs())
}

func TestParseIndex_LinkShapes(t *testing.T) {
	tests := []struct {
		name  string
		href  string
		image string
	}{
		{"relative", "../dragon/Fire Dragon", "https://deetlist.com/dragoncity/img/dragon/fire%20dragon.png"},
		{"root relative", "/dragoncity/dragon/Fire Dragon", "https://deetlist.com/dragoncity/img/dragon/fire%20dragon.png"},
		{"absolute", "https://deetlist.com/dragoncity/dragon/Hydra", "https://deetlist.com/dragoncity/img/dragon/hydra.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := fmt.Sprintf(`<a href="%s"><div class="drag">X</div></a>`, tt.href)
			doc, err := dom.Parse("https://deetlist.com/dragoncity/all-dragons/", html)
			require.NoError(t, err)

			index, err := ParseIndex(doc)
			require.NoError(t, err)
			require.Len(t, index.Entries, 1)
			assert.Equal(t, tt.image, index.Entries[0].ImageURL)
		})
	}
}

func TestParseIndex_UnexpectedLink(t *testing.T) {
	doc, err := dom.Parse("https://deetlist.com/dragoncity/all-dragons/",
		`<a href="../about/Fire"><div class="drag">Fire</div></a>`)
	require.NoError(t, err)

	_, err = ParseIndex(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dom.ErrFieldNotFound), "got %v", err)
}
