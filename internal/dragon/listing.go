package dragon

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pfrederiksen/deetlist/internal/dom"
)

// ErrListingLengthMismatch is returned when the parallel columns of a listing
// page have different lengths.
var ErrListingLengthMismatch = errors.New("listing length mismatch")

// Selectors for the new dragons listing. Each selects one column.
const (
	SelListingName     = ".rn"
	SelListingReleased = ".rt"
	SelListingRarity   = ".img_rar"
	SelListingImage    = ".newi"
)

// Selector for the all-dragons index.
const SelIndexLink = "a:has(.drag)"

const dragonSegment = "/dragon/"

// LengthError reports the column lengths of a malformed listing.
type LengthError struct {
	Names, Releases, Rarities, Images int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: names=%d released=%d rarities=%d images=%d",
		ErrListingLengthMismatch, e.Names, e.Releases, e.Rarities, e.Images)
}

func (e *LengthError) Unwrap() error { return ErrListingLengthMismatch }

// ParseListing parses the new dragons listing. The four columns are read
// independently and zipped by position.
func ParseListing(doc *dom.Document) (*Listing, error) {
	names := doc.SelectAll(SelListingName)
	releases := doc.SelectAll(SelListingReleased)
	rarities := doc.SelectAll(SelListingRarity)
	images := doc.SelectAll(SelListingImage)

	n := len(names)
	if len(releases) != n || len(rarities) != n || len(images) != n {
		return nil, &LengthError{
			Names:    len(names),
			Releases: len(releases),
			Rarities: len(rarities),
			Images:   len(images),
		}
	}

	entries := make([]ListingEntry, 0, n)
	for i := range n {
		entry, err := listingEntry(doc, names[i], releases[i], rarities[i], images[i])
		if err != nil {
			return nil, fmt.Errorf("listing row %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}

	return &Listing{SourceURL: doc.URL(), Entries: entries}, nil
}

func listingEntry(doc *dom.Document, name, released, rarity, image dom.Node) (ListingEntry, error) {
	releasedAt, err := strconv.Atoi(released.TrimmedText())
	if err != nil {
		return ListingEntry{}, &dom.FieldError{
			Field:    "released_at",
			Selector: SelListingReleased,
			Err:      fmt.Errorf("invalid release code %q", released.TrimmedText()),
		}
	}

	r, err := rarityFromClasses(rarity)
	if err != nil {
		return ListingEntry{}, err
	}

	src, ok := image.Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return ListingEntry{}, dom.MissingField("image_url", SelListingImage+"[src]")
	}
	ref, err := doc.Resolve(src)
	if err != nil {
		return ListingEntry{}, &dom.FieldError{Field: "image_url", Selector: SelListingImage, Err: err}
	}

	return ListingEntry{
		Name:       name.TrimmedText(),
		ReleasedAt: releasedAt,
		Rarity:     r,
		ImageURL:   ref.String(),
	}, nil
}

// ParseIndex parses the all-dragons page. Image URLs are derived from the
// dragon's page URL: ".../dragon/Fire" maps to ".../img/dragon/fire.png".
func ParseIndex(doc *dom.Document) (*Index, error) {
	links := doc.SelectAll(SelIndexLink)
	entries := make([]IndexEntry, 0, len(links))

	for i, link := range links {
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return nil, fmt.Errorf("index entry %d: %w", i+1, dom.MissingField("page_url", SelIndexLink+"[href]"))
		}
		page, err := doc.Resolve(href)
		if err != nil {
			return nil, fmt.Errorf("index entry %d: %w", i+1, err)
		}
		image, err := indexImage(page)
		if err != nil {
			return nil, fmt.Errorf("index entry %d: %w", i+1, err)
		}

		entries = append(entries, IndexEntry{
			Name:     link.TrimmedText(),
			PageURL:  page,
			ImageURL: image,
		})
	}

	return &Index{SourceURL: doc.URL(), Entries: entries}, nil
}

// indexImage maps a dragon page URL to its image URL.
func indexImage(page dom.PageRef) (string, error) {
	u, err := url.Parse(page.String())
	if err != nil {
		return "", &dom.FieldError{Field: "image_url", Selector: SelIndexLink, Err: err}
	}
	i := strings.LastIndex(u.Path, dragonSegment)
	name := ""
	if i >= 0 {
		name = u.Path[i+len(dragonSegment):]
	}
	if name == "" || strings.Contains(name, "/") {
		return "", &dom.FieldError{
			Field:    "image_url",
			Selector: SelIndexLink,
			Err:      fmt.Errorf("dragon page url %q has no %q segment", page, dragonSegment),
		}
	}
	u.Path = u.Path[:i] + "/img" + dragonSegment + strings.ToLower(name) + ".png"
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
