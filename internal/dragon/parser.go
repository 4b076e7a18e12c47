package dragon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/deetlist/internal/dom"
)

// Selectors for a dragon detail page.
const (
	SelName        = "h1"
	SelRarity      = "div.img_rar"
	SelElements    = "#typ_hull .typ_i"
	SelImage       = "img.drag_img"
	SelBio         = "div#self_bio"
	SelBasicAttack = "p.brtext + div.b_split div.att_hold"
)

const (
	rarityClassPrefix  = "img_rp_"
	elementClassPrefix = "typ_"
	descriptionLabel   = "Description:"
	damageLabel        = "Damage:"
)

// ParsePage parses a dragon detail page. Attributes the parser does not
// extract yet are returned as unsupported.
func ParsePage(doc *dom.Document) (*Dragon, error) {
	name, err := readName(doc)
	if err != nil {
		return nil, err
	}
	rarity, err := readRarity(doc)
	if err != nil {
		return nil, err
	}
	elements, err := readElements(doc)
	if err != nil {
		return nil, err
	}
	image, err := readImageURL(doc)
	if err != nil {
		return nil, err
	}
	description, err := readDescription(doc)
	if err != nil {
		return nil, err
	}
	attacks, err := readBasicAttacks(doc)
	if err != nil {
		return nil, err
	}

	return &Dragon{
		SourceURL:    doc.URL(),
		Name:         name,
		Rarity:       rarity,
		Elements:     elements,
		ImageURL:     image,
		Description:  description,
		BasicAttacks: attacks,

		TrainableAttacks:   Unsupported[[]Attack](),
		Weakness:           Unsupported[[]Element](),
		Strengths:          Unsupported[[]Element](),
		BookID:             Unsupported[int](),
		Category:           Unsupported[int](),
		Breedable:          Unsupported[bool](),
		SummonTimeSeconds:  Unsupported[int](),
		BuyPrice:           Unsupported[Price](),
		HatchTimeSeconds:   Unsupported[int](),
		HatchXP:            Unsupported[int](),
		ReleaseDate:        Unsupported[int](),
		SellPrice:          Unsupported[int](),
		StartingGoldIncome: Unsupported[int](),
	}, nil
}

func readName(doc *dom.Document) (string, error) {
	n, ok := doc.SelectOne(SelName)
	if !ok || n.TrimmedText() == "" {
		return "", dom.MissingField("name", SelName)
	}
	return n.TrimmedText(), nil
}

func readRarity(doc *dom.Document) (Rarity, error) {
	n, ok := doc.SelectOne(SelRarity)
	if !ok {
		return "", dom.MissingField("rarity", SelRarity)
	}
	return rarityFromClasses(n)
}

// rarityFromClasses reads the "img_rp_<code>" class token of a rarity badge.
func rarityFromClasses(n dom.Node) (Rarity, error) {
	for _, class := range n.Classes() {
		if code, ok := strings.CutPrefix(class, rarityClassPrefix); ok {
			r, err := ParseRarity(code)
			if err != nil {
				return "", &dom.FieldError{Field: "rarity", Selector: SelRarity, Err: err}
			}
			return r, nil
		}
	}
	return "", &dom.FieldError{
		Field:    "rarity",
		Selector: SelRarity,
		Err:      fmt.Errorf("no %s class in %v", rarityClassPrefix, n.Classes()),
	}
}

func readElements(doc *dom.Document) ([]Element, error) {
	badges := doc.SelectAll(SelElements)
	if len(badges) == 0 {
		return nil, dom.MissingField("elements", SelElements)
	}

	elements := make([]Element, 0, len(badges))
	seen := make(map[Element]bool)
	for _, badge := range badges {
		code := ""
		for _, class := range badge.Classes() {
			if class == "typ_i" {
				continue
			}
			if c, ok := strings.CutPrefix(class, elementClassPrefix); ok {
				code = c
				break
			}
		}
		if code == "" {
			return nil, &dom.FieldError{
				Field:    "elements",
				Selector: SelElements,
				Err:      fmt.Errorf("no element class in %v", badge.Classes()),
			}
		}
		e, err := ParseElement(code)
		if err != nil {
			return nil, &dom.FieldError{Field: "elements", Selector: SelElements, Err: err}
		}
		if !seen[e] {
			seen[e] = true
			elements = append(elements, e)
		}
	}
	return elements, nil
}

func readImageURL(doc *dom.Document) (string, error) {
	n, ok := doc.SelectOne(SelImage)
	if !ok {
		return "", dom.MissingField("image_url", SelImage)
	}
	src, ok := n.Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", dom.MissingField("image_url", SelImage+"[src]")
	}
	ref, err := doc.Resolve(src)
	if err != nil {
		return "", &dom.FieldError{Field: "image_url", Selector: SelImage, Err: err}
	}
	return ref.String(), nil
}

// readDescription returns the "Description:" line of the bio block.
func readDescription(doc *dom.Document) (string, error) {
	bio, ok := doc.SelectOne(SelBio)
	if !ok {
		return "", dom.MissingField("description", SelBio)
	}
	for _, line := range bio.Lines() {
		if text, ok := strings.CutPrefix(line, descriptionLabel); ok {
			return strings.TrimSpace(text), nil
		}
	}
	return "", &dom.FieldError{
		Field:    "description",
		Selector: SelBio,
		Err:      fmt.Errorf("no %q line in bio", descriptionLabel),
	}
}

func readBasicAttacks(doc *dom.Document) ([]Attack, error) {
	blocks := doc.SelectAll(SelBasicAttack)
	if len(blocks) == 0 {
		return nil, dom.MissingField("basic_attacks", SelBasicAttack)
	}

	attacks := make([]Attack, 0, len(blocks))
	for i, block := range blocks {
		a, err := parseAttack(block.Lines())
		if err != nil {
			return nil, fmt.Errorf("basic attack %d: %w", i+1, err)
		}
		attacks = append(attacks, a)
	}
	return attacks, nil
}

// parseAttack reads an attack block: the attack name followed by a
// "Damage: 1200 | fire" line.
func parseAttack(lines []string) (Attack, error) {
	for i, line := range lines {
		stats, ok := strings.CutPrefix(line, damageLabel)
		if !ok {
			continue
		}
		if i == 0 {
			return Attack{}, &dom.FieldError{Field: "attack_name", Selector: SelBasicAttack, Err: fmt.Errorf("no name before %q", line)}
		}

		damageText, elementText, found := strings.Cut(stats, "|")
		if !found {
			return Attack{}, &dom.FieldError{Field: "attack_element", Selector: SelBasicAttack, Err: fmt.Errorf("malformed stats %q", line)}
		}
		damage, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(damageText), ",", ""))
		if err != nil {
			return Attack{}, &dom.FieldError{Field: "attack_damage", Selector: SelBasicAttack, Err: fmt.Errorf("invalid damage %q", damageText)}
		}
		element, err := ElementByName(elementText)
		if err != nil {
			return Attack{}, &dom.FieldError{Field: "attack_element", Selector: SelBasicAttack, Err: err}
		}

		return Attack{Name: lines[i-1], Damage: damage, Element: element}, nil
	}
	return Attack{}, &dom.FieldError{Field: "attack_damage", Selector: SelBasicAttack, Err: fmt.Errorf("no %q line", damageLabel)}
}
