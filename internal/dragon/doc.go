// Package dragon parses deetlist dragon pages: a dragon's own detail page,
// the "new dragons" release listing and the all-dragons index.
//
// Rarity and element are encoded on the pages as abbreviated CSS class
// tokens ("img_rp_l", "typ_f"); the lookup tables here are the only place
// those codes are interpreted.
package dragon
