// Package race parses deetlist heroic race event pages.
//
// An event page is a tree: the event holds laps ("div.hl"), each lap holds
// nodes ("div.nn"), and each node holds missions ("div.mm"). Parsing is
// strictly in document order and fails fast: a malformed mission aborts the
// whole event because the page layout has most likely changed.
package race
