// Package pipeline turns page entries into extracted records.
//
// A Driver fetches a page through an injected scraper.Fetcher, picks the
// parser for the entry's kind and returns the record, failing fast on the
// first error. ExtractAll runs many entries as independent units on a
// bounded worker pool: one entry failing never aborts its siblings, and
// results and failures come back in entry order regardless of completion
// order. The same machinery resolves the dragon pages referenced by a heroic
// race event.
package pipeline
