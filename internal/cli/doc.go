// Package cli implements the deets command-line interface.
//
// The cli package provides the Cobra-based CLI with one subcommand per page
// kind (race, new-dragons, dragons, dragon), text or JSON output, sorting of
// dragon listings, and optional persistence of each run. It wires config,
// scraper, cache, pipeline and storage together.
package cli
