// Package storage provides JSON-based persistence for extraction runs.
//
// Each run is written to its own file, <kind>_<run-id>.json, inside the data
// directory. Run IDs are UUIDs, so files from separate runs never collide.
package storage
