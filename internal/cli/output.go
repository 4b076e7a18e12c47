package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/deetlist/internal/dragon"
	"github.com/pfrederiksen/deetlist/internal/duration"
	"github.com/pfrederiksen/deetlist/internal/pipeline"
	"github.com/pfrederiksen/deetlist/internal/race"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// OutputResult contains data to be output
type OutputResult struct {
	RunID       string             `json:"run_id"`
	Command     string             `json:"command"`
	CheckedAt   time.Time          `json:"checked_at"`
	Results     []pipeline.Result  `json:"results"`
	Failures    []pipeline.Failure `json:"failures"`
	Dragons     []*dragon.Dragon   `json:"dragons,omitempty"`
	SavedTo     string             `json:"saved_to,omitempty"`
	RecordCount int                `json:"record_count"`

	// pages counts every page fetched for the run, failed or not.
	pages int
}

func newOutputResult(runID, command string, batch *pipeline.Batch) *OutputResult {
	return &OutputResult{
		RunID:       runID,
		Command:     command,
		CheckedAt:   time.Now().UTC(),
		Results:     batch.Results,
		Failures:    batch.Failures,
		RecordCount: len(batch.Results),
		pages:       len(batch.Results) + len(batch.Failures),
	}
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if len(result.Results) == 0 && len(result.Failures) == 0 {
		fmt.Fprintln(w, "Nothing extracted.")
		return nil
	}

	for _, r := range result.Results {
		switch rec := r.Record.(type) {
		case *race.Event:
			writeEvent(w, rec, verbose)
		case *dragon.Listing:
			writeListing(w, rec, verbose)
		case *dragon.Index:
			writeIndex(w, rec, verbose)
		case *dragon.Dragon:
			writeDragon(w, rec, "", verbose)
		default:
			fmt.Fprintf(w, "%s: %s\n", r.Entry.Kind, r.Entry.URL)
		}
	}

	if len(result.Dragons) > 0 {
		fmt.Fprintf(w, "\nResolved dragons (%d):\n", len(result.Dragons))
		for _, d := range result.Dragons {
			writeDragon(w, d, "  ", verbose)
		}
	}

	for _, f := range result.Failures {
		fmt.Fprintf(w, "\nFAILED (%s): %s\n", f.Entry.Kind, f.Entry.URL)
		fmt.Fprintf(w, "  %v\n", f.Err)
	}

	fmt.Fprintf(w, "\nTotal: %d extracted, %d failed\n", len(result.Results), len(result.Failures))
	if result.SavedTo != "" {
		fmt.Fprintf(w, "Saved to %s\n", result.SavedTo)
	}
	return nil
}

func writeEvent(w io.Writer, ev *race.Event, verbose bool) {
	fmt.Fprintf(w, "\nHeroic race: %s\n", ev.SourceURL)
	fmt.Fprintf(w, "  Lasts %d days, %d laps, %d missions\n", ev.DurationDays, len(ev.Laps), ev.MissionCount())

	if verbose {
		for _, lap := range ev.Laps {
			for _, node := range lap.Nodes {
				fmt.Fprintf(w, "  Lap %d - Node %d\n", lap.Number, node.Number)
				for _, m := range node.Missions {
					fmt.Fprintf(w, "    %-15s goal %d, pool %d, %s per item, drop %s, total %s\n",
						m.DisplayName, m.GoalItems, m.PoolSize,
						formatSeconds(m.PerItemPoolTimeSeconds), m.ItemDropChance,
						formatSeconds(m.TotalPoolTimeSeconds))
				}
			}
		}
	}

	if len(ev.Dragons) > 0 || len(ev.Unresolved) > 0 {
		fmt.Fprintf(w, "  Dragons (%d):\n", len(ev.Dragons))
		for _, d := range ev.Dragons {
			writeDragon(w, d, "    ", verbose)
		}
		for _, u := range ev.Unresolved {
			fmt.Fprintf(w, "    UNRESOLVED: %s (%s)\n", u.Ref, u.Error)
		}
		return
	}
	fmt.Fprintf(w, "  Dragons: %d referenced\n", len(ev.DragonRefs))
	if verbose {
		for _, ref := range ev.DragonRefs {
			fmt.Fprintf(w, "    %s\n", ref)
		}
	}
}

func writeListing(w io.Writer, l *dragon.Listing, verbose bool) {
	fmt.Fprintf(w, "\nNew dragons (%d): %s\n", len(l.Entries), l.SourceURL)
	for _, e := range l.Entries {
		fmt.Fprintf(w, "  %s [%s]\n", e.Name, e.Rarity)
		if verbose {
			fmt.Fprintf(w, "       Released: %d\n", e.ReleasedAt)
			fmt.Fprintf(w, "       Image: %s\n", e.ImageURL)
		}
	}
}

func writeIndex(w io.Writer, ix *dragon.Index, verbose bool) {
	fmt.Fprintf(w, "\nAll dragons (%d): %s\n", len(ix.Entries), ix.SourceURL)
	if !verbose {
		return
	}
	for _, e := range ix.Entries {
		fmt.Fprintf(w, "  %s: %s\n", e.Name, e.PageURL)
	}
}

func writeDragon(w io.Writer, d *dragon.Dragon, indent string, verbose bool) {
	elements := make([]string, len(d.Elements))
	for i, e := range d.Elements {
		elements[i] = string(e)
	}
	if indent == "" {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%s%s [%s] %s\n", indent, d.Name, d.Rarity, strings.Join(elements, ", "))
	if !verbose {
		return
	}
	if d.Description != "" {
		fmt.Fprintf(w, "%s     %s\n", indent, d.Description)
	}
	for _, a := range d.BasicAttacks {
		fmt.Fprintf(w, "%s     %s: %d (%s)\n", indent, a.Name, a.Damage, a.Element)
	}
}

// formatSeconds renders a pool time as "instant", "45m", "2h" or "3d 4h".
func formatSeconds(s int) string {
	if s <= 0 {
		return "instant"
	}
	units := []struct {
		size   int
		suffix string
	}{
		{duration.SecondsPerDay, "d"},
		{duration.SecondsPerHour, "h"},
		{duration.SecondsPerMinute, "m"},
		{1, "s"},
	}
	parts := make([]string, 0, len(units))
	for _, u := range units {
		if n := s / u.size; n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, u.suffix))
			s %= u.size
		}
	}
	return strings.Join(parts, " ")
}
