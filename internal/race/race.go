package race

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/deetlist/internal/dom"
	"github.com/pfrederiksen/deetlist/internal/dragon"
)

var (
	// ErrUnknownMissionType is returned for a mission name outside the known vocabulary.
	ErrUnknownMissionType = errors.New("unknown mission type")

	// ErrStructuralInvariant is returned when a page breaks the event tree rules,
	// such as two laps sharing a number.
	ErrStructuralInvariant = errors.New("structural invariant violation")
)

// MissionType classifies a mission.
type MissionType string

const (
	MissionFood   MissionType = "FOOD"
	MissionBattle MissionType = "BATTLE"
	MissionHatch  MissionType = "HATCH"
	MissionFeed   MissionType = "FEED"
	MissionPVP    MissionType = "PVP"
	MissionGold   MissionType = "GOLD"
)

// missionTypes maps the display name shown on the page to its type.
var missionTypes = map[string]MissionType{
	"Collect Food":   MissionFood,
	"Battle Dragons": MissionBattle,
	"Hatch Eggs":     MissionHatch,
	"Feed Dragons":   MissionFeed,
	"League Battles": MissionPVP,
	"Collect Gold":   MissionGold,
}

// MissionTypeFor returns the mission type for a display name.
func MissionTypeFor(displayName string) (MissionType, error) {
	t, ok := missionTypes[strings.TrimSpace(displayName)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMissionType, displayName)
	}
	return t, nil
}

// MissionNames returns the known display names.
func MissionNames() []string {
	names := make([]string, 0, len(missionTypes))
	for name := range missionTypes {
		names = append(names, name)
	}
	return names
}

// Event is a heroic race event.
type Event struct {
	SourceURL    string        `json:"source_url"`
	DurationDays int           `json:"duration_days"`
	DragonRefs   []dom.PageRef `json:"dragon_refs"`
	Laps         []Lap         `json:"laps"`

	// Dragons holds the parsed dragon pages for DragonRefs, in reference
	// order. It is only set when the caller asked for references to be
	// resolved; refs that could not be resolved are listed in Unresolved.
	Dragons    []*dragon.Dragon `json:"dragons,omitempty"`
	Unresolved []UnresolvedRef  `json:"unresolved_dragons,omitempty"`
}

// UnresolvedRef is a dragon reference whose page could not be extracted.
type UnresolvedRef struct {
	Ref   dom.PageRef `json:"ref"`
	Error string      `json:"error"`
}

// Lap is one loop around the race map.
type Lap struct {
	Number int    `json:"number"`
	Nodes  []Node `json:"nodes"`
}

// Node is a stop within a lap. Numbers restart on every lap.
type Node struct {
	Number   int       `json:"number"`
	Missions []Mission `json:"missions"`
}

// Mission is a single task offered at a node.
type Mission struct {
	Type                   MissionType `json:"type"`
	DisplayName            string      `json:"display_name"`
	GoalItems              int         `json:"goal_items"`
	PoolSize               int         `json:"pool_size"`
	PerItemPoolTimeSeconds int         `json:"per_item_pool_time_seconds"`
	TotalPoolTimeSeconds   int         `json:"total_pool_time_seconds"`
	ItemDropChance         string      `json:"item_drop_chance"`
}

// MarshalJSON keeps empty sequences as [] rather than null.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	out := plain(e)
	if out.DragonRefs == nil {
		out.DragonRefs = []dom.PageRef{}
	}
	if out.Laps == nil {
		out.Laps = []Lap{}
	}
	return json.Marshal(out)
}

// MissionCount returns the number of missions across all laps and nodes.
func (e *Event) MissionCount() int {
	count := 0
	for _, lap := range e.Laps {
		for _, node := range lap.Nodes {
			count += len(node.Missions)
		}
	}
	return count
}
