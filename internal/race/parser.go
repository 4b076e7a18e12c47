package race

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/deetlist/internal/dom"
	"github.com/pfrederiksen/deetlist/internal/duration"
)

// Selectors for the regions of an event page.
const (
	SelDuration    = "div.dur_text"
	SelDragonBox   = "div.over"
	SelDragonLink  = "a"
	SelLap         = "div.hl"
	SelNode        = "div.nn"
	SelNodeHeader  = "div.nnh"
	SelMission     = "div.mm"
	SelMissionName = "div.mh"
	SelMissionInfo = "div.m2"
)

// Positions of the info fields inside a mission block.
const (
	infoGoalItems = iota
	infoPoolSize
	infoPerItemPoolTime
	infoDropChance
	infoTotalPoolTime
	infoFieldCount
)

// Node headers read "Lap 2 - Node 5".
var headerPattern = regexp.MustCompile(`(?i)lap\s*(\d+)\s*-\s*node\s*(\d+)`)

// ParseEvent parses a heroic race event page.
func ParseEvent(doc *dom.Document) (*Event, error) {
	days, err := parseDurationDays(doc)
	if err != nil {
		return nil, err
	}

	refs, err := parseDragonRefs(doc)
	if err != nil {
		return nil, err
	}

	laps, err := parseLaps(doc.SelectAll(SelLap))
	if err != nil {
		return nil, err
	}

	return &Event{
		SourceURL:    doc.URL(),
		DurationDays: days,
		DragonRefs:   refs,
		Laps:         laps,
	}, nil
}

func parseDurationDays(doc *dom.Document) (int, error) {
	n, err := doc.Require(SelDuration)
	if err != nil {
		return 0, &dom.FieldError{Field: "duration_days", Selector: SelDuration, Err: err}
	}
	days, err := duration.Days(n.Text())
	if err != nil {
		return 0, &dom.FieldError{Field: "duration_days", Selector: SelDuration, Err: err}
	}
	return days, nil
}

// parseDragonRefs takes the first link of each dragon box.
func parseDragonRefs(doc *dom.Document) ([]dom.PageRef, error) {
	boxes := doc.SelectAll(SelDragonBox)
	refs := make([]dom.PageRef, 0, len(boxes))
	for i, box := range boxes {
		link, err := box.Require(SelDragonLink)
		if err != nil {
			return nil, fmt.Errorf("dragon link %d: %w", i+1, dom.MissingField("dragon_ref", SelDragonBox+" "+SelDragonLink))
		}
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return nil, fmt.Errorf("dragon link %d: %w", i+1, dom.MissingField("href", SelDragonBox+" "+SelDragonLink))
		}
		ref, err := doc.Resolve(href)
		if err != nil {
			return nil, fmt.Errorf("dragon link %d: %w", i+1, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseLaps(regions []dom.Node) ([]Lap, error) {
	laps := make([]Lap, 0, len(regions))
	seen := make(map[int]bool)

	for i, region := range regions {
		lap, err := ParseLap(region)
		if err != nil {
			return nil, fmt.Errorf("lap %d: %w", i+1, err)
		}
		if seen[lap.Number] {
			return nil, fmt.Errorf("lap %d: %w: duplicate lap number %d", i+1, ErrStructuralInvariant, lap.Number)
		}
		seen[lap.Number] = true
		laps = append(laps, lap)
	}

	return laps, nil
}

// ParseLap parses one "div.hl" region. The lap number comes from the first
// node header inside it.
func ParseLap(region dom.Node) (Lap, error) {
	header, err := region.Require(SelNodeHeader)
	if err != nil {
		return Lap{}, &dom.FieldError{Field: "lap_number", Selector: SelNodeHeader, Err: err}
	}
	number, _, err := parseHeader(header.Text())
	if err != nil {
		return Lap{}, &dom.FieldError{Field: "lap_number", Selector: SelNodeHeader, Err: err}
	}

	regions := region.SelectAll(SelNode)
	nodes := make([]Node, 0, len(regions))
	seen := make(map[int]bool)

	for i, nodeRegion := range regions {
		node, err := ParseNode(nodeRegion)
		if err != nil {
			return Lap{}, fmt.Errorf("node %d: %w", i+1, err)
		}
		if seen[node.Number] {
			return Lap{}, fmt.Errorf("node %d: %w: duplicate node number %d in lap %d",
				i+1, ErrStructuralInvariant, node.Number, number)
		}
		seen[node.Number] = true
		nodes = append(nodes, node)
	}

	return Lap{Number: number, Nodes: nodes}, nil
}

// ParseNode parses one "div.nn" region.
func ParseNode(region dom.Node) (Node, error) {
	header, err := region.Require(SelNodeHeader)
	if err != nil {
		return Node{}, &dom.FieldError{Field: "node_number", Selector: SelNodeHeader, Err: err}
	}
	_, number, err := parseHeader(header.Text())
	if err != nil {
		return Node{}, &dom.FieldError{Field: "node_number", Selector: SelNodeHeader, Err: err}
	}

	regions := region.SelectAll(SelMission)
	missions := make([]Mission, 0, len(regions))
	for i, missionRegion := range regions {
		m, err := ParseMission(missionRegion)
		if err != nil {
			return Node{}, fmt.Errorf("mission %d: %w", i+1, err)
		}
		missions = append(missions, m)
	}

	return Node{Number: number, Missions: missions}, nil
}

// parseHeader reads the lap and node numbers from a node header.
func parseHeader(text string) (lap, node int, err error) {
	m := headerPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, fmt.Errorf("unexpected node header %q", strings.TrimSpace(text))
	}
	lap, lapErr := strconv.Atoi(m[1])
	node, nodeErr := strconv.Atoi(m[2])
	if lapErr != nil || nodeErr != nil {
		return 0, 0, fmt.Errorf("unexpected node header %q", strings.TrimSpace(text))
	}
	if lap < 1 || node < 1 {
		return 0, 0, fmt.Errorf("node header %q: numbers start at 1", strings.TrimSpace(text))
	}
	return lap, node, nil
}

// ParseMission parses one "div.mm" mission block.
func ParseMission(region dom.Node) (Mission, error) {
	nameNode, err := region.Require(SelMissionName)
	if err != nil {
		return Mission{}, &dom.FieldError{Field: "display_name", Selector: SelMissionName, Err: err}
	}
	name := nameNode.TrimmedText()

	missionType, err := MissionTypeFor(name)
	if err != nil {
		return Mission{}, err
	}

	info := region.SelectAll(SelMissionInfo)
	if len(info) < infoFieldCount {
		return Mission{}, &dom.FieldError{
			Field:    "info",
			Selector: SelMissionInfo,
			Err:      fmt.Errorf("expected %d info fields, found %d", infoFieldCount, len(info)),
		}
	}

	goal, err := parseCount("goal_items", info[infoGoalItems])
	if err != nil {
		return Mission{}, err
	}
	pool, err := parseCount("pool_size", info[infoPoolSize])
	if err != nil {
		return Mission{}, err
	}
	perItem, err := parseSeconds("per_item_pool_time", info[infoPerItemPoolTime])
	if err != nil {
		return Mission{}, err
	}
	total, err := parseSeconds("total_pool_time", info[infoTotalPoolTime])
	if err != nil {
		return Mission{}, err
	}

	return Mission{
		Type:                   missionType,
		DisplayName:            name,
		GoalItems:              goal,
		PoolSize:               pool,
		PerItemPoolTimeSeconds: perItem,
		TotalPoolTimeSeconds:   total,
		ItemDropChance:         info[infoDropChance].TrimmedText(),
	}, nil
}

func parseCount(field string, n dom.Node) (int, error) {
	text := strings.ReplaceAll(n.TrimmedText(), ",", "")
	v, err := strconv.Atoi(text)
	if err != nil || v < 0 {
		return 0, &dom.FieldError{Field: field, Selector: SelMissionInfo, Err: fmt.Errorf("invalid count %q", n.TrimmedText())}
	}
	return v, nil
}

func parseSeconds(field string, n dom.Node) (int, error) {
	v, err := duration.Normalize(n.Text())
	if err != nil {
		return 0, &dom.FieldError{Field: field, Selector: SelMissionInfo, Err: err}
	}
	return v, nil
}
