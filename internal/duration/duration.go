package duration

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour
)

// ErrUnrecognizedFormat is returned when text matches none of the known shapes.
var ErrUnrecognizedFormat = errors.New("unrecognized duration format")

// FormatError reports the text that failed to normalize.
type FormatError struct {
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnrecognizedFormat, e.Text)
}

func (e *FormatError) Unwrap() error {
	return ErrUnrecognizedFormat
}

// shape is one recognized duration layout. Captured groups are multiplied by
// the unit at the same position.
type shape struct {
	pattern *regexp.Regexp
	units   []int
}

// Order matters: the first matching shape wins.
var shapes = []shape{
	{regexp.MustCompile(`^(\d+)\s*minutes?$`), []int{SecondsPerMinute}},
	{regexp.MustCompile(`^(\d+)\s*hours?$`), []int{SecondsPerHour}},
	{regexp.MustCompile(`^(\d+)\s*hrs?\s+(\d+)\s*mins?$`), []int{SecondsPerHour, SecondsPerMinute}},
	{regexp.MustCompile(`^(\d+)\s*days?\s+(\d+)\s*hrs?$`), []int{SecondsPerDay, SecondsPerHour}},
}

// Normalize converts a pool timer string into seconds.
// Matching is case-insensitive and ignores surrounding whitespace.
func Normalize(text string) (int, error) {
	t := strings.ToLower(strings.Join(strings.Fields(text), " "))

	if t == "instant" || t == "no minimum" {
		return 0, nil
	}

	for _, s := range shapes {
		m := s.pattern.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		total := 0
		for i, unit := range s.units {
			n, err := strconv.Atoi(m[i+1])
			if err != nil || n > (math.MaxInt-total)/unit {
				return 0, &FormatError{Text: text}
			}
			total += n * unit
		}
		return total, nil
	}

	return 0, &FormatError{Text: text}
}

var daysPattern = regexp.MustCompile(`^(\d+)\s*days?$`)

// Days parses an event length blurb such as "This event lasts 3 days" into
// whole days. The "This event lasts" prefix is optional.
func Days(text string) (int, error) {
	t := strings.ToLower(strings.Join(strings.Fields(text), " "))
	t = strings.TrimSpace(strings.TrimPrefix(t, "this event lasts"))

	m := daysPattern.FindStringSubmatch(t)
	if m == nil {
		return 0, &FormatError{Text: text}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &FormatError{Text: text}
	}
	return n, nil
}
