package setlist

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError reports a song duration that is not in minutes:seconds form.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse duration %q: %s", e.Input, e.Reason)
}

// ParseDuration converts "M:SS" into fractional minutes.
//
// Seconds of 60 or more are taken literally ("3:75" is 4.25 minutes).
func ParseDuration(s string) (float64, error) {
	secs, err := ParseSeconds(s)
	if err != nil {
		return 0, err
	}
	return float64(secs) / 60, nil
}

// ParseSeconds converts "M:SS" into whole seconds. The result never exceeds
// math.MaxInt32, so sums over a catalog cannot wrap.
func ParseSeconds(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, &ParseError{Input: s, Reason: "expected exactly one colon"}
	}

	minutes, err := parseComponent(parts[0])
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "minutes " + err.Error()}
	}
	seconds, err := parseComponent(parts[1])
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "seconds " + err.Error()}
	}

	if minutes > (math.MaxInt32-seconds)/60 {
		return 0, &ParseError{Input: s, Reason: "out of range"}
	}
	return minutes*60 + seconds, nil
}

func parseComponent(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("must be a non-negative integer")
		}
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("out of range")
	}
	return int(v), nil
}
