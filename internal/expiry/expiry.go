package expiry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// cascade lists each unit with the next smaller unit and the multiplier
// between them. Parsing walks the chain down to seconds.
var cascade = map[string]struct {
	next       string
	multiplier int64
}{
	"year":   {next: "day", multiplier: 365},
	"day":    {next: "hour", multiplier: 24},
	"hour":   {next: "minute", multiplier: 60},
	"minute": {next: "second", multiplier: 60},
}

// Parse converts an expiry string into a duration.
func Parse(s string) (time.Duration, error) {
	fields := strings.Fields(s)

	var magnitude, unit string
	switch len(fields) {
	case 1:
		magnitude, unit = fields[0], "second"
	case 2:
		magnitude, unit = fields[0], strings.TrimSuffix(fields[1], "s")
	default:
		return 0, fmt.Errorf("invalid expiry %q: expected \"<n>\" or \"<n> <unit>\"", s)
	}

	n, err := strconv.ParseInt(magnitude, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q: magnitude must be an integer: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid expiry %q: magnitude must not be negative", s)
	}

	seconds := n
	for unit != "second" {
		step, ok := cascade[unit]
		if !ok {
			return 0, fmt.Errorf("invalid expiry %q: unknown unit %q", s, unit)
		}
		if seconds > math.MaxInt64/step.multiplier {
			return 0, fmt.Errorf("invalid expiry %q: out of range", s)
		}
		seconds *= step.multiplier
		unit = step.next
	}
	if seconds > math.MaxInt64/int64(time.Second) {
		return 0, fmt.Errorf("invalid expiry %q: out of range", s)
	}

	return time.Duration(seconds) * time.Second, nil
}

// From returns now advanced by the parsed expiry.
func From(now time.Time, s string) (time.Time, error) {
	d, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(d), nil
}
