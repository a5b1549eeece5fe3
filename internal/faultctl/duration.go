package faultctl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TicksPerSecond is the server's fixed simulation rate.
const TicksPerSecond = 20

// ParseTickDuration converts an operator-facing duration string into
// server ticks. "5s" means five seconds of simulation (100 ticks),
// "100t" means one hundred ticks directly. Bare numbers are rejected
// rather than guessed at.
func ParseTickDuration(s string) (uint64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, errors.New("empty duration")
	}
	switch {
	case strings.HasSuffix(s, "t"):
		n, err := strconv.ParseUint(strings.TrimSuffix(s, "t"), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid tick duration %q", s)
		}
		return n, nil
	case strings.HasSuffix(s, "s"):
		secs, err := strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
		if err != nil || secs < 0 {
			return 0, fmt.Errorf("invalid seconds duration %q", s)
		}
		return uint64(secs * TicksPerSecond), nil
	}
	return 0, fmt.Errorf("duration %q needs an 's' or 't' suffix", s)
}
