package stats

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
)

// rangeNotationRegex matches amount ranges like "1-3" or "2-2"
var rangeNotationRegex = regexp.MustCompile(`^(\d+)-(\d+)$`)

// ParseRange parses an amount range like "1-3" into its bounds.
func ParseRange(notation string) (min, max int, err error) {
	matches := rangeNotationRegex.FindStringSubmatch(notation)
	if matches == nil {
		return 0, 0, fmt.Errorf("invalid amount range %q", notation)
	}
	min, _ = strconv.Atoi(matches[1])
	max, _ = strconv.Atoi(matches[2])
	if min > max {
		return 0, 0, fmt.Errorf("inverted amount range %q", notation)
	}
	return min, max, nil
}

// RollRange rolls a uniform amount within a parsed "min-max" range.
// Invalid notation rolls 0.
func RollRange(rng *rand.Rand, notation string) int {
	min, max, err := ParseRange(notation)
	if err != nil {
		return 0
	}
	return RollBetween(rng, min, max)
}

// RollBetween rolls a uniform integer in [min, max].
func RollBetween(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// RollChance rolls against a 0..1 probability.
func RollChance(rng *rand.Rand, chance float64) bool {
	if chance >= 1.0 {
		return true
	}
	if chance <= 0 {
		return false
	}
	return rng.Float64() < chance
}

// ApplyVariance randomizes base uniformly within ±variance and floors
// the result at 1.
func ApplyVariance(rng *rand.Rand, base int, variance float64) int {
	if base <= 0 {
		return 1
	}
	if variance <= 0 {
		return base
	}
	low := float64(base) * (1 - variance)
	high := float64(base) * (1 + variance)
	rolled := low + rng.Float64()*(high-low)
	result := int(math.Round(rolled))
	if result < 1 {
		result = 1
	}
	return result
}
