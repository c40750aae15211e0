package grid

import (
	"fmt"
	"regexp"
	"strings"
)

// ZeroColor is the neutral placeholder painted for days without contributions.
const ZeroColor = "#EEEEEE"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Threshold maps every count >= Min (up to the next threshold) to Color.
type Threshold struct {
	Min   int    `json:"min" yaml:"min"`
	Color string `json:"color" yaml:"color"`
}

// ColorScale is an ordered list of thresholds. The first threshold is the zero bucket.
type ColorScale []Threshold

// DefaultScale mirrors GitHub's five contribution levels.
func DefaultScale() ColorScale {
	return ColorScale{
		{Min: 0, Color: ZeroColor},
		{Min: 1, Color: "#9BE9A8"},
		{Min: 3, Color: "#40C463"},
		{Min: 5, Color: "#30A14E"},
		{Min: 10, Color: "#216E39"},
	}
}

// Validate reports whether the scale can be used by a Mapper.
func (s ColorScale) Validate() error {
	if len(s) == 0 {
		return &ConfigError{Field: "colorScale", Err: ErrEmptyColorScale}
	}
	if s[0].Min != 0 {
		return &ConfigError{Field: "colorScale", Err: fmt.Errorf("%w: first threshold must be 0, got %d", ErrInvalidColorScale, s[0].Min)}
	}
	for i, t := range s {
		if !hexColorPattern.MatchString(t.Color) {
			return &ConfigError{Field: "colorScale", Err: fmt.Errorf("%w: threshold %d has invalid color %q", ErrInvalidColorScale, i, t.Color)}
		}
		if i > 0 && t.Min <= s[i-1].Min {
			return &ConfigError{Field: "colorScale", Err: fmt.Errorf("%w: thresholds must increase (%d after %d)", ErrInvalidColorScale, t.Min, s[i-1].Min)}
		}
	}
	return nil
}

// Resolve returns the color for count. Negative counts fall into the zero bucket.
// The scale must have been validated.
func (s ColorScale) Resolve(count int) string {
	color := s[0].Color
	for _, t := range s[1:] {
		if count < t.Min {
			break
		}
		color = t.Color
	}
	return color
}

// Level returns the index of the threshold count falls into (0 for the zero bucket).
func (s ColorScale) Level(count int) int {
	level := 0
	for i := 1; i < len(s); i++ {
		if count < s[i].Min {
			break
		}
		level = i
	}
	return level
}

func (s ColorScale) clone() ColorScale {
	out := make(ColorScale, len(s))
	for i, t := range s {
		out[i] = Threshold{Min: t.Min, Color: strings.ToUpper(t.Color)}
	}
	return out
}
