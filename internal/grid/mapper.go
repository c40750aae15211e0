// Package grid maps per-day contribution counts onto a fixed grid of colored widget cells.
package grid

import (
	"fmt"
	"time"

	"github.com/preston-bernstein/contrib-widget-service/internal/timeutil"
)

// Layout decides which calendar day each cell index shows.
type Layout string

const (
	// LayoutChronological puts the oldest day at index 0 and the reference day at index N-1.
	LayoutChronological Layout = "chronological"
	// LayoutWeekColumns fills Monday-first week columns; the last column holds the reference week.
	// Days after the reference date render with the zero color.
	LayoutWeekColumns Layout = "week-columns"
)

const daysPerWeek = 7

// CellAssignment is the color resolved for a single cell.
type CellAssignment struct {
	Index int    `json:"index"`
	Color string `json:"color"`
}

// Cell carries the day and count behind an assignment.
type Cell struct {
	Index  int    `json:"index"`
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Level  int    `json:"level"`
	Color  string `json:"color"`
	Future bool   `json:"future,omitempty"`
}

// Option customizes a Mapper.
type Option func(*Mapper)

// WithLayout selects the cell ordering. An empty layout keeps the LayoutChronological default.
func WithLayout(layout Layout) Option {
	return func(m *Mapper) {
		if layout != "" {
			m.layout = layout
		}
	}
}

// Mapper resolves contribution maps into cell colors. It is immutable and safe for concurrent use.
type Mapper struct {
	size   int
	scale  ColorScale
	layout Layout
}

// NewMapper validates the geometry and color scale once so Map never fails.
func NewMapper(gridSize int, scale ColorScale, opts ...Option) (*Mapper, error) {
	m := &Mapper{size: gridSize, layout: LayoutChronological}
	for _, opt := range opts {
		opt(m)
	}
	if gridSize <= 0 {
		return nil, &ConfigError{Field: "gridSize", Err: fmt.Errorf("%w: %d", ErrInvalidGridSize, gridSize)}
	}
	switch m.layout {
	case LayoutChronological:
	case LayoutWeekColumns:
		if gridSize%daysPerWeek != 0 {
			return nil, &ConfigError{Field: "gridSize", Err: fmt.Errorf("%w: week-columns layout needs a multiple of 7, got %d", ErrInvalidGridSize, gridSize)}
		}
	default:
		return nil, &ConfigError{Field: "layout", Err: fmt.Errorf("unknown layout %q", m.layout)}
	}
	if err := scale.Validate(); err != nil {
		return nil, err
	}
	m.scale = scale.clone()
	return m, nil
}

// Size returns the number of cells produced per call.
func (m *Mapper) Size() int {
	return m.size
}

// Layout returns the configured cell ordering.
func (m *Mapper) Layout() Layout {
	return m.layout
}

// Scale returns a copy of the color scale.
func (m *Mapper) Scale() ColorScale {
	return m.scale.clone()
}

// Map returns exactly Size() assignments, one per index, ending at reference.
// Days missing from contributions count as zero.
func (m *Mapper) Map(contributions map[string]int, reference time.Time) []CellAssignment {
	cells := m.MapDays(contributions, reference)
	out := make([]CellAssignment, len(cells))
	for i, c := range cells {
		out[i] = CellAssignment{Index: c.Index, Color: c.Color}
	}
	return out
}

// MapDays is Map with the backing date and count of each cell.
func (m *Mapper) MapDays(contributions map[string]int, reference time.Time) []Cell {
	ref := timeutil.CivilDay(reference)
	cells := make([]Cell, m.size)
	for i := range cells {
		day := m.dayAt(i, ref)
		cell := Cell{Index: i, Date: timeutil.FormatDate(day)}
		if day.After(ref) {
			cell.Future = true
		} else {
			cell.Count = contributions[cell.Date]
			if cell.Count < 0 {
				cell.Count = 0
			}
		}
		cell.Level = m.scale.Level(cell.Count)
		cell.Color = m.scale.Resolve(cell.Count)
		cells[i] = cell
	}
	return cells
}

// Window returns the first and last day covered for reference (inclusive).
func (m *Mapper) Window(reference time.Time) (time.Time, time.Time) {
	ref := timeutil.CivilDay(reference)
	return m.dayAt(0, ref), ref
}

func (m *Mapper) dayAt(index int, ref time.Time) time.Time {
	if m.layout == LayoutWeekColumns {
		cols := m.size / daysPerWeek
		col, row := index/daysPerWeek, index%daysPerWeek
		weekStart := timeutil.StartOfWeek(ref).AddDate(0, 0, -daysPerWeek*(cols-1-col))
		return weekStart.AddDate(0, 0, row)
	}
	return ref.AddDate(0, 0, -(m.size - 1 - index))
}
