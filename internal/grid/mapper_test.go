package grid

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func day(v string) time.Time {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMapWorkedExample(t *testing.T) {
	m, err := NewMapper(3, ColorScale{{Min: 0, Color: "#EEEEEE"}, {Min: 1, Color: "#9BE9A8"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.Map(map[string]int{"2024-01-01": 5, "2024-01-03": 0}, day("2024-01-03"))
	want := []CellAssignment{
		{Index: 0, Color: "#9BE9A8"},
		{Index: 1, Color: "#EEEEEE"},
		{Index: 2, Color: "#EEEEEE"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected assignments (-want +got):\n%s", diff)
	}
}

func TestMapCoversEveryIndexExactlyOnce(t *testing.T) {
	for _, size := range []int{1, 2, 7, 21, 84, 147} {
		m, err := NewMapper(size, DefaultScale())
		if err != nil {
			t.Fatalf("size %d: unexpected error: %v", size, err)
		}
		got := m.Map(nil, day("2024-03-10"))
		if len(got) != size {
			t.Fatalf("size %d: expected %d assignments, got %d", size, size, len(got))
		}
		for i, a := range got {
			if a.Index != i {
				t.Fatalf("size %d: expected index %d at position %d, got %d", size, i, i, a.Index)
			}
		}
	}
}

func TestMapMissingDaysUseZeroColor(t *testing.T) {
	m, err := NewMapper(21, DefaultScale())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range m.Map(map[string]int{"1999-01-01": 40}, day("2024-06-01")) {
		if a.Color != ZeroColor {
			t.Fatalf("expected zero color for cell %d, got %s", a.Index, a.Color)
		}
	}
}

func TestMapSingleCellIsReferenceDay(t *testing.T) {
	m, err := NewMapper(1, DefaultScale())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cells := m.MapDays(map[string]int{"2024-02-29": 12}, time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC))
	if len(cells) != 1 {
		t.Fatalf("expected one cell, got %d", len(cells))
	}
	if cells[0].Date != "2024-02-29" || cells[0].Count != 12 || cells[0].Color != "#216E39" {
		t.Fatalf("unexpected cell %+v", cells[0])
	}
}

func TestMapIsIdempotent(t *testing.T) {
	m, err := NewMapper(21, DefaultScale())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts := map[string]int{"2024-05-01": 2, "2024-05-05": 7, "2024-05-10": 11}
	first := m.Map(counts, day("2024-05-12"))
	second := m.Map(counts, day("2024-05-12"))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("expected identical output (-first +second):\n%s", diff)
	}
}

func TestMapIgnoresReferenceClockAndZone(t *testing.T) {
	m, err := NewMapper(2, DefaultScale())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc := time.FixedZone("UTC+9", 9*60*60)
	cells := m.MapDays(map[string]int{"2024-01-02": 1}, time.Date(2024, 1, 2, 1, 0, 0, 0, loc))
	if cells[1].Date != "2024-01-02" || cells[1].Count != 1 {
		t.Fatalf("expected wall-clock date of the reference, got %+v", cells[1])
	}
}

func TestMapNegativeCountsFallIntoZeroBucket(t *testing.T) {
	m, err := NewMapper(1, DefaultScale())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.Map(map[string]int{"2024-01-01": -3}, day("2024-01-01"))
	if got[0].Color != ZeroColor {
		t.Fatalf("expected zero color, got %s", got[0].Color)
	}
}

func TestNewMapperRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		scale  ColorScale
		opts   []Option
		target error
	}{
		{name: "zero size", size: 0, scale: DefaultScale(), target: ErrInvalidGridSize},
		{name: "negative size", size: -4, scale: DefaultScale(), target: ErrInvalidGridSize},
		{name: "empty scale", size: 21, scale: nil, target: ErrEmptyColorScale},
		{name: "scale missing zero", size: 21, scale: ColorScale{{Min: 1, Color: "#9BE9A8"}}, target: ErrInvalidColorScale},
		{name: "scale not increasing", size: 21, scale: ColorScale{{Min: 0, Color: "#EEEEEE"}, {Min: 3, Color: "#40C463"}, {Min: 3, Color: "#30A14E"}}, target: ErrInvalidColorScale},
		{name: "bad color", size: 21, scale: ColorScale{{Min: 0, Color: "grey"}}, target: ErrInvalidColorScale},
		{name: "week columns not multiple of seven", size: 20, scale: DefaultScale(), opts: []Option{WithLayout(LayoutWeekColumns)}, target: ErrInvalidGridSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMapper(tt.size, tt.scale, tt.opts...)
			if m != nil {
				t.Fatalf("expected nil mapper on error")
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			if _, ok := AsConfigError(err); !ok {
				t.Fatalf("expected ConfigError, got %T", err)
			}
		})
	}
}

func TestNewMapperRejectsUnknownLayout(t *testing.T) {
	if _, err := NewMapper(7, DefaultScale(), WithLayout("spiral")); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
}

func TestWeekColumnsLayout(t *testing.T) {
	m, err := NewMapper(14, DefaultScale(), WithLayout(LayoutWeekColumns))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2024-01-10 is a Wednesday; its week starts Monday 2024-01-08.
	counts := map[string]int{"2024-01-01": 4, "2024-01-10": 1, "2024-01-11": 9}
	cells := m.MapDays(counts, day("2024-01-10"))
	if len(cells) != 14 {
		t.Fatalf("expected 14 cells, got %d", len(cells))
	}
	if cells[0].Date != "2024-01-01" || cells[0].Color != "#40C463" {
		t.Fatalf("expected first column to start on Monday 2024-01-01, got %+v", cells[0])
	}
	if cells[7].Date != "2024-01-08" {
		t.Fatalf("expected second column to start on 2024-01-08, got %s", cells[7].Date)
	}
	if cells[9].Date != "2024-01-10" || cells[9].Color != "#9BE9A8" {
		t.Fatalf("expected reference day at row 2 of last column, got %+v", cells[9])
	}
	for _, c := range cells[10:] {
		if !c.Future || c.Color != ZeroColor || c.Count != 0 {
			t.Fatalf("expected future cells to use zero color and count, got %+v", c)
		}
	}
}

func TestWindow(t *testing.T) {
	m, err := NewMapper(21, DefaultScale())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	from, to := m.Window(day("2024-01-10"))
	if from.Format("2006-01-02") != "2023-12-21" || to.Format("2006-01-02") != "2024-01-10" {
		t.Fatalf("unexpected window %s..%s", from, to)
	}
}

func TestMapperConcurrentUse(t *testing.T) {
	m, err := NewMapper(84, DefaultScale())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts := map[string]int{"2024-04-01": 3}
	want := m.Map(counts, day("2024-04-20"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if diff := cmp.Diff(want, m.Map(counts, day("2024-04-20"))); diff != "" {
				t.Errorf("concurrent map differed:\n%s", diff)
			}
		}()
	}
	wg.Wait()
}
