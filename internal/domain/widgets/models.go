package widgets

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/preston-bernstein/contrib-widget-service/internal/grid"
)

// Size names a home-screen widget footprint (columns x rows).
type Size string

const (
	Size1x1 Size = "1x1"
	Size2x1 Size = "2x1"
	Size3x1 Size = "3x1"
	Size4x1 Size = "4x1"
	Size4x2 Size = "4x2"
	Size4x3 Size = "4x3"
)

// Action is a tap target wired into a widget.
type Action string

const (
	ActionRefresh    Action = "REFRESH"
	ActionOpenApp    Action = "OPEN_APP"
	ActionChangeUser Action = "CHANGE_USER"
)

// ParseAction validates an action name, case-insensitively.
func ParseAction(raw string) (Action, error) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(raw))); a {
	case ActionRefresh, ActionOpenApp, ActionChangeUser:
		return a, nil
	}
	return "", fmt.Errorf("unknown widget action %q", raw)
}

// MaxDisplayDays is the widest window any size shows.
func MaxDisplayDays() int {
	widest := 0
	for _, cfg := range configs {
		if cfg.DisplayDays > widest {
			widest = cfg.DisplayDays
		}
	}
	return widest
}

// Config describes what a widget size shows.
type Config struct {
	DisplayDays int  `json:"displayDays"`
	ShowToday   bool `json:"showToday"`
	ShowTotal   bool `json:"showTotal"`
	ShowGraph   bool `json:"showGraph"`
	CellSize    int  `json:"cellSize"`
}

var configs = map[Size]Config{
	Size1x1: {DisplayDays: 7, ShowToday: true, CellSize: 8},
	Size2x1: {DisplayDays: 14, ShowToday: true, ShowTotal: true, CellSize: 10},
	Size3x1: {DisplayDays: 21, ShowToday: true, ShowTotal: true, ShowGraph: true, CellSize: 12},
	Size4x1: {DisplayDays: 28, ShowToday: true, ShowTotal: true, ShowGraph: true, CellSize: 14},
	Size4x2: {DisplayDays: 84, ShowToday: true, ShowTotal: true, ShowGraph: true, CellSize: 16},
	Size4x3: {DisplayDays: 147, ShowToday: true, ShowTotal: true, ShowGraph: true, CellSize: 18},
}

// ConfigFor returns the configuration of a known size.
func ConfigFor(size Size) (Config, bool) {
	cfg, ok := configs[size]
	return cfg, ok
}

// ParseSize validates a size string.
func ParseSize(raw string) (Size, error) {
	size := Size(raw)
	if _, ok := configs[size]; !ok {
		return "", fmt.Errorf("unknown widget size %q", raw)
	}
	return size, nil
}

// AllSizes lists every supported size, smallest first.
func AllSizes() []Size {
	sizes := make([]Size, 0, len(configs))
	for s := range configs {
		sizes = append(sizes, s)
	}
	sort.Slice(sizes, func(i, j int) bool {
		return configs[sizes[i]].DisplayDays < configs[sizes[j]].DisplayDays
	})
	return sizes
}

// Data is the payload a widget host paints.
type Data struct {
	Login       string      `json:"login"`
	Size        Size        `json:"size"`
	Date        string      `json:"date"`
	Today       int         `json:"todayContributions"`
	Total       int         `json:"totalContributions"`
	Cells       []grid.Cell `json:"cells"`
	Config      Config      `json:"config"`
	LastUpdated time.Time   `json:"lastUpdated"`
	Stale       bool        `json:"stale,omitempty"`
}

// ActionRequest is a widget tap. NewLogin is only read by CHANGE_USER.
type ActionRequest struct {
	Action   Action `json:"action"`
	Login    string `json:"login"`
	NewLogin string `json:"newLogin,omitempty"`
}

// ActionResult reports the outcome of a widget tap.
type ActionResult struct {
	Action   Action `json:"action"`
	Login    string `json:"login"`
	DeepLink string `json:"deepLink,omitempty"`
	Synced   bool   `json:"synced,omitempty"`
}
