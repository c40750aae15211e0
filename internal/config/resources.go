package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/preston-bernstein/contrib-widget-service/internal/grid"
)

// Logical resource keys.
const (
	KeyGitHubToken = "github_token"
	KeyWidgetTitle = "widget_title"
)

// Resources is the statically declared key/value mapping injected at startup.
type Resources struct {
	Strings    map[string]string `yaml:"strings"`
	ColorScale grid.ColorScale   `yaml:"color_scale"`
}

// LoadResources reads a YAML resources file. A missing file yields empty resources.
func LoadResources(path string) (Resources, error) {
	if path == "" {
		return Resources{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Resources{}, nil
		}
		return Resources{}, fmt.Errorf("read resources %s: %w", path, err)
	}
	var res Resources
	if err := yaml.Unmarshal(data, &res); err != nil {
		return Resources{}, fmt.Errorf("parse resources %s: %w", path, err)
	}
	return res, nil
}

// Get returns the value declared for key.
func (r Resources) Get(key string) (string, bool) {
	v, ok := r.Strings[key]
	return v, ok
}

// With returns a copy of r with key set to value.
func (r Resources) With(key, value string) Resources {
	out := Resources{
		Strings:    make(map[string]string, len(r.Strings)+1),
		ColorScale: r.ColorScale,
	}
	for k, v := range r.Strings {
		out.Strings[k] = v
	}
	out.Strings[key] = value
	return out
}
