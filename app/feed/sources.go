package feed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yml
var defaultSources []byte

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the source table from a YAML file, falling back to the
// embedded default list when path is empty.
func LoadSources(path string) ([]Source, error) {
	data := defaultSources
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
		}
	}

	var parsed sourcesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	sources := make([]Source, 0, len(parsed.Sources))
	for i, s := range parsed.Sources {
		if s.Name == "" || s.URL == "" {
			return nil, fmt.Errorf("source at index %d is missing name or url", i)
		}
		if s.Category == "" {
			s.Category = "misc"
		}
		if s.Tier == 0 {
			s.Tier = 2
		}
		sources = append(sources, s)
	}

	return sources, nil
}
