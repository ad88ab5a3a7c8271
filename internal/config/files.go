package config

import (
	"fmt"
	"os"

	"github.com/brightside-news/brightside-server/internal/domain"
	"gopkg.in/yaml.v3"
)

type regionsFile struct {
	Default string          `yaml:"default"`
	Regions []domain.Region `yaml:"regions"`
}

type sourcesFile struct {
	Sources []domain.Source `yaml:"sources"`
}

// LoadRegions builds the region registry from the regions YAML file.
func LoadRegions(path string) (*domain.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}

	var file regionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse regions file %s: %w", path, err)
	}

	return domain.NewRegistry(file.Default, file.Regions)
}

// LoadSources reads the feed source definitions from the sources YAML file.
func LoadSources(path string) ([]domain.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}

	for i, src := range file.Sources {
		if src.RegionID == "" || src.FeedURL == "" || src.Name == "" {
			return nil, fmt.Errorf("source %d: region, feed_url and name are required", i)
		}
		if file.Sources[i].Weight == 0 {
			file.Sources[i].Weight = 1
		}
	}
	return file.Sources, nil
}
