package search

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/search.yaml
var searchYAML embed.FS

// QueryConfig controls what the search prompt asks for.
type QueryConfig struct {
	Platforms     []string `yaml:"platforms"`
	PlatformSites []string `yaml:"platform_sites"`
	Query         string   `yaml:"query"`
	FocusAreas    []string `yaml:"focus_areas"`
}

type registryFile struct {
	Search QueryConfig `yaml:"search"`
}

// LoadQueryConfig reads the embedded search.yaml. Environment variables inside
// the file (e.g. ${EXTRA_QUERY_TERMS}) are expanded before parsing.
func LoadQueryConfig() (*QueryConfig, error) {
	data, err := searchYAML.ReadFile("config/search.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded search config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var file registryFile
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return nil, fmt.Errorf("failed to parse search config: %w", err)
	}

	if len(file.Search.Platforms) == 0 {
		return nil, fmt.Errorf("search config lists no platforms")
	}

	return &file.Search, nil
}
