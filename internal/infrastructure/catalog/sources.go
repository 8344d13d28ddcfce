package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes one scrapeable catalog: where to search for an
// article and which selectors carry the product fields.
type SourceConfig struct {
	Name          string `yaml:"name"`
	SearchURL     string `yaml:"searchUrl"` // {article} is replaced with the escaped article
	ItemSelector  string `yaml:"itemSelector"`
	NameSelector  string `yaml:"nameSelector"`
	PriceSelector string `yaml:"priceSelector"`
	StockSelector string `yaml:"stockSelector"`
}

type sourcesFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

// LoadSources reads the catalog source definitions from a YAML file.
func LoadSources(path string) ([]SourceConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog sources: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog sources: %w", err)
	}

	for i, src := range file.Sources {
		if src.SearchURL == "" || src.ItemSelector == "" || src.PriceSelector == "" {
			return nil, fmt.Errorf("catalog source %d (%s): searchUrl, itemSelector and priceSelector are required", i, src.Name)
		}
	}
	return file.Sources, nil
}
