package simulator

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigFastest

// LoadWeights reads a name to weight table from a JSON file. An empty
// path returns the built-in defaults.
func LoadWeights(path string) (map[string]int, error) {
	if path == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weight table %s: %w", path, err)
	}

	var weights map[string]int
	if err = json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to parse weight table %s: %w", path, err)
	}

	return weights, nil
}
