package model

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Labels maps class names to output indices and back.
type Labels struct {
	byName  map[string]int
	byIndex []string
}

// NewLabels validates that the indices form the contiguous range 0..n-1.
func NewLabels(mapping map[string]int) (*Labels, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("label mapping is empty")
	}

	byIndex := make([]string, len(mapping))
	byName := make(map[string]int, len(mapping))
	filled := make([]bool, len(mapping))
	for name, idx := range mapping {
		if idx < 0 || idx >= len(mapping) {
			return nil, fmt.Errorf("label %q has index %d outside 0..%d", name, idx, len(mapping)-1)
		}
		if filled[idx] {
			return nil, fmt.Errorf("labels %q and %q share index %d", byIndex[idx], name, idx)
		}
		filled[idx] = true
		byIndex[idx] = name
		byName[name] = idx
	}

	return &Labels{byName: byName, byIndex: byIndex}, nil
}

func LoadLabels(path string) (*Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	var mapping map[string]int
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse labels: %w", err)
	}

	return NewLabels(mapping)
}

func (l *Labels) Name(idx int) (string, bool) {
	if idx < 0 || idx >= len(l.byIndex) {
		return "", false
	}
	return l.byIndex[idx], true
}

func (l *Labels) Index(name string) (int, bool) {
	idx, ok := l.byName[name]
	return idx, ok
}

func (l *Labels) Len() int {
	return len(l.byIndex)
}

// Names returns the label names sorted alphabetically.
func (l *Labels) Names() []string {
	names := make([]string, len(l.byIndex))
	copy(names, l.byIndex)
	sort.Strings(names)
	return names
}
