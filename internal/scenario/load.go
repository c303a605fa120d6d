package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads every YAML document in path as a scenario and validates it.
func Load(path string) ([]*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}

	scenarios, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, s := range scenarios {
		s.Source = path
	}
	return scenarios, nil
}

// Parse decodes one or more YAML documents. Unknown fields are rejected.
func Parse(data []byte) ([]*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var scenarios []*Scenario
	for {
		var s Scenario
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: decoding document %d: %w", ErrInvalidScenario, len(scenarios)+1, err)
		}
		if err = s.Validate(); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, &s)
	}

	if len(scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios found", ErrInvalidScenario)
	}
	return scenarios, nil
}

// LoadAll loads every path in order.
func LoadAll(paths []string) ([]*Scenario, error) {
	var all []*Scenario
	for _, path := range paths {
		scenarios, err := Load(path)
		if err != nil {
			return nil, err
		}
		all = append(all, scenarios...)
	}
	return all, nil
}
