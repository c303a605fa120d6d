// Package scenario loads scripted sequences of list operations from YAML and replays them against
// the range engine, recording every emitted range and checking expectations along the way.
package scenario

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
)

// SupportedVersions is the constraint a scenario's version must satisfy.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// Errors returned while loading or validating scenarios.
var (
	ErrUnsupportedVersion = errors.New("unsupported scenario version")
	ErrUnknownStep        = errors.New("unknown scenario step")
	ErrInvalidScenario    = errors.New("invalid scenario")
)

// Step operations.
const (
	OpScroll   = "scroll"
	OpSize     = "size"
	OpSizes    = "sizes"
	OpInsert   = "insert"
	OpRemove   = "remove"
	OpReplace  = "replace"
	OpKeeps    = "keeps"
	OpHeader   = "header"
	OpFooter   = "footer"
	OpOffsetOf = "offset_of"
	OpReset    = "reset"
)

//nolint:gochecknoglobals // Lookup table.
var knownOps = []string{
	OpScroll, OpSize, OpSizes, OpInsert, OpRemove, OpReplace,
	OpKeeps, OpHeader, OpFooter, OpOffsetOf, OpReset,
}

// Scenario is one scripted run.
type Scenario struct {
	Name        string     `yaml:"name"`
	Version     string     `yaml:"version"`
	Description string     `yaml:"description,omitempty"`
	Config      ListConfig `yaml:"config"`
	Items       Items      `yaml:"items"`
	Steps       []Step     `yaml:"steps"`

	// Source is the file the scenario was read from, if any.
	Source string `yaml:"-"`
}

// ListConfig is the engine configuration a scenario starts with.
type ListConfig struct {
	Keeps        int     `yaml:"keeps"`
	Buffer       *int    `yaml:"buffer,omitempty"`
	EstimateSize float64 `yaml:"estimate_size"`
	Header       float64 `yaml:"header,omitempty"`
	Footer       float64 `yaml:"footer,omitempty"`
}

// Items describes the initial keys: either Count generated keys named Prefix-N, or explicit Keys.
type Items struct {
	Count  int      `yaml:"count,omitempty"`
	Prefix string   `yaml:"prefix,omitempty"`
	Keys   []string `yaml:"keys,omitempty"`
}

// KeySize is one measurement.
type KeySize struct {
	Key  string  `yaml:"key"`
	Size float64 `yaml:"size"`
}

// Step is one operation. Which fields are read depends on Op.
type Step struct {
	Op     string    `yaml:"op"`
	Offset float64   `yaml:"offset,omitempty"`
	Key    string    `yaml:"key,omitempty"`
	Size   float64   `yaml:"size,omitempty"`
	Sizes  []KeySize `yaml:"sizes,omitempty"`
	From   int       `yaml:"from,omitempty"`
	To     int       `yaml:"to,omitempty"`
	Index  int       `yaml:"index,omitempty"`
	Keys   []string  `yaml:"keys,omitempty"`
	Value  float64   `yaml:"value,omitempty"`
	Expect *Expect   `yaml:"expect,omitempty"`
}

// Expect lists the values checked after a step. Unset fields are not checked.
type Expect struct {
	Start     *int     `yaml:"start,omitempty"`
	End       *int     `yaml:"end,omitempty"`
	PadFront  *float64 `yaml:"pad_front,omitempty"`
	PadBehind *float64 `yaml:"pad_behind,omitempty"`
	Offset    *float64 `yaml:"offset,omitempty"`
	Value     *float64 `yaml:"value,omitempty"`
	Front     *bool    `yaml:"front,omitempty"`
	Behind    *bool    `yaml:"behind,omitempty"`
}

// Validate checks the version against SupportedVersions and the shape of every step.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidScenario)
	}
	if err := checkVersion(s.Version); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if s.Config.Keeps < 1 {
		return fmt.Errorf("%w: scenario %q: config.keeps must be >= 1", ErrInvalidScenario, s.Name)
	}
	if s.Config.EstimateSize < 0 {
		return fmt.Errorf("%w: scenario %q: config.estimate_size must be >= 0", ErrInvalidScenario, s.Name)
	}
	if s.Items.Count < 0 {
		return fmt.Errorf("%w: scenario %q: items.count must be >= 0", ErrInvalidScenario, s.Name)
	}
	if s.Items.Count > 0 && len(s.Items.Keys) > 0 {
		return fmt.Errorf("%w: scenario %q: items.count and items.keys are exclusive", ErrInvalidScenario, s.Name)
	}

	for i, step := range s.Steps {
		if !slices.Contains(knownOps, step.Op) {
			return fmt.Errorf("%w: scenario %q step %d: %q", ErrUnknownStep, s.Name, i+1, step.Op)
		}
		if step.Op == OpSizes && len(step.Sizes) == 0 && step.To < step.From {
			return fmt.Errorf("%w: scenario %q step %d: sizes needs entries or from <= to",
				ErrInvalidScenario, s.Name, i+1)
		}
	}
	return nil
}

func checkVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%w: version is required", ErrUnsupportedVersion)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, v, SupportedVersions)
	}
	return nil
}

// InitialKeys returns the keys the scenario starts with.
func (s *Scenario) InitialKeys() []string {
	if len(s.Items.Keys) > 0 {
		return slices.Clone(s.Items.Keys)
	}
	prefix := s.Items.Prefix
	if prefix == "" {
		prefix = "item"
	}
	keys := make([]string, s.Items.Count)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return keys
}
