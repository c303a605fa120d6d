package config

import (
	"fmt"
	"strconv"
)

// Keys lists the dotted keys understood by Get and Set, in display order.
func Keys() []string {
	return []string{
		"list.keeps",
		"list.estimate_size",
		"list.top_threshold",
		"list.bottom_threshold",
		"output.default_format",
		"output.precision",
		"logging.level",
		"logging.format",
		"logging.file",
	}
}

// Get returns the value stored under a dotted key such as "list.keeps".
func (c *Config) Get(key string) (any, error) {
	switch key {
	case "list.keeps":
		return c.List.Keeps, nil
	case "list.estimate_size":
		return c.List.EstimateSize, nil
	case "list.top_threshold":
		return c.List.TopThreshold, nil
	case "list.bottom_threshold":
		return c.List.BottomThreshold, nil
	case "output.default_format":
		return c.Output.DefaultFormat, nil
	case "output.precision":
		return c.Output.Precision, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "logging.file":
		return c.Logging.File, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set parses value for the dotted key and stores it. The result is validated, and the previous
// value is restored when validation fails.
func (c *Config) Set(key, value string) error {
	prev := *c

	if err := c.set(key, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		*c = prev
		return err
	}
	return nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "list.keeps":
		return setInt(&c.List.Keeps, key, value)
	case "list.estimate_size":
		return setFloat(&c.List.EstimateSize, key, value)
	case "list.top_threshold":
		return setFloat(&c.List.TopThreshold, key, value)
	case "list.bottom_threshold":
		return setFloat(&c.List.BottomThreshold, key, value)
	case "output.default_format":
		c.Output.DefaultFormat = value
	case "output.precision":
		return setInt(&c.Output.Precision, key, value)
	case "logging.level":
		c.Logging.Level = value
	case "logging.format":
		c.Logging.Format = value
	case "logging.file":
		c.Logging.File = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s expects an integer, got %q", ErrInvalidConfig, key, value)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: %s expects a number, got %q", ErrInvalidConfig, key, value)
	}
	*dst = f
	return nil
}
