// Package config defines the deployment configuration for the compute
// core: grid geometry, numeric domain, accumulator width, operand
// topology, and the staging buffer in front of the operand buses.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/macgrid/mac"
)

// Domain selects the numeric domain the lanes compute in.
type Domain string

const (
	// DomainInt8 runs signed 8-bit operands into a wide saturating
	// integer accumulator.
	DomainInt8 Domain = "int8"

	// DomainFP8 runs FP8-E4M3 operands with accumulation saturating
	// inside the format's own range.
	DomainFP8 Domain = "fp8"
)

// Operand topologies accepted by Config.Mapping.
const (
	MappingRowColumn   = "rowcol"
	MappingElementwise = "elementwise"
)

// FP8AccWidth is the accumulator width of the fp8 domain, fixed by the
// format itself.
const FP8AccWidth = 8

// Config describes one deployment of the compute core.
type Config struct {
	// Rows is the grid's row count. Default: 3.
	Rows int `json:"rows"`

	// Cols is the grid's column count. Default: 3.
	Cols int `json:"cols"`

	// Domain selects the arithmetic domain, "int8" or "fp8".
	// Default: "int8".
	Domain Domain `json:"domain"`

	// AccWidth is the accumulator width in bits. The int8 domain
	// accepts 2 through 63; the fp8 domain fixes the width at the
	// format's own 8 bits. Default: 32.
	AccWidth uint `json:"acc_width"`

	// Mapping selects the operand topology, "rowcol" or
	// "elementwise". Default: "rowcol".
	Mapping string `json:"mapping"`

	// Staging sizes the staging buffer operand reads go through.
	Staging StagingConfig `json:"staging"`
}

// StagingConfig sizes the operand staging buffer.
type StagingConfig struct {
	// Size is the total buffer capacity in bytes. Default: 1024.
	Size int `json:"size"`

	// Associativity is the number of ways per set. Default: 4.
	Associativity int `json:"associativity"`

	// LineSize is the fill granularity in bytes. Default: 16.
	LineSize int `json:"line_size"`
}

// DefaultStagingConfig returns the staging geometry shared by the
// deployment presets.
func DefaultStagingConfig() StagingConfig {
	return StagingConfig{
		Size:          1024,
		Associativity: 4,
		LineSize:      16,
	}
}

// DefaultLaneConfig returns the single-MAC deployment: one integer
// lane with a 17-bit accumulator, one bit of growth headroom over a
// 16-bit product.
func DefaultLaneConfig() *Config {
	return &Config{
		Rows:     1,
		Cols:     1,
		Domain:   DomainInt8,
		AccWidth: 17,
		Mapping:  MappingRowColumn,
		Staging:  DefaultStagingConfig(),
	}
}

// DefaultIntArrayConfig returns the integer array deployment: a 3x3
// grid accumulating into 32 bits.
func DefaultIntArrayConfig() *Config {
	return &Config{
		Rows:     3,
		Cols:     3,
		Domain:   DomainInt8,
		AccWidth: 32,
		Mapping:  MappingRowColumn,
		Staging:  DefaultStagingConfig(),
	}
}

// DefaultFP8ArrayConfig returns the floating-point array deployment: a
// 2x2 grid accumulating within the 8-bit format.
func DefaultFP8ArrayConfig() *Config {
	return &Config{
		Rows:     2,
		Cols:     2,
		Domain:   DomainFP8,
		AccWidth: FP8AccWidth,
		Mapping:  MappingRowColumn,
		Staging:  DefaultStagingConfig(),
	}
}

// LoadConfig loads a Config from a JSON file. Fields the file does not
// set keep their DefaultIntArrayConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read core config file: %w", err)
	}

	config := DefaultIntArrayConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse core config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize core config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write core config file: %w", err)
	}

	return nil
}

// Validate checks grid geometry, domain, accumulator width, mapping,
// and staging geometry.
func (c *Config) Validate() error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("rows and cols must be >= 1")
	}

	switch c.Domain {
	case DomainInt8:
		if c.AccWidth < mac.MinWidth || c.AccWidth > mac.MaxWidth {
			return fmt.Errorf("acc_width must be in [%d, %d]",
				mac.MinWidth, mac.MaxWidth)
		}
	case DomainFP8:
		if c.AccWidth != FP8AccWidth {
			return fmt.Errorf("acc_width must be %d for the fp8 domain",
				FP8AccWidth)
		}
	default:
		return fmt.Errorf("domain must be %q or %q", DomainInt8, DomainFP8)
	}

	switch c.Mapping {
	case MappingRowColumn:
	case MappingElementwise:
		if c.Rows != 1 && c.Cols != 1 {
			return fmt.Errorf("elementwise mapping requires a 1-D grid")
		}
	default:
		return fmt.Errorf("mapping must be %q or %q",
			MappingRowColumn, MappingElementwise)
	}

	return c.Staging.Validate()
}

// Validate checks that the staging geometry divides into whole sets.
func (c *StagingConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("staging size must be > 0")
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("staging associativity must be > 0")
	}
	if c.LineSize <= 0 {
		return fmt.Errorf("staging line_size must be > 0")
	}
	if c.Size%(c.Associativity*c.LineSize) != 0 {
		return fmt.Errorf(
			"staging size must be a multiple of associativity*line_size")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	return &Config{
		Rows:     c.Rows,
		Cols:     c.Cols,
		Domain:   c.Domain,
		AccWidth: c.AccWidth,
		Mapping:  c.Mapping,
		Staging:  c.Staging,
	}
}
