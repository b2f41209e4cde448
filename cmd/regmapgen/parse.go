package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RawRegMap represents a register map loaded from YAML.
type RawRegMap struct {
	Chip        string          `yaml:"chip"`
	Source      string          `yaml:"source"`
	Peripherals []RawPeripheral `yaml:"peripherals"`
}

// RawPeripheral represents one peripheral instance and its registers.
type RawPeripheral struct {
	Name      string        `yaml:"name"`
	Base      uint32        `yaml:"base"`
	Registers []RawRegister `yaml:"registers"`
}

// RawRegister represents a single 32-bit register.
type RawRegister struct {
	Name        string     `yaml:"name"`
	Offset      uint32     `yaml:"offset"`
	Description string     `yaml:"description"`
	Fields      []RawField `yaml:"fields"`
}

// RawField represents a bit field within a register. Single-bit fields
// become flag constants, wider fields become Pos/Msk constant pairs.
type RawField struct {
	Name   string          `yaml:"name"`
	Pos    uint8           `yaml:"pos"`
	Width  uint8           `yaml:"width"`
	Values []RawFieldValue `yaml:"values"`
}

// RawFieldValue represents a named encoding of a multi-bit field.
type RawFieldValue struct {
	Name  string `yaml:"name"`
	Value uint32 `yaml:"value"`
}

// ParseRegMap parses a register map from YAML bytes.
func ParseRegMap(data []byte) (*RawRegMap, error) {
	var rm RawRegMap
	if err := yaml.Unmarshal(data, &rm); err != nil {
		return nil, fmt.Errorf("parsing register map: %w", err)
	}

	if rm.Chip == "" {
		return nil, fmt.Errorf("register map missing chip")
	}
	if len(rm.Peripherals) == 0 {
		return nil, fmt.Errorf("register map has no peripherals")
	}

	for _, p := range rm.Peripherals {
		if p.Name == "" {
			return nil, fmt.Errorf("peripheral missing name")
		}
		if p.Base == 0 {
			return nil, fmt.Errorf("peripheral %s missing base address", p.Name)
		}
		for _, r := range p.Registers {
			if r.Name == "" {
				return nil, fmt.Errorf("peripheral %s has a register without a name", p.Name)
			}
			for _, f := range r.Fields {
				if f.Name == "" {
					return nil, fmt.Errorf("%s.%s has a field without a name", p.Name, r.Name)
				}
				if f.Width == 0 || f.Width > 32 {
					return nil, fmt.Errorf("%s.%s.%s has width %d", p.Name, r.Name, f.Name, f.Width)
				}
				if uint32(f.Pos)+uint32(f.Width) > 32 {
					return nil, fmt.Errorf("%s.%s.%s exceeds the register at pos %d width %d",
						p.Name, r.Name, f.Name, f.Pos, f.Width)
				}
				for _, v := range f.Values {
					if v.Value > fieldMask(f.Width) {
						return nil, fmt.Errorf("%s.%s.%s value %s = %#x does not fit in %d bits",
							p.Name, r.Name, f.Name, v.Name, v.Value, f.Width)
					}
				}
			}
		}
	}

	return &rm, nil
}

// LoadRegMap loads and parses a register map from a file.
func LoadRegMap(path string) (*RawRegMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseRegMap(data)
}

// fieldMask returns the right-aligned mask for a field of the given width.
func fieldMask(width uint8) uint32 {
	if width >= 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << width) - 1
}
