// Package board provides hardware profiles for the supported sensor node
// boards: register base addresses and the oscillator population facts the
// clock layer cannot discover at runtime.
package board

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
)

//go:embed boards/*.yaml
var boardFS embed.FS

// Default is the profile used when none is named.
const Default = "weathernode-v1"

// Profile errors.
var (
	ErrUnknownBoard   = errors.New("unknown board")
	ErrInvalidProfile = errors.New("invalid board profile")
)

// Profile describes one board revision.
type Profile struct {
	// Name identifies the profile, e.g. "weathernode-v1".
	Name string `yaml:"name"`

	// MCU names the part the profile targets.
	MCU string `yaml:"mcu"`

	// RCCBase and PWRBase are the peripheral base addresses.
	RCCBase uint32 `yaml:"rcc_base"`
	PWRBase uint32 `yaml:"pwr_base"`

	// HSEHz is the external high-speed oscillator frequency; zero means
	// not fitted.
	HSEHz uint32 `yaml:"hse_hz"`

	// HSEBypass is set when HSE is fed by an active source such as a
	// TCXO rather than a crystal.
	HSEBypass bool `yaml:"hse_bypass"`

	// LSEFitted reports whether the 32.768 kHz crystal is present.
	LSEFitted bool `yaml:"lse_fitted"`

	// LSEHz is the crystal frequency when fitted.
	LSEHz uint32 `yaml:"lse_hz"`

	// LSIHz is the nominal low-speed internal oscillator frequency.
	LSIHz uint32 `yaml:"lsi_hz"`

	// MSIDefaultRange is the MSI range code to boot with.
	MSIDefaultRange uint32 `yaml:"msi_default_range"`
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*Profile)
)

// Load returns the embedded profile with the given name.
func Load(name string) (*Profile, error) {
	cacheMu.RLock()
	if p, ok := cache[name]; ok {
		cacheMu.RUnlock()
		return p, nil
	}
	cacheMu.RUnlock()

	data, err := boardFS.ReadFile("boards/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBoard, name)
	}

	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}

	cacheMu.Lock()
	cache[name] = p
	cacheMu.Unlock()

	return p, nil
}

// LoadFile reads a profile from a YAML file outside the embedded set, for
// boards still in board bring-up.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading board profile: %w", err)
	}

	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", path, err)
	}
	return p, nil
}

func parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Available returns the names of all embedded profiles, sorted.
func Available() ([]string, error) {
	entries, err := boardFS.ReadDir("boards")
	if err != nil {
		return nil, fmt.Errorf("reading embedded profiles: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			names = append(names, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Validate checks the profile for internal consistency.
func (p *Profile) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidProfile)
	case p.MCU == "":
		return fmt.Errorf("%w: missing mcu", ErrInvalidProfile)
	case p.RCCBase == 0 || p.PWRBase == 0:
		return fmt.Errorf("%w: missing register base addresses", ErrInvalidProfile)
	case p.HSEBypass && p.HSEHz == 0:
		return fmt.Errorf("%w: hse_bypass set without hse_hz", ErrInvalidProfile)
	case p.LSEFitted && p.LSEHz == 0:
		return fmt.Errorf("%w: lse_fitted set without lse_hz", ErrInvalidProfile)
	case p.LSIHz == 0:
		return fmt.Errorf("%w: missing lsi_hz", ErrInvalidProfile)
	case p.MSIDefaultRange > 0xB:
		return fmt.Errorf("%w: msi_default_range %#x out of range", ErrInvalidProfile, p.MSIDefaultRange)
	}
	return nil
}

// RCCConfig maps the profile onto the clock layer's configuration.
func (p *Profile) RCCConfig() rcc.Config {
	return rcc.Config{
		RCCBase:   p.RCCBase,
		PWRBase:   p.PWRBase,
		HSEHz:     p.HSEHz,
		HSEBypass: p.HSEBypass,
		LSEFitted: p.LSEFitted,
		LSEHz:     p.LSEHz,
		LSIHz:     p.LSIHz,
	}
}
