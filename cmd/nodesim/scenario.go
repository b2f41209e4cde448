package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
)

// Scenario describes a scripted sequence of clock states the simulated
// node walks through. The phase list is repeated Cycles times.
type Scenario struct {
	Name   string  `toml:"name"`
	Cycles int     `toml:"cycles"`
	Budget uint32  `toml:"poll_budget"`
	Fault  *Fault  `toml:"fault"`
	Phases []Phase `toml:"phase"`
}

// Phase is one clock state of the duty cycle: the system clock root to
// run from, the RTC directive and an optional dwell time.
type Phase struct {
	Name     string   `toml:"name"`
	Sysclk   string   `toml:"sysclk"`    // msi, hse or pll; empty keeps the current root
	MSIRange *uint32  `toml:"msi_range"` // range code when sysclk = "msi"; nil uses the board default
	PLL      *PLLSpec `toml:"pll"`       // required when sysclk = "pll"
	AHBDiv   uint32   `toml:"ahb_div"`   // prescalers; zero leaves the divider alone
	APB1Div  uint32   `toml:"apb1_div"`
	APB2Div  uint32   `toml:"apb2_div"`
	RTC      string   `toml:"rtc"`       // lse, lsi, hse, off; empty leaves the RTC alone
	LSEDrive *uint32  `toml:"lse_drive"` // crystal drive strength 0..3
	HoldMS   int      `toml:"hold_ms"`   // dwell time in the phase
}

// PLLSpec carries the PLL dividers for a phase that runs from the PLL.
type PLLSpec struct {
	Source string `toml:"source"` // msi or hse
	M      uint32 `toml:"m"`
	N      uint32 `toml:"n"`
	R      uint32 `toml:"r"`
}

// Fault injects a simulated hardware fault partway through the run, to
// demonstrate the timeout paths in the trace.
type Fault struct {
	Clock       string `toml:"clock"`        // oscillator whose ready flag never sets
	StuckSwitch bool   `toml:"stuck_switch"` // SWS never follows SW
	AtCycle     int    `toml:"at_cycle"`     // 1-based cycle to arm the fault in; 0 arms immediately
}

// LoadScenario reads and validates a scenario from a TOML file.
func LoadScenario(path string) (*Scenario, error) {
	var s Scenario
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scenario against the closed domains of the clock
// layer and fills in defaults.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		s.Name = "scenario"
	}
	if s.Cycles == 0 {
		s.Cycles = 1
	}
	if s.Cycles < 0 {
		return fmt.Errorf("scenario %s: cycles must be positive", s.Name)
	}
	if s.Budget == 0 {
		s.Budget = 64
	}
	if len(s.Phases) == 0 {
		return fmt.Errorf("scenario %s: no phases", s.Name)
	}
	if s.Phases[0].Sysclk == "" {
		return fmt.Errorf("scenario %s: first phase must name a sysclk source", s.Name)
	}

	for i := range s.Phases {
		p := &s.Phases[i]
		if p.Name == "" {
			return fmt.Errorf("scenario %s: phase %d has no name", s.Name, i)
		}
		switch strings.ToLower(p.Sysclk) {
		case "", "msi", "hse", "pll":
		default:
			return fmt.Errorf("phase %s: unknown sysclk source %q", p.Name, p.Sysclk)
		}
		if p.MSIRange != nil && *p.MSIRange > 0xB {
			return fmt.Errorf("phase %s: msi_range %#x out of range", p.Name, *p.MSIRange)
		}
		if strings.EqualFold(p.Sysclk, "pll") {
			if p.PLL == nil {
				return fmt.Errorf("phase %s: sysclk = pll requires a [phase.pll] table", p.Name)
			}
			switch strings.ToLower(p.PLL.Source) {
			case "msi", "hse":
			default:
				return fmt.Errorf("phase %s: unknown pll source %q", p.Name, p.PLL.Source)
			}
		}
		switch strings.ToLower(p.RTC) {
		case "", "off", "lse", "lsi", "hse":
		default:
			return fmt.Errorf("phase %s: unknown rtc directive %q", p.Name, p.RTC)
		}
		if p.LSEDrive != nil && *p.LSEDrive > 3 {
			return fmt.Errorf("phase %s: lse_drive %d out of range", p.Name, *p.LSEDrive)
		}
		if p.HoldMS < 0 {
			return fmt.Errorf("phase %s: hold_ms must not be negative", p.Name)
		}
	}

	if s.Fault != nil {
		switch strings.ToLower(s.Fault.Clock) {
		case "", "msi", "hse", "lsi", "lse", "pll":
		default:
			return fmt.Errorf("fault: unknown clock %q", s.Fault.Clock)
		}
		if s.Fault.Clock == "" && !s.Fault.StuckSwitch {
			return fmt.Errorf("fault: neither clock nor stuck_switch set")
		}
		if s.Fault.AtCycle < 0 || s.Fault.AtCycle > s.Cycles {
			return fmt.Errorf("fault: at_cycle %d outside the run", s.Fault.AtCycle)
		}
	}

	return nil
}

// clockFromName maps a scenario clock name to its ClockID.
func clockFromName(name string) (rcc.ClockID, bool) {
	switch strings.ToLower(name) {
	case "msi":
		return rcc.ClockMSI, true
	case "hse":
		return rcc.ClockHSE, true
	case "lsi":
		return rcc.ClockLSI, true
	case "lse":
		return rcc.ClockLSE, true
	case "pll":
		return rcc.ClockPLL, true
	default:
		return 0, false
	}
}

// u32 returns a pointer to v, for the optional scenario fields.
func u32(v uint32) *uint32 {
	return &v
}

// DefaultScenario is the duty cycle used when no scenario file is given:
// boot on MSI with the RTC on LSE, measure on the PLL at 80 MHz, transmit
// on the TCXO, then drop back to MSI at 1 MHz to sleep.
func DefaultScenario() *Scenario {
	s := &Scenario{
		Name:   "duty-cycle",
		Cycles: 3,
		Phases: []Phase{
			{
				Name:     "boot",
				Sysclk:   "msi",
				MSIRange: u32(0x6), // 4 MHz
				RTC:      "lse",
				LSEDrive: u32(1),
			},
			{
				Name:   "measure",
				Sysclk: "pll",
				PLL:    &PLLSpec{Source: "msi", M: 1, N: 40, R: 2}, // 80 MHz
				HoldMS: 20,
			},
			{
				Name:   "transmit",
				Sysclk: "hse",
				HoldMS: 10,
			},
			{
				Name:     "sleep",
				Sysclk:   "msi",
				MSIRange: u32(0x4), // 1 MHz
				HoldMS:   50,
			},
		},
	}
	// Validate fills the remaining defaults; the literal above is sound.
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}
