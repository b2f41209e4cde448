package rcc

import "fmt"

// TargetKind discriminates the four kinds of acquirable resource.
type TargetKind uint8

const (
	// KindClock targets an oscillator or derived clock.
	KindClock TargetKind = 0

	// KindBus targets a peripheral bus.
	KindBus TargetKind = 1

	// KindPeripheral targets an individually gated peripheral.
	KindPeripheral TargetKind = 2

	// KindRaw targets arbitrary register bits, bypassing usage tracking.
	KindRaw TargetKind = 3
)

// String returns the kind name.
func (k TargetKind) String() string {
	switch k {
	case KindClock:
		return "CLOCK"
	case KindBus:
		return "BUS"
	case KindPeripheral:
		return "PERIPHERAL"
	case KindRaw:
		return "RAW"
	default:
		return "UNKNOWN"
	}
}

// Target names a single acquirable resource. Construct values with
// ClockTarget, BusTarget, PeripheralTarget or RawTarget; the zero value is
// the MSI clock.
type Target struct {
	kind   TargetKind
	clock  ClockID
	bus    BusID
	periph PeripheralID
	addr   uint32
	mask   uint32
}

// ClockTarget targets a clock.
func ClockTarget(id ClockID) Target {
	return Target{kind: KindClock, clock: id}
}

// BusTarget targets a bus.
func BusTarget(id BusID) Target {
	return Target{kind: KindBus, bus: id}
}

// PeripheralTarget targets a gated peripheral.
func PeripheralTarget(id PeripheralID) Target {
	return Target{kind: KindPeripheral, periph: id}
}

// RawTarget targets the bits in mask at the absolute register address addr.
// Raw targets are written through directly and never enter usage counting.
func RawTarget(addr, mask uint32) Target {
	return Target{kind: KindRaw, addr: addr, mask: mask}
}

// Kind returns the target's discriminator.
func (t Target) Kind() TargetKind {
	return t.kind
}

// Clock returns the clock id; valid only for KindClock targets.
func (t Target) Clock() ClockID {
	return t.clock
}

// Bus returns the bus id; valid only for KindBus targets.
func (t Target) Bus() BusID {
	return t.bus
}

// Peripheral returns the peripheral id; valid only for KindPeripheral
// targets.
func (t Target) Peripheral() PeripheralID {
	return t.periph
}

// Raw returns the register address and bit mask; valid only for KindRaw
// targets.
func (t Target) Raw() (addr, mask uint32) {
	return t.addr, t.mask
}

// String returns a display name such as "CLOCK:PLL" or "RAW:0x40021048/0x1000".
func (t Target) String() string {
	switch t.kind {
	case KindClock:
		return "CLOCK:" + t.clock.String()
	case KindBus:
		return "BUS:" + t.bus.String()
	case KindPeripheral:
		return "PERIPHERAL:" + t.periph.String()
	case KindRaw:
		return fmt.Sprintf("RAW:%#08x/%#08x", t.addr, t.mask)
	default:
		return "UNKNOWN"
	}
}
