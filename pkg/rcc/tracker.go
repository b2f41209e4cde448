package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
)

// Tracker keeps per-resource usage counts for clocks, buses and gated
// peripherals, and decides whether acquire and release transitions are
// permitted. It performs no hardware toggling itself; register state is
// read only to discover the current dependency edges. Raw targets are the
// exception: they write through immediately and never enter the tables.
//
// A resource's count combines its direct hold (at most one) with one pin
// per active dependent, so counts above one always mean live dependents.
//
// Tracker is not safe for concurrent use.
type Tracker struct {
	regs *RegisterFile

	clocks  [ClockCount]uint32
	buses   [BusCount]uint32
	periphs [PeriphCount]uint32
}

// NewTracker returns a tracker with all counts at zero.
func NewTracker(regs *RegisterFile) *Tracker {
	return &Tracker{regs: regs}
}

// Acquire takes a hold on the target resource.
//
// For tracked kinds it fails with AlreadyAcquired if the resource is
// already held, and with DependentClockNotConfigured if the resource's
// current upstream dependency is not held. On success the upstream's count
// is incremented before the resource's own.
func (t *Tracker) Acquire(target Target) status.Code {
	switch target.Kind() {
	case KindClock:
		return t.acquireClock(target.Clock())
	case KindBus:
		return t.acquireBus(target.Bus())
	case KindPeripheral:
		return t.acquirePeripheral(target.Peripheral())
	case KindRaw:
		addr, mask := target.Raw()
		t.regs.Reg(addr).SetBits(mask)
		return status.OK
	default:
		return status.InvalidParam
	}
}

// Release drops the hold on the target resource.
//
// For tracked kinds it fails with AlreadyReleased if the count is zero and
// with DependenciesNotReleased if dependents still pin it (count above
// one). On success the current upstream dependency's count is decremented
// alongside.
func (t *Tracker) Release(target Target) status.Code {
	switch target.Kind() {
	case KindClock:
		return t.releaseClock(target.Clock())
	case KindBus:
		return t.releaseBus(target.Bus())
	case KindPeripheral:
		return t.releasePeripheral(target.Peripheral())
	case KindRaw:
		addr, mask := target.Raw()
		t.regs.Reg(addr).ClearBits(mask)
		return status.OK
	default:
		return status.InvalidParam
	}
}

// ClockUsage returns the usage count for a clock, or zero for an
// out-of-range id.
func (t *Tracker) ClockUsage(id ClockID) uint32 {
	if id >= ClockCount {
		return 0
	}
	return t.clocks[id]
}

// BusUsage returns the usage count for a bus, or zero for an out-of-range
// id.
func (t *Tracker) BusUsage(id BusID) uint32 {
	if id >= BusCount {
		return 0
	}
	return t.buses[id]
}

// PeripheralUsage returns the usage count for a peripheral, or zero for an
// out-of-range id.
func (t *Tracker) PeripheralUsage(id PeripheralID) uint32 {
	if id >= PeriphCount {
		return 0
	}
	return t.periphs[id]
}

// Usage returns the count for any tracked target; raw targets report zero.
func (t *Tracker) Usage(target Target) uint32 {
	switch target.Kind() {
	case KindClock:
		return t.ClockUsage(target.Clock())
	case KindBus:
		return t.BusUsage(target.Bus())
	case KindPeripheral:
		return t.PeripheralUsage(target.Peripheral())
	default:
		return 0
	}
}

// Reset zeroes all usage tables. Called once during boot before any
// resource is acquired.
func (t *Tracker) Reset() {
	t.clocks = [ClockCount]uint32{}
	t.buses = [BusCount]uint32{}
	t.periphs = [PeriphCount]uint32{}
}

func (t *Tracker) acquireClock(id ClockID) status.Code {
	if id >= ClockCount {
		return status.InvalidParam
	}
	if t.clocks[id] != 0 {
		return status.AlreadyAcquired
	}

	switch id {
	case ClockPLL:
		src, ok := t.pllSource()
		if !ok || t.clocks[src] == 0 {
			return status.DependentClockNotConfigured
		}
		t.clocks[src]++
	case ClockSYS:
		src, ok := t.sysSource()
		if !ok || t.clocks[src] == 0 {
			return status.DependentClockNotConfigured
		}
		t.clocks[src]++
	}

	t.clocks[id]++
	return status.OK
}

func (t *Tracker) releaseClock(id ClockID) status.Code {
	if id >= ClockCount {
		return status.InvalidParam
	}
	if t.clocks[id] == 0 {
		return status.AlreadyReleased
	}
	if t.clocks[id] > 1 {
		return status.DependenciesNotReleased
	}

	switch id {
	case ClockPLL:
		if src, ok := t.pllSource(); ok && t.clocks[src] > 0 {
			t.clocks[src]--
		}
	case ClockSYS:
		if src, ok := t.sysSource(); ok && t.clocks[src] > 0 {
			t.clocks[src]--
		}
	}

	t.clocks[id]--
	return status.OK
}

func (t *Tracker) acquireBus(id BusID) status.Code {
	if id >= BusCount {
		return status.InvalidParam
	}
	if t.buses[id] != 0 {
		return status.AlreadyAcquired
	}

	switch id {
	case BusAHB:
		if t.clocks[ClockSYS] == 0 {
			return status.DependentClockNotConfigured
		}
		t.clocks[ClockSYS]++
	case BusAPB1, BusAPB2:
		if t.buses[BusAHB] == 0 {
			return status.DependentClockNotConfigured
		}
		t.buses[BusAHB]++
	}

	t.buses[id]++
	return status.OK
}

func (t *Tracker) releaseBus(id BusID) status.Code {
	if id >= BusCount {
		return status.InvalidParam
	}
	if t.buses[id] == 0 {
		return status.AlreadyReleased
	}
	if t.buses[id] > 1 {
		return status.DependenciesNotReleased
	}

	switch id {
	case BusAHB:
		if t.clocks[ClockSYS] > 0 {
			t.clocks[ClockSYS]--
		}
	case BusAPB1, BusAPB2:
		if t.buses[BusAHB] > 0 {
			t.buses[BusAHB]--
		}
	}

	t.buses[id]--
	return status.OK
}

func (t *Tracker) acquirePeripheral(id PeripheralID) status.Code {
	if id >= PeriphCount {
		return status.InvalidParam
	}
	if t.periphs[id] != 0 {
		return status.AlreadyAcquired
	}

	switch id {
	case PeriphPWR:
		if t.buses[BusAPB1] == 0 {
			return status.DependentClockNotConfigured
		}
		t.buses[BusAPB1]++
	case PeriphRTC:
		src, ok := t.rtcSource()
		if !ok || t.clocks[src] == 0 {
			return status.DependentClockNotConfigured
		}
		t.clocks[src]++
	}

	t.periphs[id]++
	return status.OK
}

func (t *Tracker) releasePeripheral(id PeripheralID) status.Code {
	if id >= PeriphCount {
		return status.InvalidParam
	}
	if t.periphs[id] == 0 {
		return status.AlreadyReleased
	}
	if t.periphs[id] > 1 {
		return status.DependenciesNotReleased
	}

	switch id {
	case PeriphPWR:
		if t.buses[BusAPB1] > 0 {
			t.buses[BusAPB1]--
		}
	case PeriphRTC:
		if src, ok := t.rtcSource(); ok && t.clocks[src] > 0 {
			t.clocks[src]--
		}
	}

	t.periphs[id]--
	return status.OK
}

// pllSource reads the PLL's configured source oscillator. Sources outside
// the managed set (none, HSI16) report not-ok.
func (t *Tracker) pllSource() (ClockID, bool) {
	switch t.regs.PLLCFGR().ReadBits(RCC_PLLCFGR_PLLSRC_Msk, RCC_PLLCFGR_PLLSRC_Pos) {
	case RCC_PLLCFGR_PLLSRC_MSI:
		return ClockMSI, true
	case RCC_PLLCFGR_PLLSRC_HSE:
		return ClockHSE, true
	default:
		return 0, false
	}
}

// sysSource reads the commanded system clock source from CFGR.SW. The
// commanded field, not the switch status, is the dependency edge: source
// selection writes SW before acquiring SYS so the acquire validates the
// target source.
func (t *Tracker) sysSource() (ClockID, bool) {
	switch t.regs.CFGR().ReadBits(RCC_CFGR_SW_Msk, RCC_CFGR_SW_Pos) {
	case RCC_CFGR_SW_MSI:
		return ClockMSI, true
	case RCC_CFGR_SW_HSE:
		return ClockHSE, true
	case RCC_CFGR_SW_PLL:
		return ClockPLL, true
	default:
		return 0, false
	}
}

// rtcSource reads the RTC's configured source clock from BDCR.RTCSEL.
func (t *Tracker) rtcSource() (ClockID, bool) {
	switch t.regs.BDCR().ReadBits(RCC_BDCR_RTCSEL_Msk, RCC_BDCR_RTCSEL_Pos) {
	case RCC_BDCR_RTCSEL_LSE:
		return ClockLSE, true
	case RCC_BDCR_RTCSEL_LSI:
		return ClockLSI, true
	case RCC_BDCR_RTCSEL_HSE:
		return ClockHSE, true
	default:
		return 0, false
	}
}
