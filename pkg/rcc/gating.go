package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// EnableBusClock takes a hold on a bus. Buses on this part have no single
// enable bit - the hold is pure bookkeeping that pins the clock chain
// above the bus and gates permission for peripheral enables beneath it.
func (c *Controller) EnableBusClock(id BusID) status.Code {
	return c.Acquire(BusTarget(id))
}

// DisableBusClock drops the hold on a bus. While peripherals on the bus
// are still enabled the release refuses with DependenciesNotReleased.
func (c *Controller) DisableBusClock(id BusID) status.Code {
	return c.Release(BusTarget(id))
}

// EnablePWR acquires the power controller and gates its APB1 clock on.
// The PWR block guards backup domain write access, so RTC and LSE
// bring-up enable it first.
func (c *Controller) EnablePWR() status.Code {
	target := PeripheralTarget(PeriphPWR)

	if st := c.tracker.Acquire(target); st.IsError() {
		return c.logOp(trace.OpInit, target, st)
	}

	c.regs.APB1ENR1().SetBits(RCC_APB1ENR1_PWREN)
	return c.logOp(trace.OpInit, target, status.OK)
}

// DisablePWR gates the power controller's clock off and releases it.
// The release is checked first so refusals leave the gate untouched.
func (c *Controller) DisablePWR() status.Code {
	target := PeripheralTarget(PeriphPWR)

	if st := c.tracker.Release(target); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	c.regs.APB1ENR1().ClearBits(RCC_APB1ENR1_PWREN)
	return c.logOp(trace.OpDeinit, target, status.OK)
}
