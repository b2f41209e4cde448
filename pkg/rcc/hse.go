package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// InitHSE acquires and starts the external high-speed oscillator. Bypass
// mode feeds the clock input from an external active source instead of
// driving a crystal. Boards without HSE fitted report ClockError. On
// timeout the acquisition is rolled back.
func (c *Controller) InitHSE(bypass bool, budget uint32) status.Code {
	target := ClockTarget(ClockHSE)

	if c.cfg.HSEHz == 0 {
		return c.logOp(trace.OpInit, target, status.ClockError)
	}

	if st := c.tracker.Acquire(target); st.IsError() {
		return c.logOp(trace.OpInit, target, st)
	}

	cr := c.regs.CR()

	cr.ClearBits(RCC_CR_HSEON)
	if st := waitForBits(cr, RCC_CR_HSERDY, false, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	// HSEBYP may only change while the oscillator is off.
	if bypass {
		cr.SetBits(RCC_CR_HSEBYP)
	} else {
		cr.ClearBits(RCC_CR_HSEBYP)
	}

	cr.SetBits(RCC_CR_HSEON)
	if st := waitForBits(cr, RCC_CR_HSERDY, true, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	return c.logFreq(trace.OpInit, target, status.OK, c.cfg.HSEHz)
}

// DeinitHSE releases the oscillator and switches it off. Release refusals
// leave the hardware untouched.
func (c *Controller) DeinitHSE(budget uint32) status.Code {
	target := ClockTarget(ClockHSE)

	if st := c.tracker.Release(target); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	cr := c.regs.CR()
	cr.ClearBits(RCC_CR_HSEON)
	if st := waitForBits(cr, RCC_CR_HSERDY, false, budget); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	return c.logOp(trace.OpDeinit, target, status.OK)
}
