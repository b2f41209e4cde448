package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// InitLSI acquires and starts the low-speed internal oscillator. On
// timeout the acquisition is rolled back.
func (c *Controller) InitLSI(budget uint32) status.Code {
	target := ClockTarget(ClockLSI)

	if st := c.tracker.Acquire(target); st.IsError() {
		return c.logOp(trace.OpInit, target, st)
	}

	csr := c.regs.CSR()

	csr.ClearBits(RCC_CSR_LSION)
	if st := waitForBits(csr, RCC_CSR_LSIRDY, false, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	csr.SetBits(RCC_CSR_LSION)
	if st := waitForBits(csr, RCC_CSR_LSIRDY, true, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	return c.logFreq(trace.OpInit, target, status.OK, c.cfg.LSIHz)
}

// DeinitLSI releases the oscillator and switches it off. Release refusals
// leave the hardware untouched.
func (c *Controller) DeinitLSI(budget uint32) status.Code {
	target := ClockTarget(ClockLSI)

	if st := c.tracker.Release(target); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	csr := c.regs.CSR()
	csr.ClearBits(RCC_CSR_LSION)
	if st := waitForBits(csr, RCC_CSR_LSIRDY, false, budget); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	return c.logOp(trace.OpDeinit, target, status.OK)
}
