package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// InitMSI acquires the MSI oscillator and restarts it at the given range
// code (0x0..0xB). The oscillator is disabled, retuned and re-enabled;
// both ready polls are bounded by budget iterations. On timeout the
// acquisition is rolled back and the usage count returns to zero.
func (c *Controller) InitMSI(rangeCode uint32, budget uint32) status.Code {
	target := ClockTarget(ClockMSI)

	if rangeCode > msiRangeMax {
		return c.logOp(trace.OpInit, target, status.InvalidParam)
	}

	if st := c.tracker.Acquire(target); st.IsError() {
		return c.logOp(trace.OpInit, target, st)
	}

	cr := c.regs.CR()

	cr.ClearBits(RCC_CR_MSION)
	if st := waitForBits(cr, RCC_CR_MSIRDY, false, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	// Range select takes effect from CR while MSIRGSEL is set.
	cr.SetBits(RCC_CR_MSIRGSEL)
	cr.ReplaceBits(rangeCode, RCC_CR_MSIRANGE_Msk, RCC_CR_MSIRANGE_Pos)

	cr.SetBits(RCC_CR_MSION)
	if st := waitForBits(cr, RCC_CR_MSIRDY, true, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	return c.logFreq(trace.OpInit, target, status.OK, msiRangeHz[rangeCode])
}

// DeinitMSI releases the MSI oscillator and switches it off. The release
// is checked first: if dependents still hold MSI the hardware is left
// untouched. A disable poll timeout after a successful release leaves the
// usage count at zero.
func (c *Controller) DeinitMSI(budget uint32) status.Code {
	target := ClockTarget(ClockMSI)

	if st := c.tracker.Release(target); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	cr := c.regs.CR()
	cr.ClearBits(RCC_CR_MSION)
	if st := waitForBits(cr, RCC_CR_MSIRDY, false, budget); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	return c.logOp(trace.OpDeinit, target, status.OK)
}

// MSIFrequency returns the oscillator's current nominal frequency from
// its active range field, or zero for reserved codes.
func (c *Controller) MSIFrequency() uint32 {
	cr := c.regs.CR()
	if cr.HasBits(RCC_CR_MSIRGSEL) {
		return MSIRangeFrequency(cr.ReadBits(RCC_CR_MSIRANGE_Msk, RCC_CR_MSIRANGE_Pos))
	}
	// MSIRGSEL clear: the standby range register is in effect.
	return MSIRangeFrequency(c.regs.CSR().ReadBits(RCC_CSR_MSISRANGE_Msk, RCC_CSR_MSISRANGE_Pos))
}
