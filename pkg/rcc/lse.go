package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// lseDriveMax is the highest LSEDRV drive strength code.
const lseDriveMax = 3

// InitLSE acquires and starts the 32.768 kHz crystal at the given drive
// strength (0 lowest power .. 3 highest). Boards without the crystal
// fitted report ClockError. On timeout the acquisition is rolled back.
//
// The LSE lives in the backup domain: callers must have opened backup
// domain write access (PWR DBP) before calling, or the register writes
// will not take effect.
func (c *Controller) InitLSE(drive uint32, budget uint32) status.Code {
	target := ClockTarget(ClockLSE)

	if drive > lseDriveMax {
		return c.logOp(trace.OpInit, target, status.InvalidParam)
	}
	if !c.cfg.LSEFitted {
		return c.logOp(trace.OpInit, target, status.ClockError)
	}

	if st := c.tracker.Acquire(target); st.IsError() {
		return c.logOp(trace.OpInit, target, st)
	}

	bdcr := c.regs.BDCR()

	bdcr.ClearBits(RCC_BDCR_LSEON)
	if st := waitForBits(bdcr, RCC_BDCR_LSERDY, false, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	bdcr.ReplaceBits(drive, RCC_BDCR_LSEDRV_Msk, RCC_BDCR_LSEDRV_Pos)

	bdcr.SetBits(RCC_BDCR_LSEON)
	if st := waitForBits(bdcr, RCC_BDCR_LSERDY, true, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	return c.logFreq(trace.OpInit, target, status.OK, c.cfg.LSEHz)
}

// DeinitLSE releases the crystal and switches it off. Release refusals
// (for example while the RTC still runs from LSE) leave the hardware
// untouched. Requires open backup domain write access.
func (c *Controller) DeinitLSE(budget uint32) status.Code {
	target := ClockTarget(ClockLSE)

	if st := c.tracker.Release(target); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	bdcr := c.regs.BDCR()
	bdcr.ClearBits(RCC_BDCR_LSEON)
	if st := waitForBits(bdcr, RCC_BDCR_LSERDY, false, budget); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	return c.logOp(trace.OpDeinit, target, status.OK)
}

// ChangeLSEDrive adjusts the crystal's drive strength. Lowering the
// strength applies immediately; raising it requires cycling the
// oscillator off and on, with both ready polls bounded by budget. The
// usage tracker is not involved either way - the crystal stays owned by
// whoever initialized it. Requires open backup domain write access.
func (c *Controller) ChangeLSEDrive(drive uint32, budget uint32) status.Code {
	target := ClockTarget(ClockLSE)

	if drive > lseDriveMax {
		return c.logOp(trace.OpDriveChange, target, status.InvalidParam)
	}

	bdcr := c.regs.BDCR()
	current := bdcr.ReadBits(RCC_BDCR_LSEDRV_Msk, RCC_BDCR_LSEDRV_Pos)

	if drive == current {
		return c.logOp(trace.OpDriveChange, target, status.OK)
	}

	if drive < current {
		// Strength decreases apply while the oscillator runs.
		bdcr.ReplaceBits(drive, RCC_BDCR_LSEDRV_Msk, RCC_BDCR_LSEDRV_Pos)
		return c.logOp(trace.OpDriveChange, target, status.OK)
	}

	// Strength increases require an off/on cycle.
	bdcr.ClearBits(RCC_BDCR_LSEON)
	if st := waitForBits(bdcr, RCC_BDCR_LSERDY, false, budget); st.IsError() {
		return c.logOp(trace.OpDriveChange, target, st)
	}

	bdcr.ReplaceBits(drive, RCC_BDCR_LSEDRV_Msk, RCC_BDCR_LSEDRV_Pos)

	bdcr.SetBits(RCC_BDCR_LSEON)
	if st := waitForBits(bdcr, RCC_BDCR_LSERDY, true, budget); st.IsError() {
		return c.logOp(trace.OpDriveChange, target, st)
	}

	return c.logOp(trace.OpDriveChange, target, status.OK)
}

// LSEDrive returns the crystal's current drive strength code.
func (c *Controller) LSEDrive() uint32 {
	return c.regs.BDCR().ReadBits(RCC_BDCR_LSEDRV_Msk, RCC_BDCR_LSEDRV_Pos)
}
