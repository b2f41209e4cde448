package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// InitRTC selects the RTC's source clock (LSE, LSI or HSE/32) and enables
// it.
//
// The sequence runs inside a backup-domain access envelope: the APB1 bus
// and the PWR block are brought up transiently when not already held, DBP
// write access is opened, and everything transient is restored on the way
// out - on failure paths as well, so a refused init leaves no side
// effects. The source selection is staged into RTCSEL before the RTC
// acquire, so the tracker transitively validates that the chosen source
// clock is held.
func (c *Controller) InitRTC(source ClockID) status.Code {
	target := PeripheralTarget(PeriphRTC)

	var sel uint32
	switch source {
	case ClockLSE:
		sel = RCC_BDCR_RTCSEL_LSE
	case ClockLSI:
		sel = RCC_BDCR_RTCSEL_LSI
	case ClockHSE:
		sel = RCC_BDCR_RTCSEL_HSE
	default:
		return c.logOp(trace.OpInit, target, status.InvalidParam)
	}

	apb1Held := c.tracker.BusUsage(BusAPB1) > 0
	if !apb1Held {
		if st := c.Acquire(BusTarget(BusAPB1)); st.IsError() {
			return c.logOp(trace.OpInit, target, st)
		}
	}

	pwrHeld := c.tracker.PeripheralUsage(PeriphPWR) > 0
	if !pwrHeld {
		if st := c.EnablePWR(); st.IsError() {
			if !apb1Held {
				c.Release(BusTarget(BusAPB1))
			}
			return c.logOp(trace.OpInit, target, st)
		}
	}

	pwr := c.regs.PWRCR1()
	pwr.SetBits(PWR_CR1_DBP)

	bdcr := c.regs.BDCR()
	prevSel := bdcr.ReadBits(RCC_BDCR_RTCSEL_Msk, RCC_BDCR_RTCSEL_Pos)

	// Stage the source selection so the acquire sees the requested clock
	// as the RTC's dependency.
	bdcr.ReplaceBits(sel, RCC_BDCR_RTCSEL_Msk, RCC_BDCR_RTCSEL_Pos)
	if st := c.tracker.Acquire(target); st.IsError() {
		bdcr.ReplaceBits(prevSel, RCC_BDCR_RTCSEL_Msk, RCC_BDCR_RTCSEL_Pos)
		pwr.ClearBits(PWR_CR1_DBP)
		c.unwindBackupEnvelope(apb1Held, pwrHeld)
		return c.logOp(trace.OpInit, target, st)
	}

	c.regs.APB1ENR1().SetBits(RCC_APB1ENR1_RTCAPBEN)
	bdcr.SetBits(RCC_BDCR_RTCEN)

	pwr.ClearBits(PWR_CR1_DBP)
	c.unwindBackupEnvelope(apb1Held, pwrHeld)
	return c.logOp(trace.OpInit, target, status.OK)
}

// DeinitRTC disables the RTC and releases it, inside the same
// backup-domain envelope as InitRTC. The release is checked first;
// refusals leave the RTC running. The source selection is left in place -
// on real silicon RTCSEL is write-once until a backup domain reset.
func (c *Controller) DeinitRTC() status.Code {
	target := PeripheralTarget(PeriphRTC)

	apb1Held := c.tracker.BusUsage(BusAPB1) > 0
	if !apb1Held {
		if st := c.Acquire(BusTarget(BusAPB1)); st.IsError() {
			return c.logOp(trace.OpDeinit, target, st)
		}
	}

	pwrHeld := c.tracker.PeripheralUsage(PeriphPWR) > 0
	if !pwrHeld {
		if st := c.EnablePWR(); st.IsError() {
			if !apb1Held {
				c.Release(BusTarget(BusAPB1))
			}
			return c.logOp(trace.OpDeinit, target, st)
		}
	}

	pwr := c.regs.PWRCR1()
	pwr.SetBits(PWR_CR1_DBP)

	if st := c.tracker.Release(target); st.IsError() {
		pwr.ClearBits(PWR_CR1_DBP)
		c.unwindBackupEnvelope(apb1Held, pwrHeld)
		return c.logOp(trace.OpDeinit, target, st)
	}

	c.regs.BDCR().ClearBits(RCC_BDCR_RTCEN)
	c.regs.APB1ENR1().ClearBits(RCC_APB1ENR1_RTCAPBEN)

	pwr.ClearBits(PWR_CR1_DBP)
	c.unwindBackupEnvelope(apb1Held, pwrHeld)
	return c.logOp(trace.OpDeinit, target, status.OK)
}

// unwindBackupEnvelope drops whatever the backup-domain envelope acquired
// transiently. PWR goes first - it pins APB1 while enabled.
func (c *Controller) unwindBackupEnvelope(apb1Held, pwrHeld bool) {
	if !pwrHeld {
		c.DisablePWR()
	}
	if !apb1Held {
		c.Release(BusTarget(BusAPB1))
	}
}
