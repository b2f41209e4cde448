package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// SelectSysclkSource switches the system clock to the given source (MSI,
// HSE or PLL).
//
// The source's ready flag is checked first (NotReady when it is not
// running). The SW field is written before the SYS acquire so the tracker
// validates the requested source; an acquire refusal restores the
// previous selection. The switch is then confirmed by polling SWS for at
// most budget iterations. A confirm timeout performs no rollback - the
// hardware may be mid-switch and callers must treat the state as fatal.
func (c *Controller) SelectSysclkSource(source ClockID, budget uint32) status.Code {
	target := ClockTarget(ClockSYS)

	var sw uint32
	var readyMask uint32
	switch source {
	case ClockMSI:
		sw, readyMask = RCC_CFGR_SW_MSI, RCC_CR_MSIRDY
	case ClockHSE:
		sw, readyMask = RCC_CFGR_SW_HSE, RCC_CR_HSERDY
	case ClockPLL:
		sw, readyMask = RCC_CFGR_SW_PLL, RCC_CR_PLLRDY
	default:
		return c.logOp(trace.OpSelect, target, status.InvalidParam)
	}

	if !c.regs.CR().HasBits(readyMask) {
		return c.logOp(trace.OpSelect, target, status.NotReady)
	}

	cfgr := c.regs.CFGR()
	prev := cfgr.ReadBits(RCC_CFGR_SW_Msk, RCC_CFGR_SW_Pos)

	cfgr.ReplaceBits(sw, RCC_CFGR_SW_Msk, RCC_CFGR_SW_Pos)
	if st := c.tracker.Acquire(target); st.IsError() {
		cfgr.ReplaceBits(prev, RCC_CFGR_SW_Msk, RCC_CFGR_SW_Pos)
		return c.logOp(trace.OpSelect, target, st)
	}

	// Confirm the switch; no rollback past this point.
	for {
		if cfgr.ReadBits(RCC_CFGR_SWS_Msk, RCC_CFGR_SWS_Pos) == sw {
			break
		}
		if budget == 0 {
			return c.logOp(trace.OpSelect, target, status.Timeout)
		}
		budget--
	}

	return c.logFreq(trace.OpSelect, target, status.OK, c.SysclkFrequency())
}

// DeselectSysclk releases the SYS hold so a consumer can switch sources:
// release, then select the new source. While buses are gated on, the
// release refuses with DependenciesNotReleased.
func (c *Controller) DeselectSysclk() status.Code {
	return c.Release(ClockTarget(ClockSYS))
}

// SetAHBPrescaler programs the AHB divider. Valid dividers are 1, 2, 4,
// 8, 16, 64, 128, 256 and 512.
func (c *Controller) SetAHBPrescaler(div uint32) status.Code {
	field, ok := ahbPrescalerField(div)
	if !ok {
		return status.InvalidParam
	}
	c.regs.CFGR().ReplaceBits(field, RCC_CFGR_HPRE_Msk, RCC_CFGR_HPRE_Pos)
	return status.OK
}

// SetAPB1Prescaler programs the APB1 divider. Valid dividers are 1, 2, 4,
// 8 and 16.
func (c *Controller) SetAPB1Prescaler(div uint32) status.Code {
	field, ok := apbPrescalerField(div)
	if !ok {
		return status.InvalidParam
	}
	c.regs.CFGR().ReplaceBits(field, RCC_CFGR_PPRE1_Msk, RCC_CFGR_PPRE1_Pos)
	return status.OK
}

// SetAPB2Prescaler programs the APB2 divider. Valid dividers are 1, 2, 4,
// 8 and 16.
func (c *Controller) SetAPB2Prescaler(div uint32) status.Code {
	field, ok := apbPrescalerField(div)
	if !ok {
		return status.InvalidParam
	}
	c.regs.CFGR().ReplaceBits(field, RCC_CFGR_PPRE2_Msk, RCC_CFGR_PPRE2_Pos)
	return status.OK
}
