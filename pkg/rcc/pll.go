package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// PLL divider limits.
const (
	pllMinM = 1
	pllMaxM = 8
	pllMinN = 8
	pllMaxN = 86
)

// PLLConfig describes a main PLL configuration. The R output feeds the
// system clock: f = source * N / M / R.
type PLLConfig struct {
	// Source selects the input oscillator, ClockMSI or ClockHSE.
	Source ClockID

	// M is the input divider, 1..8.
	M uint32

	// N is the multiplier, 8..86.
	N uint32

	// R is the output divider, one of 2, 4, 6, 8.
	R uint32
}

// InitPLL validates the configuration, acquires the PLL and brings it up.
//
// Divider values outside their domains and sources other than MSI or HSE
// report InvalidParam; a configuration whose output would exceed the
// 80 MHz system limit reports Error. Validation happens before
// acquisition, so rejected configurations leave no trace in the usage
// tables. The source selection is staged into PLLCFGR before the acquire
// so the tracker validates the requested source; if the acquire fails the
// previous configuration is restored. Ready poll timeouts roll the
// acquisition back.
func (c *Controller) InitPLL(cfg PLLConfig, budget uint32) status.Code {
	target := ClockTarget(ClockPLL)

	if cfg.Source != ClockMSI && cfg.Source != ClockHSE {
		return c.logOp(trace.OpInit, target, status.InvalidParam)
	}
	if cfg.M < pllMinM || cfg.M > pllMaxM {
		return c.logOp(trace.OpInit, target, status.InvalidParam)
	}
	if cfg.N < pllMinN || cfg.N > pllMaxN {
		return c.logOp(trace.OpInit, target, status.InvalidParam)
	}
	switch cfg.R {
	case 2, 4, 6, 8:
	default:
		return c.logOp(trace.OpInit, target, status.InvalidParam)
	}

	input := c.pllInputFrequency(cfg.Source)
	if input == 0 {
		return c.logOp(trace.OpInit, target, status.ClockError)
	}
	out := CalculatePLLFrequency(input, cfg.M, cfg.N, cfg.R)
	if out > MaxSysclkHz {
		return c.logOp(trace.OpInit, target, status.Error)
	}

	srcField := RCC_PLLCFGR_PLLSRC_MSI
	if cfg.Source == ClockHSE {
		srcField = RCC_PLLCFGR_PLLSRC_HSE
	}

	pllcfgr := c.regs.PLLCFGR()
	prev := pllcfgr.Get()

	// Stage the source selection so the acquire sees the requested
	// oscillator as the PLL's dependency.
	pllcfgr.ReplaceBits(srcField, RCC_PLLCFGR_PLLSRC_Msk, RCC_PLLCFGR_PLLSRC_Pos)
	if st := c.tracker.Acquire(target); st.IsError() {
		pllcfgr.Set(prev)
		return c.logOp(trace.OpInit, target, st)
	}

	cr := c.regs.CR()

	cr.ClearBits(RCC_CR_PLLON)
	if st := waitForBits(cr, RCC_CR_PLLRDY, false, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	// Field encodings: PLLM holds m-1, PLLR holds r/2-1, PLLN is direct.
	pllcfgr.ReplaceBits(cfg.M-1, RCC_PLLCFGR_PLLM_Msk, RCC_PLLCFGR_PLLM_Pos)
	pllcfgr.ReplaceBits(cfg.N, RCC_PLLCFGR_PLLN_Msk, RCC_PLLCFGR_PLLN_Pos)
	pllcfgr.ReplaceBits(cfg.R/2-1, RCC_PLLCFGR_PLLR_Msk, RCC_PLLCFGR_PLLR_Pos)
	pllcfgr.SetBits(RCC_PLLCFGR_PLLREN)

	cr.SetBits(RCC_CR_PLLON)
	if st := waitForBits(cr, RCC_CR_PLLRDY, true, budget); st.IsError() {
		c.tracker.Release(target)
		return c.logOp(trace.OpInit, target, st)
	}

	return c.logFreq(trace.OpInit, target, status.OK, out)
}

// DeinitPLL releases the PLL and switches it off. While the system clock
// runs from the PLL the release refuses with DependenciesNotReleased and
// the hardware is left untouched.
func (c *Controller) DeinitPLL(budget uint32) status.Code {
	target := ClockTarget(ClockPLL)

	if st := c.tracker.Release(target); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	cr := c.regs.CR()
	cr.ClearBits(RCC_CR_PLLON)
	if st := waitForBits(cr, RCC_CR_PLLRDY, false, budget); st.IsError() {
		return c.logOp(trace.OpDeinit, target, st)
	}

	return c.logOp(trace.OpDeinit, target, status.OK)
}

// PLLFrequency returns the R-output frequency the current PLLCFGR
// configuration produces, or zero when the PLL has no managed source
// selected.
func (c *Controller) PLLFrequency() uint32 {
	pllcfgr := c.regs.PLLCFGR()

	var input uint32
	switch pllcfgr.ReadBits(RCC_PLLCFGR_PLLSRC_Msk, RCC_PLLCFGR_PLLSRC_Pos) {
	case RCC_PLLCFGR_PLLSRC_MSI:
		input = c.MSIFrequency()
	case RCC_PLLCFGR_PLLSRC_HSE:
		input = c.cfg.HSEHz
	default:
		return 0
	}

	m := pllcfgr.ReadBits(RCC_PLLCFGR_PLLM_Msk, RCC_PLLCFGR_PLLM_Pos) + 1
	n := pllcfgr.ReadBits(RCC_PLLCFGR_PLLN_Msk, RCC_PLLCFGR_PLLN_Pos)
	r := (pllcfgr.ReadBits(RCC_PLLCFGR_PLLR_Msk, RCC_PLLCFGR_PLLR_Pos) + 1) * 2

	return CalculatePLLFrequency(input, m, n, r)
}

// PLLSource returns the PLL's configured source oscillator.
func (c *Controller) PLLSource() (ClockID, bool) {
	return c.tracker.pllSource()
}

// pllInputFrequency resolves a PLL source to its input frequency.
func (c *Controller) pllInputFrequency(source ClockID) uint32 {
	switch source {
	case ClockMSI:
		return c.MSIFrequency()
	case ClockHSE:
		return c.cfg.HSEHz
	default:
		return 0
	}
}
