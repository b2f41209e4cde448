package rcc

// SysclkSource returns the active system clock source, decoded from the
// switch status field. The second return is false while a source outside
// the managed set (HSI16) is active.
func (c *Controller) SysclkSource() (ClockID, bool) {
	switch c.regs.CFGR().ReadBits(RCC_CFGR_SWS_Msk, RCC_CFGR_SWS_Pos) {
	case RCC_CFGR_SWS_MSI:
		return ClockMSI, true
	case RCC_CFGR_SWS_HSE:
		return ClockHSE, true
	case RCC_CFGR_SWS_PLL:
		return ClockPLL, true
	default:
		return 0, false
	}
}

// SysclkFrequency returns the current system clock frequency, derived from
// the active source. Unmanaged sources report zero.
func (c *Controller) SysclkFrequency() uint32 {
	src, ok := c.SysclkSource()
	if !ok {
		return 0
	}
	switch src {
	case ClockMSI:
		return c.MSIFrequency()
	case ClockHSE:
		return c.cfg.HSEHz
	case ClockPLL:
		return c.PLLFrequency()
	default:
		return 0
	}
}

// HCLKFrequency returns the AHB clock frequency: SYSCLK divided by the
// HPRE prescaler.
func (c *Controller) HCLKFrequency() uint32 {
	div := hpreDivider(c.regs.CFGR().ReadBits(RCC_CFGR_HPRE_Msk, RCC_CFGR_HPRE_Pos))
	return c.SysclkFrequency() / div
}

// PCLK1Frequency returns the APB1 clock frequency: HCLK divided by the
// PPRE1 prescaler.
func (c *Controller) PCLK1Frequency() uint32 {
	div := ppreDivider(c.regs.CFGR().ReadBits(RCC_CFGR_PPRE1_Msk, RCC_CFGR_PPRE1_Pos))
	return c.HCLKFrequency() / div
}

// PCLK2Frequency returns the APB2 clock frequency: HCLK divided by the
// PPRE2 prescaler.
func (c *Controller) PCLK2Frequency() uint32 {
	div := ppreDivider(c.regs.CFGR().ReadBits(RCC_CFGR_PPRE2_Msk, RCC_CFGR_PPRE2_Pos))
	return c.HCLKFrequency() / div
}

// RTCSource returns the RTC's configured source clock. The second return
// is false while no source is selected.
func (c *Controller) RTCSource() (ClockID, bool) {
	return c.tracker.rtcSource()
}

// RTCFrequency returns the RTC input clock frequency for the configured
// source. HSE feeds the RTC through a fixed divide-by-32 stage.
func (c *Controller) RTCFrequency() uint32 {
	src, ok := c.RTCSource()
	if !ok {
		return 0
	}
	switch src {
	case ClockLSE:
		return c.cfg.LSEHz
	case ClockLSI:
		return c.cfg.LSIHz
	case ClockHSE:
		return c.cfg.HSEHz / 32
	default:
		return 0
	}
}

// RTCEnabled reports whether the RTC is clocked.
func (c *Controller) RTCEnabled() bool {
	return c.regs.BDCR().HasBits(RCC_BDCR_RTCEN)
}

// ClockTree represents the complete observable clock layer state for
// display.
type ClockTree struct {
	SysclkSource  ClockID
	SysclkKnown   bool
	SysclkHz      uint32
	HCLKHz        uint32
	PCLK1Hz       uint32
	PCLK2Hz       uint32
	SysUsage      uint32
	Oscillators   []OscInfo
	Buses         []UsageInfo
	Peripherals   []UsageInfo
	RTCSource     ClockID
	RTCSourceSet  bool
	RTCEnabled    bool
	RTCHz         uint32
	LSEDriveLevel uint32
}

// OscInfo represents one oscillator's state for display.
type OscInfo struct {
	Clock ClockID
	On    bool
	Ready bool
	Hz    uint32
	Usage uint32
}

// UsageInfo represents a tracked resource's usage count for display.
type UsageInfo struct {
	Name  string
	Usage uint32
}

// Snapshot assembles the full clock tree state from the registers and the
// usage tables. Pure reads; the tracker is never touched.
func (c *Controller) Snapshot() *ClockTree {
	cr := c.regs.CR()
	bdcr := c.regs.BDCR()
	csr := c.regs.CSR()

	tree := &ClockTree{
		SysclkHz:      c.SysclkFrequency(),
		HCLKHz:        c.HCLKFrequency(),
		PCLK1Hz:       c.PCLK1Frequency(),
		PCLK2Hz:       c.PCLK2Frequency(),
		SysUsage:      c.tracker.ClockUsage(ClockSYS),
		RTCEnabled:    bdcr.HasBits(RCC_BDCR_RTCEN),
		RTCHz:         c.RTCFrequency(),
		LSEDriveLevel: c.LSEDrive(),
	}
	tree.SysclkSource, tree.SysclkKnown = c.SysclkSource()
	tree.RTCSource, tree.RTCSourceSet = c.RTCSource()

	tree.Oscillators = []OscInfo{
		{
			Clock: ClockMSI,
			On:    cr.HasBits(RCC_CR_MSION),
			Ready: cr.HasBits(RCC_CR_MSIRDY),
			Hz:    c.MSIFrequency(),
			Usage: c.tracker.ClockUsage(ClockMSI),
		},
		{
			Clock: ClockHSE,
			On:    cr.HasBits(RCC_CR_HSEON),
			Ready: cr.HasBits(RCC_CR_HSERDY),
			Hz:    c.cfg.HSEHz,
			Usage: c.tracker.ClockUsage(ClockHSE),
		},
		{
			Clock: ClockLSE,
			On:    bdcr.HasBits(RCC_BDCR_LSEON),
			Ready: bdcr.HasBits(RCC_BDCR_LSERDY),
			Hz:    c.cfg.LSEHz,
			Usage: c.tracker.ClockUsage(ClockLSE),
		},
		{
			Clock: ClockLSI,
			On:    csr.HasBits(RCC_CSR_LSION),
			Ready: csr.HasBits(RCC_CSR_LSIRDY),
			Hz:    c.cfg.LSIHz,
			Usage: c.tracker.ClockUsage(ClockLSI),
		},
		{
			Clock: ClockPLL,
			On:    cr.HasBits(RCC_CR_PLLON),
			Ready: cr.HasBits(RCC_CR_PLLRDY),
			Hz:    c.PLLFrequency(),
			Usage: c.tracker.ClockUsage(ClockPLL),
		},
	}

	for id := BusID(0); id < BusCount; id++ {
		tree.Buses = append(tree.Buses, UsageInfo{
			Name:  id.String(),
			Usage: c.tracker.BusUsage(id),
		})
	}
	for id := PeripheralID(0); id < PeriphCount; id++ {
		tree.Peripherals = append(tree.Peripherals, UsageInfo{
			Name:  id.String(),
			Usage: c.tracker.PeripheralUsage(id),
		})
	}

	return tree
}
