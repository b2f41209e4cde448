package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
)

// cmdStatus shows a one-screen summary of the node's clock state.
func (c *Console) cmdStatus() {
	tree := c.ctrl.Snapshot()

	fmt.Fprintln(c.out, "\nNode Status")
	fmt.Fprintln(c.out, "-------------------------------------------")
	fmt.Fprintf(c.out, "  Board:        %s (%s)\n", c.profile.Name, c.profile.MCU)
	if tree.SysclkKnown {
		fmt.Fprintf(c.out, "  Sysclk:       %s at %s (usage %d)\n",
			tree.SysclkSource, formatHz(tree.SysclkHz), tree.SysUsage)
	} else {
		fmt.Fprintln(c.out, "  Sysclk:       unknown")
	}
	fmt.Fprintf(c.out, "  HCLK:         %s\n", formatHz(tree.HCLKHz))
	fmt.Fprintf(c.out, "  PCLK1:        %s\n", formatHz(tree.PCLK1Hz))
	fmt.Fprintf(c.out, "  PCLK2:        %s\n", formatHz(tree.PCLK2Hz))
	if tree.RTCEnabled {
		fmt.Fprintf(c.out, "  RTC:          running from %s at %s\n",
			tree.RTCSource, formatHz(tree.RTCHz))
	} else {
		fmt.Fprintln(c.out, "  RTC:          off")
	}
	if c.traceFile != nil {
		fmt.Fprintf(c.out, "  Trace:        on (%s)\n", c.tracePath)
	} else {
		fmt.Fprintln(c.out, "  Trace:        off")
	}
	fmt.Fprintf(c.out, "  Poll budget:  %d\n", c.budget)
	fmt.Fprintf(c.out, "  Bus accesses: %d\n", c.dev.Tick())
}

// cmdTree shows the full clock tree with per-resource usage counts.
func (c *Console) cmdTree() {
	tree := c.ctrl.Snapshot()

	fmt.Fprintln(c.out, "\nClock Tree")
	fmt.Fprintln(c.out, "-------------------------------------------")
	if tree.SysclkKnown {
		fmt.Fprintf(c.out, "  SYSCLK <- %s at %s (usage %d)\n",
			tree.SysclkSource, formatHz(tree.SysclkHz), tree.SysUsage)
	} else {
		fmt.Fprintln(c.out, "  SYSCLK <- none")
	}
	fmt.Fprintf(c.out, "    HCLK:  %s\n", formatHz(tree.HCLKHz))
	fmt.Fprintf(c.out, "    PCLK1: %s\n", formatHz(tree.PCLK1Hz))
	fmt.Fprintf(c.out, "    PCLK2: %s\n", formatHz(tree.PCLK2Hz))

	fmt.Fprintln(c.out, "\n  Oscillators:")
	for _, osc := range tree.Oscillators {
		state := "off"
		if osc.On {
			state = "on"
			if !osc.Ready {
				state = "starting"
			}
		}
		fmt.Fprintf(c.out, "    %-4s %-9s %-12s usage %d\n",
			osc.Clock, state, formatHz(osc.Hz), osc.Usage)
	}

	fmt.Fprintln(c.out, "\n  Buses:")
	for _, b := range tree.Buses {
		fmt.Fprintf(c.out, "    %-5s usage %d\n", b.Name, b.Usage)
	}
	fmt.Fprintln(c.out, "\n  Peripherals:")
	for _, p := range tree.Peripherals {
		fmt.Fprintf(c.out, "    %-5s usage %d\n", p.Name, p.Usage)
	}

	if tree.RTCEnabled {
		fmt.Fprintf(c.out, "\n  RTC <- %s at %s\n", tree.RTCSource, formatHz(tree.RTCHz))
	} else if tree.RTCSourceSet {
		fmt.Fprintf(c.out, "\n  RTC <- %s (not enabled)\n", tree.RTCSource)
	} else {
		fmt.Fprintln(c.out, "\n  RTC <- none")
	}
	fmt.Fprintf(c.out, "  LSE drive: %d\n", tree.LSEDriveLevel)
}

// cmdUsage dumps the raw usage tables.
func (c *Console) cmdUsage() {
	t := c.ctrl.Tracker()

	fmt.Fprintln(c.out, "\nUsage Counts")
	fmt.Fprintln(c.out, "-------------------------------------------")
	for id := rcc.ClockID(0); id < rcc.ClockCount; id++ {
		fmt.Fprintf(c.out, "  %-16s %d\n", rcc.ClockTarget(id), t.ClockUsage(id))
	}
	for id := rcc.BusID(0); id < rcc.BusCount; id++ {
		fmt.Fprintf(c.out, "  %-16s %d\n", rcc.BusTarget(id), t.BusUsage(id))
	}
	for id := rcc.PeripheralID(0); id < rcc.PeriphCount; id++ {
		fmt.Fprintf(c.out, "  %-16s %d\n", rcc.PeripheralTarget(id), t.PeripheralUsage(id))
	}
}

// cmdInit handles the init command.
// Usage:
//   - init msi [range]          - Start MSI at a range code (default per board)
//   - init hse                  - Start HSE, bypass per board profile
//   - init lsi                  - Start LSI
//   - init lse [drive]          - Start LSE; backup domain access is handled
//   - init pll <src> <m> <n> <r> - Start the PLL from msi or hse
func (c *Console) cmdInit(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: init msi [range] | init hse | init lsi | init lse [drive] | init pll <src> <m> <n> <r>")
		return
	}

	switch strings.ToLower(args[0]) {
	case "msi":
		rangeCode := c.profile.MSIDefaultRange
		if len(args) > 1 {
			v, err := parseUint32(args[1])
			if err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
				return
			}
			rangeCode = v
		}
		st := c.ctrl.InitMSI(rangeCode, c.budget)
		if st.IsError() {
			fmt.Fprintf(c.out, "Error: %s\n", st)
			return
		}
		fmt.Fprintf(c.out, "MSI running at %s\n", formatHz(c.ctrl.MSIFrequency()))

	case "hse":
		st := c.ctrl.InitHSE(c.profile.HSEBypass, c.budget)
		if st.IsError() {
			fmt.Fprintf(c.out, "Error: %s\n", st)
			return
		}
		fmt.Fprintf(c.out, "HSE running at %s\n", formatHz(c.profile.HSEHz))

	case "lsi":
		st := c.ctrl.InitLSI(c.budget)
		if st.IsError() {
			fmt.Fprintf(c.out, "Error: %s\n", st)
			return
		}
		fmt.Fprintf(c.out, "LSI running at %s\n", formatHz(c.profile.LSIHz))

	case "lse":
		var drive uint32
		if len(args) > 1 {
			v, err := parseUint32(args[1])
			if err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
				return
			}
			drive = v
		}
		st := c.withBackupAccess(func() status.Code {
			return c.ctrl.InitLSE(drive, c.budget)
		})
		if st.IsError() {
			fmt.Fprintf(c.out, "Error: %s\n", st)
			return
		}
		fmt.Fprintf(c.out, "LSE running at %s (drive %d)\n", formatHz(c.profile.LSEHz), drive)

	case "pll":
		if len(args) != 5 {
			fmt.Fprintln(c.out, "Usage: init pll <msi|hse> <m> <n> <r>")
			return
		}
		src, err := parseClock(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		m, err := parseUint32(args[2])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		n, err := parseUint32(args[3])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		r, err := parseUint32(args[4])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		st := c.ctrl.InitPLL(rcc.PLLConfig{Source: src, M: m, N: n, R: r}, c.budget)
		if st.IsError() {
			fmt.Fprintf(c.out, "Error: %s\n", st)
			return
		}
		fmt.Fprintf(c.out, "PLL running at %s\n", formatHz(c.ctrl.PLLFrequency()))

	default:
		fmt.Fprintf(c.out, "Unknown oscillator: %s\n", args[0])
	}
}

// cmdDeinit handles the deinit command.
func (c *Console) cmdDeinit(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: deinit <msi|hse|lsi|lse|pll>")
		return
	}

	switch strings.ToLower(args[0]) {
	case "msi":
		c.report(c.ctrl.DeinitMSI(c.budget))
	case "hse":
		c.report(c.ctrl.DeinitHSE(c.budget))
	case "lsi":
		c.report(c.ctrl.DeinitLSI(c.budget))
	case "lse":
		c.report(c.withBackupAccess(func() status.Code {
			return c.ctrl.DeinitLSE(c.budget)
		}))
	case "pll":
		c.report(c.ctrl.DeinitPLL(c.budget))
	default:
		fmt.Fprintf(c.out, "Unknown oscillator: %s\n", args[0])
	}
}

// cmdSysclk handles the sysclk command.
func (c *Console) cmdSysclk(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: sysclk <msi|hse|pll|off>")
		return
	}
	if strings.ToLower(args[0]) == "off" {
		c.report(c.ctrl.DeselectSysclk())
		return
	}
	src, err := parseClock(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	st := c.ctrl.SelectSysclkSource(src, c.budget)
	if st.IsError() {
		fmt.Fprintf(c.out, "Error: %s\n", st)
		return
	}
	fmt.Fprintf(c.out, "Sysclk on %s at %s\n", src, formatHz(c.ctrl.SysclkFrequency()))
}

// cmdRTC handles the rtc command.
// Usage:
//   - rtc on <lse|lsi|hse> - Select a source and enable the RTC
//   - rtc off              - Disable the RTC
func (c *Console) cmdRTC(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: rtc on <lse|lsi|hse> | rtc off")
		return
	}

	switch strings.ToLower(args[0]) {
	case "on":
		if len(args) != 2 {
			fmt.Fprintln(c.out, "Usage: rtc on <lse|lsi|hse>")
			return
		}
		src, err := parseClock(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		st := c.ctrl.InitRTC(src)
		if st.IsError() {
			fmt.Fprintf(c.out, "Error: %s\n", st)
			return
		}
		fmt.Fprintf(c.out, "RTC running from %s at %s\n", src, formatHz(c.ctrl.RTCFrequency()))
	case "off":
		c.report(c.ctrl.DeinitRTC())
	default:
		fmt.Fprintln(c.out, "Usage: rtc on <lse|lsi|hse> | rtc off")
	}
}

// cmdDrive shows or changes the LSE drive strength.
func (c *Console) cmdDrive(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(c.out, "LSE drive: %d\n", c.ctrl.LSEDrive())
		return
	}
	drive, err := parseUint32(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.report(c.withBackupAccess(func() status.Code {
		return c.ctrl.ChangeLSEDrive(drive, c.budget)
	}))
}

// cmdAcquire handles the acquire command.
func (c *Console) cmdAcquire(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: acquire <msi|hse|lsi|lse|pll|sys|ahb|apb1|apb2|pwr|rtc>")
		return
	}
	target, err := parseTarget(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	st := c.ctrl.Acquire(target)
	if st.IsError() {
		fmt.Fprintf(c.out, "Error: %s\n", st)
		return
	}
	fmt.Fprintf(c.out, "%s usage now %d\n", target, c.ctrl.Tracker().Usage(target))
}

// cmdRelease handles the release command.
func (c *Console) cmdRelease(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: release <msi|hse|lsi|lse|pll|sys|ahb|apb1|apb2|pwr|rtc>")
		return
	}
	target, err := parseTarget(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	st := c.ctrl.Release(target)
	if st.IsError() {
		fmt.Fprintf(c.out, "Error: %s\n", st)
		return
	}
	fmt.Fprintf(c.out, "%s usage now %d\n", target, c.ctrl.Tracker().Usage(target))
}

// cmdFault handles the fault command.
// Usage:
//   - fault                      - Show armed faults
//   - fault ready <clock> on|off - Hold a clock's ready flag down
//   - fault switch on|off        - Hang the system clock switch
func (c *Console) cmdFault(args []string) {
	if len(args) == 0 {
		c.showFaults()
		return
	}

	switch strings.ToLower(args[0]) {
	case "ready":
		if len(args) != 3 {
			fmt.Fprintln(c.out, "Usage: fault ready <clock> on|off")
			return
		}
		clock, err := parseClock(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		if clock == rcc.ClockSYS {
			fmt.Fprintln(c.out, "Error: the system clock has no ready flag; use fault switch")
			return
		}
		on, err := parseOnOff(args[2])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		c.dev.SetFailReady(clock, on)
		if on {
			c.failReady[clock] = true
			fmt.Fprintf(c.out, "%s will no longer report ready\n", clock)
		} else {
			delete(c.failReady, clock)
			fmt.Fprintf(c.out, "%s ready fault cleared\n", clock)
		}

	case "switch":
		if len(args) != 2 {
			fmt.Fprintln(c.out, "Usage: fault switch on|off")
			return
		}
		on, err := parseOnOff(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		c.dev.SetStuckSwitch(on)
		c.stuckSwitch = on
		if on {
			fmt.Fprintln(c.out, "System clock switch will hang")
		} else {
			fmt.Fprintln(c.out, "System clock switch fault cleared")
		}

	default:
		fmt.Fprintln(c.out, "Usage: fault [ready <clock> on|off | switch on|off]")
	}
}

func (c *Console) showFaults() {
	if len(c.failReady) == 0 && !c.stuckSwitch {
		fmt.Fprintln(c.out, "No faults armed")
		return
	}
	for id := rcc.ClockID(0); id < rcc.ClockCount; id++ {
		if c.failReady[id] {
			fmt.Fprintf(c.out, "  ready fault: %s never reports ready\n", id)
		}
	}
	if c.stuckSwitch {
		fmt.Fprintln(c.out, "  switch fault: sysclk switch hangs")
	}
}

// cmdBudget shows or sets the ready poll budget.
func (c *Console) cmdBudget(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(c.out, "Poll budget: %d\n", c.budget)
		return
	}
	v, err := parseUint32(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if v == 0 {
		fmt.Fprintln(c.out, "Error: budget must not be zero")
		return
	}
	c.budget = v
	fmt.Fprintf(c.out, "Poll budget: %d\n", c.budget)
}

// cmdPeek reads a register without advancing the simulation clock.
func (c *Console) cmdPeek(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: peek <register|0xADDR>")
		return
	}
	addr, err := c.regAddr(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%#08x = %#08x\n", addr, c.dev.Peek(addr))
}

// cmdPoke writes a register directly, bypassing the driver and the usage
// tracker.
func (c *Console) cmdPoke(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.out, "Usage: poke <register|0xADDR> <value>")
		return
	}
	addr, err := c.regAddr(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	v, err := parseUint32(args[1])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.dev.Poke(addr, v)
	fmt.Fprintf(c.out, "%#08x = %#08x\n", addr, c.dev.Peek(addr))
}

// cmdReset puts the device and the usage tables back into their power-on
// state. Armed faults stay armed, matching hardware that fails the same
// way after a power cycle.
func (c *Console) cmdReset() {
	c.dev.Reset()
	c.ctrl.Reset()
	fmt.Fprintln(c.out, "Device and usage tracking reset to power-on state")
}

// cmdTrace handles the trace command.
// Usage:
//   - trace           - Show recording state
//   - trace on [path] - Record events to a file
//   - trace off       - Stop recording and close the file
func (c *Console) cmdTrace(args []string) {
	if len(args) == 0 {
		if c.traceFile != nil {
			fmt.Fprintf(c.out, "Tracing to %s\n", c.tracePath)
		} else {
			fmt.Fprintln(c.out, "Tracing off")
		}
		return
	}

	switch strings.ToLower(args[0]) {
	case "on":
		path := c.tracePath
		if len(args) > 1 {
			path = args[1]
		}
		if path == "" {
			path = defaultTracePath
		}
		if err := c.startTrace(path); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "Tracing to %s\n", c.tracePath)
	case "off":
		if c.traceFile == nil {
			fmt.Fprintln(c.out, "Tracing off")
			return
		}
		c.stopTrace()
		fmt.Fprintf(c.out, "Trace written to %s\n", c.tracePath)
	default:
		fmt.Fprintln(c.out, "Usage: trace on [path] | trace off")
	}
}

// report prints the outcome of a driver operation that has no value to
// show beyond its status.
func (c *Console) report(st status.Code) {
	if st.IsError() {
		fmt.Fprintf(c.out, "Error: %s\n", st)
		return
	}
	fmt.Fprintln(c.out, "OK")
}

// regAddr resolves a register name or a 0x-prefixed absolute address
// against the board's peripheral bases.
func (c *Console) regAddr(name string) (uint32, error) {
	rccBase := c.profile.RCCBase
	if rccBase == 0 {
		rccBase = rcc.RCC_BASE
	}
	pwrBase := c.profile.PWRBase
	if pwrBase == 0 {
		pwrBase = rcc.PWR_BASE
	}

	switch strings.ToLower(name) {
	case "cr":
		return rccBase + rcc.RCC_CR, nil
	case "cfgr":
		return rccBase + rcc.RCC_CFGR, nil
	case "pllcfgr":
		return rccBase + rcc.RCC_PLLCFGR, nil
	case "ahb1enr":
		return rccBase + rcc.RCC_AHB1ENR, nil
	case "ahb2enr":
		return rccBase + rcc.RCC_AHB2ENR, nil
	case "apb1enr1":
		return rccBase + rcc.RCC_APB1ENR1, nil
	case "apb2enr":
		return rccBase + rcc.RCC_APB2ENR, nil
	case "bdcr":
		return rccBase + rcc.RCC_BDCR, nil
	case "csr":
		return rccBase + rcc.RCC_CSR, nil
	case "pwr_cr1", "pwrcr1":
		return pwrBase + rcc.PWR_CR1, nil
	}
	if strings.HasPrefix(strings.ToLower(name), "0x") {
		return parseUint32(name)
	}
	return 0, fmt.Errorf("unknown register %q", name)
}

// parseClock resolves an oscillator or derived clock name.
func parseClock(name string) (rcc.ClockID, error) {
	switch strings.ToLower(name) {
	case "msi":
		return rcc.ClockMSI, nil
	case "hse":
		return rcc.ClockHSE, nil
	case "lsi":
		return rcc.ClockLSI, nil
	case "lse":
		return rcc.ClockLSE, nil
	case "pll":
		return rcc.ClockPLL, nil
	case "sys", "sysclk":
		return rcc.ClockSYS, nil
	default:
		return 0, fmt.Errorf("unknown clock %q", name)
	}
}

// parseTarget resolves a resource name for acquire and release.
func parseTarget(name string) (rcc.Target, error) {
	switch strings.ToLower(name) {
	case "msi", "hse", "lsi", "lse", "pll", "sys", "sysclk":
		id, err := parseClock(name)
		if err != nil {
			return rcc.Target{}, err
		}
		return rcc.ClockTarget(id), nil
	case "ahb":
		return rcc.BusTarget(rcc.BusAHB), nil
	case "apb1":
		return rcc.BusTarget(rcc.BusAPB1), nil
	case "apb2":
		return rcc.BusTarget(rcc.BusAPB2), nil
	case "pwr":
		return rcc.PeripheralTarget(rcc.PeriphPWR), nil
	case "rtc":
		return rcc.PeripheralTarget(rcc.PeriphRTC), nil
	default:
		return rcc.Target{}, fmt.Errorf("unknown target %q", name)
	}
}

// parseOnOff parses an on/off argument.
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

// parseUint32 parses a decimal or 0x-prefixed value.
func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return uint32(v), nil
}

// formatHz renders a frequency with a readable unit.
func formatHz(hz uint32) string {
	switch {
	case hz == 0:
		return "0 Hz"
	case hz%1000000 == 0:
		return fmt.Sprintf("%d MHz", hz/1000000)
	case hz%1000 == 0:
		return fmt.Sprintf("%d kHz", hz/1000)
	case hz >= 1000:
		return fmt.Sprintf("%.3f kHz", float64(hz)/1000)
	default:
		return fmt.Sprintf("%d Hz", hz)
	}
}
