package console

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/internal/simrcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/board"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// newTestConsole builds a console over a fresh simulated device, writing
// to a buffer instead of a readline instance.
func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()

	profile := &board.Profile{
		Name:            "bench",
		MCU:             "STM32L476RG",
		HSEHz:           8 * rcc.MHz,
		HSEBypass:       true,
		LSEFitted:       true,
		LSEHz:           32768,
		LSIHz:           32000,
		MSIDefaultRange: 0x6,
	}

	dev := simrcc.NewDevice()
	sink := NewSink()
	ctrl := rcc.NewController(dev, profile.RCCConfig(), rcc.WithLogger(sink))

	buf := &bytes.Buffer{}
	c := &Console{
		ctrl:      ctrl,
		dev:       dev,
		profile:   profile,
		sink:      sink,
		out:       buf,
		budget:    16,
		failReady: make(map[rcc.ClockID]bool),
	}
	return c, buf
}

// run executes a sequence of command lines and returns the combined
// output.
func run(t *testing.T, c *Console, buf *bytes.Buffer, lines ...string) string {
	t.Helper()
	for _, line := range lines {
		if quit := c.execute(line); quit {
			t.Fatalf("command %q requested exit", line)
		}
	}
	return buf.String()
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		want    rcc.ClockID
		wantErr bool
	}{
		{name: "msi", want: rcc.ClockMSI},
		{name: "HSE", want: rcc.ClockHSE},
		{name: "lsi", want: rcc.ClockLSI},
		{name: "lse", want: rcc.ClockLSE},
		{name: "pll", want: rcc.ClockPLL},
		{name: "sys", want: rcc.ClockSYS},
		{name: "sysclk", want: rcc.ClockSYS},
		{name: "hsi16", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseClock(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseClock(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseClock(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "msi", want: "CLOCK:MSI"},
		{name: "sys", want: "CLOCK:SYS"},
		{name: "ahb", want: "BUS:AHB"},
		{name: "APB1", want: "BUS:APB1"},
		{name: "apb2", want: "BUS:APB2"},
		{name: "pwr", want: "PERIPHERAL:PWR"},
		{name: "rtc", want: "PERIPHERAL:RTC"},
	}

	for _, tt := range tests {
		target, err := parseTarget(tt.name)
		if err != nil {
			t.Errorf("parseTarget(%q): %v", tt.name, err)
			continue
		}
		if target.String() != tt.want {
			t.Errorf("parseTarget(%q) = %s, want %s", tt.name, target, tt.want)
		}
	}

	if _, err := parseTarget("uart"); err == nil {
		t.Error("parseTarget(uart): expected error")
	}
}

func TestParseOnOff(t *testing.T) {
	if on, err := parseOnOff("on"); err != nil || !on {
		t.Errorf("parseOnOff(on) = %v, %v", on, err)
	}
	if on, err := parseOnOff("OFF"); err != nil || on {
		t.Errorf("parseOnOff(OFF) = %v, %v", on, err)
	}
	if _, err := parseOnOff("maybe"); err == nil {
		t.Error("parseOnOff(maybe): expected error")
	}
}

func TestParseUint32(t *testing.T) {
	if v, err := parseUint32("0x6"); err != nil || v != 6 {
		t.Errorf("parseUint32(0x6) = %d, %v", v, err)
	}
	if v, err := parseUint32("40"); err != nil || v != 40 {
		t.Errorf("parseUint32(40) = %d, %v", v, err)
	}
	if _, err := parseUint32("fast"); err == nil {
		t.Error("parseUint32(fast): expected error")
	}
}

func TestRegAddr(t *testing.T) {
	c, _ := newTestConsole(t)

	tests := []struct {
		name string
		want uint32
	}{
		{name: "cr", want: 0x40021000},
		{name: "cfgr", want: 0x40021008},
		{name: "bdcr", want: 0x40021090},
		{name: "pwr_cr1", want: 0x40007000},
		{name: "0x40021094", want: 0x40021094},
	}

	for _, tt := range tests {
		got, err := c.regAddr(tt.name)
		if err != nil {
			t.Errorf("regAddr(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("regAddr(%q) = %#08x, want %#08x", tt.name, got, tt.want)
		}
	}

	if _, err := c.regAddr("gpioa"); err == nil {
		t.Error("regAddr(gpioa): expected error")
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf, "frobnicate")
	if !strings.Contains(out, "Unknown command: frobnicate") {
		t.Errorf("missing unknown-command message, got %q", out)
	}
}

func TestExecuteQuit(t *testing.T) {
	c, buf := newTestConsole(t)

	for _, alias := range []string{"quit", "exit", "q"} {
		buf.Reset()
		if !c.execute(alias) {
			t.Errorf("%q should request exit", alias)
		}
		if !strings.Contains(buf.String(), "Exiting...") {
			t.Errorf("%q: missing exit message", alias)
		}
	}
}

func TestInitAndSelectSysclk(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf,
		"init msi",
		"sysclk msi",
	)

	if !strings.Contains(out, "MSI running at 4 MHz") {
		t.Errorf("missing MSI init output: %q", out)
	}
	if !strings.Contains(out, "Sysclk on MSI at 4 MHz") {
		t.Errorf("missing sysclk output: %q", out)
	}

	tracker := c.ctrl.Tracker()
	if got := tracker.ClockUsage(rcc.ClockMSI); got != 2 {
		t.Errorf("MSI usage = %d, want 2", got)
	}
	if got := tracker.ClockUsage(rcc.ClockSYS); got != 1 {
		t.Errorf("SYS usage = %d, want 1", got)
	}
}

func TestInitMSICustomRange(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf, "init msi 0x4")
	if !strings.Contains(out, "MSI running at 1 MHz") {
		t.Errorf("range 0x4 should give 1 MHz, got %q", out)
	}
}

func TestInitPLLAndSwitch(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf,
		"init msi",
		"init pll msi 1 40 2",
		"sysclk pll",
	)

	if !strings.Contains(out, "PLL running at 80 MHz") {
		t.Errorf("missing PLL output: %q", out)
	}
	if !strings.Contains(out, "Sysclk on PLL at 80 MHz") {
		t.Errorf("missing sysclk output: %q", out)
	}
}

func TestInitPLLRejectsBadConfig(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf,
		"init msi",
		"init pll msi 1 86 2", // 4 MHz * 86 / 2 = 172 MHz, over the limit
	)
	if !strings.Contains(out, "Error: ERROR") {
		t.Errorf("over-limit PLL config should fail: %q", out)
	}
	if got := c.ctrl.Tracker().ClockUsage(rcc.ClockPLL); got != 0 {
		t.Errorf("rejected PLL config left usage %d", got)
	}
}

func TestSecondSelectRefused(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf,
		"init msi",
		"sysclk msi",
		"init hse",
		"sysclk hse",
	)
	if !strings.Contains(out, "Error: ALREADY_ACQUIRED") {
		t.Errorf("re-select with SYS held should be refused: %q", out)
	}
}

func TestLSEAndRTCLifecycle(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf,
		"init msi",
		"sysclk msi",
		"acquire ahb",
		"acquire apb1",
		"init lse 1",
		"rtc on lse",
		"drive",
	)

	if !strings.Contains(out, "LSE running at 32.768 kHz (drive 1)") {
		t.Errorf("missing LSE output: %q", out)
	}
	if !strings.Contains(out, "RTC running from LSE at 32.768 kHz") {
		t.Errorf("missing RTC output: %q", out)
	}
	if !strings.Contains(out, "LSE drive: 1") {
		t.Errorf("missing drive readback: %q", out)
	}
	if !c.ctrl.RTCEnabled() {
		t.Error("RTC should be enabled")
	}

	// The transient PWR hold from the backup envelope must not linger.
	if got := c.ctrl.Tracker().PeripheralUsage(rcc.PeriphPWR); got != 0 {
		t.Errorf("PWR usage = %d after envelope, want 0", got)
	}

	// LSE is pinned by the RTC now; a release must be refused until the
	// RTC lets go.
	buf.Reset()
	out = run(t, c, buf, "deinit lse")
	if !strings.Contains(out, "Error: DEPENDENCIES_NOT_RELEASED") {
		t.Errorf("deinit of pinned LSE should be refused: %q", out)
	}

	buf.Reset()
	out = run(t, c, buf, "rtc off", "deinit lse")
	if !strings.Contains(out, "OK") {
		t.Errorf("teardown failed: %q", out)
	}
	if got := c.ctrl.Tracker().ClockUsage(rcc.ClockLSE); got != 0 {
		t.Errorf("LSE usage = %d after teardown, want 0", got)
	}
}

func TestInitLSEWithoutBusChainFails(t *testing.T) {
	c, buf := newTestConsole(t)

	// No sysclk, no buses: the backup envelope cannot bring PWR up.
	out := run(t, c, buf, "init lse")
	if !strings.Contains(out, "Error: DEPENDENT_CLOCK_NOT_CONFIGURED") {
		t.Errorf("expected dependency refusal, got %q", out)
	}
}

func TestChangeDrive(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf,
		"init msi",
		"sysclk msi",
		"acquire ahb",
		"acquire apb1",
		"init lse",
		"drive 2",
		"drive",
	)
	if !strings.Contains(out, "LSE drive: 2") {
		t.Errorf("drive change not visible: %q", out)
	}
}

func TestFaultReadyTimesOutInit(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf,
		"fault ready hse on",
		"init hse",
	)
	if !strings.Contains(out, "HSE will no longer report ready") {
		t.Errorf("missing fault arm message: %q", out)
	}
	if !strings.Contains(out, "Error: TIMEOUT") {
		t.Errorf("init under ready fault should time out: %q", out)
	}
	if got := c.ctrl.Tracker().ClockUsage(rcc.ClockHSE); got != 0 {
		t.Errorf("timed out init left HSE usage %d", got)
	}

	buf.Reset()
	out = run(t, c, buf,
		"fault ready hse off",
		"init hse",
	)
	if !strings.Contains(out, "HSE running at 8 MHz") {
		t.Errorf("init after fault clear failed: %q", out)
	}
}

func TestFaultReadyRejectsSys(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf, "fault ready sys on")
	if !strings.Contains(out, "use fault switch") {
		t.Errorf("sys ready fault should be rejected: %q", out)
	}
}

func TestFaultDisplay(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf, "fault")
	if !strings.Contains(out, "No faults armed") {
		t.Errorf("fresh console should report no faults: %q", out)
	}

	buf.Reset()
	out = run(t, c, buf,
		"fault ready lse on",
		"fault switch on",
		"fault",
	)
	if !strings.Contains(out, "ready fault: LSE") {
		t.Errorf("missing ready fault line: %q", out)
	}
	if !strings.Contains(out, "switch fault") {
		t.Errorf("missing switch fault line: %q", out)
	}
}

func TestStatusOutput(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf, "status")
	if !strings.Contains(out, "bench (STM32L476RG)") {
		t.Errorf("missing board line: %q", out)
	}
	// Out of reset the hardware runs on MSI, with nothing acquired.
	if !strings.Contains(out, "MSI at 4 MHz (usage 0)") {
		t.Errorf("missing sysclk line: %q", out)
	}
	if !strings.Contains(out, "RTC:          off") {
		t.Errorf("missing RTC line: %q", out)
	}
	if !strings.Contains(out, "Trace:        off") {
		t.Errorf("missing trace line: %q", out)
	}
	if !strings.Contains(out, "Poll budget:  16") {
		t.Errorf("missing budget line: %q", out)
	}
}

func TestTreeOutput(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf,
		"init msi",
		"sysclk msi",
		"tree",
	)
	if !strings.Contains(out, "SYSCLK <- MSI at 4 MHz (usage 1)") {
		t.Errorf("missing sysclk line: %q", out)
	}
	if !strings.Contains(out, "Oscillators:") {
		t.Errorf("missing oscillator section: %q", out)
	}
	if !strings.Contains(out, "RTC <- none") {
		t.Errorf("missing RTC line: %q", out)
	}
}

func TestUsageOutput(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf, "init msi", "sysclk msi", "usage")
	for _, want := range []string{"CLOCK:MSI", "CLOCK:SYS", "BUS:AHB", "PERIPHERAL:PWR"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage output missing %s: %q", want, out)
		}
	}
}

func TestAcquireRelease(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf,
		"init msi",
		"sysclk msi",
		"acquire ahb",
	)
	if !strings.Contains(out, "BUS:AHB usage now 1") {
		t.Errorf("missing acquire output: %q", out)
	}

	buf.Reset()
	out = run(t, c, buf, "release ahb")
	if !strings.Contains(out, "BUS:AHB usage now 0") {
		t.Errorf("missing release output: %q", out)
	}

	buf.Reset()
	out = run(t, c, buf, "release ahb")
	if !strings.Contains(out, "Error: ALREADY_RELEASED") {
		t.Errorf("double release should be refused: %q", out)
	}
}

func TestBudgetCommand(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf, "budget")
	if !strings.Contains(out, "Poll budget: 16") {
		t.Errorf("missing budget readback: %q", out)
	}

	buf.Reset()
	out = run(t, c, buf, "budget 32")
	if !strings.Contains(out, "Poll budget: 32") || c.budget != 32 {
		t.Errorf("budget not updated: %q (budget %d)", out, c.budget)
	}

	buf.Reset()
	out = run(t, c, buf, "budget 0")
	if !strings.Contains(out, "Error: budget must not be zero") {
		t.Errorf("zero budget should be rejected: %q", out)
	}
	if c.budget != 32 {
		t.Errorf("rejected budget changed the value to %d", c.budget)
	}
}

func TestPeekPoke(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf, "peek cr")
	if !strings.Contains(out, "0x40021000 = ") {
		t.Errorf("missing peek output: %q", out)
	}

	before := c.dev.Tick()
	run(t, c, buf, "peek cfgr")
	if c.dev.Tick() != before {
		t.Error("peek must not advance the simulation")
	}

	buf.Reset()
	out = run(t, c, buf, "poke 0x40021094 0x1")
	if strings.Contains(out, "Error") {
		t.Errorf("poke failed: %q", out)
	}
	if got := c.dev.Peek(0x40021094); got != 0x1 {
		t.Errorf("poked value = %#x, want 0x1", got)
	}
}

func TestResetCommand(t *testing.T) {
	c, buf := newTestConsole(t)

	run(t, c, buf, "init msi", "sysclk msi")
	if got := c.ctrl.Tracker().ClockUsage(rcc.ClockMSI); got == 0 {
		t.Fatal("setup did not acquire MSI")
	}

	buf.Reset()
	out := run(t, c, buf, "reset")
	if !strings.Contains(out, "reset to power-on state") {
		t.Errorf("missing reset message: %q", out)
	}
	if got := c.ctrl.Tracker().ClockUsage(rcc.ClockMSI); got != 0 {
		t.Errorf("MSI usage = %d after reset, want 0", got)
	}
	if got := c.ctrl.Tracker().ClockUsage(rcc.ClockSYS); got != 0 {
		t.Errorf("SYS usage = %d after reset, want 0", got)
	}
}

func TestTraceRoundTrip(t *testing.T) {
	c, buf := newTestConsole(t)
	path := filepath.Join(t.TempDir(), "session.ctrace")

	out := run(t, c, buf,
		"trace on "+path,
		"init msi",
		"trace off",
	)
	if !strings.Contains(out, "Tracing to "+path) {
		t.Errorf("missing trace-on message: %q", out)
	}
	if !strings.Contains(out, "Trace written to "+path) {
		t.Errorf("missing trace-off message: %q", out)
	}

	reader, err := trace.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open trace: %v", err)
	}
	defer reader.Close()

	found := false
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if event.Op == trace.OpInit && event.Target == "CLOCK:MSI" {
			found = true
		}
	}
	if !found {
		t.Error("trace file is missing the MSI init event")
	}
}

func TestTraceOffWhenIdle(t *testing.T) {
	c, buf := newTestConsole(t)

	out := run(t, c, buf, "trace off", "trace")
	if !strings.Contains(out, "Tracing off") {
		t.Errorf("missing idle trace state: %q", out)
	}
}

func TestTraceOnReusesLastPath(t *testing.T) {
	c, buf := newTestConsole(t)
	path := filepath.Join(t.TempDir(), "again.ctrace")

	run(t, c, buf, "trace on "+path, "trace off")

	buf.Reset()
	out := run(t, c, buf, "trace on")
	if !strings.Contains(out, "Tracing to "+path) {
		t.Errorf("trace on should reuse the last path: %q", out)
	}
	run(t, c, buf, "trace off")
}

func TestUsageLinesOnBadArgs(t *testing.T) {
	c, buf := newTestConsole(t)

	tests := []struct {
		line string
		want string
	}{
		{line: "init", want: "Usage: init"},
		{line: "deinit", want: "Usage: deinit"},
		{line: "sysclk", want: "Usage: sysclk"},
		{line: "rtc", want: "Usage: rtc"},
		{line: "acquire", want: "Usage: acquire"},
		{line: "release", want: "Usage: release"},
		{line: "fault bogus", want: "Usage: fault"},
		{line: "peek", want: "Usage: peek"},
		{line: "poke cr", want: "Usage: poke"},
		{line: "init pll msi", want: "Usage: init pll"},
	}

	for _, tt := range tests {
		buf.Reset()
		out := run(t, c, buf, tt.line)
		if !strings.Contains(out, tt.want) {
			t.Errorf("%q: expected %q in output, got %q", tt.line, tt.want, out)
		}
	}
}
