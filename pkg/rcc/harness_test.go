package rcc_test

import (
	"testing"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/internal/simrcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// pollBudget is generous against the simulator's default latencies, so
// only injected faults can exhaust it.
const pollBudget = 32

// testBoard mirrors the weathernode-v1 profile: 8 MHz TCXO on HSE,
// 32.768 kHz crystal fitted.
var testBoard = rcc.Config{
	HSEHz:     8 * rcc.MHz,
	HSEBypass: true,
	LSEFitted: true,
	LSEHz:     32768,
	LSIHz:     32000,
}

// eventRecorder captures trace events for assertions.
type eventRecorder struct {
	events []trace.Event
}

func (r *eventRecorder) Log(e trace.Event) {
	r.events = append(r.events, e)
}

// newSimController returns a controller driving a freshly reset simulated
// device.
func newSimController(opts ...simrcc.Option) (*rcc.Controller, *simrcc.Device) {
	dev := simrcc.NewDevice(opts...)
	return rcc.NewController(dev, testBoard), dev
}

// newTracedSimController additionally wires an event recorder.
func newTracedSimController(opts ...simrcc.Option) (*rcc.Controller, *simrcc.Device, *eventRecorder) {
	dev := simrcc.NewDevice(opts...)
	rec := &eventRecorder{}
	return rcc.NewController(dev, testBoard, rcc.WithLogger(rec)), dev, rec
}

// bringUp walks the standard boot chain: MSI at 4 MHz, system clock on
// MSI, AHB and APB1 gated on.
func bringUp(t *testing.T, c *rcc.Controller) {
	t.Helper()
	steps := []struct {
		name string
		run  func() status.Code
	}{
		{"InitMSI", func() status.Code { return c.InitMSI(0x6, pollBudget) }},
		{"SelectSysclkSource", func() status.Code { return c.SelectSysclkSource(rcc.ClockMSI, pollBudget) }},
		{"EnableBusClock(AHB)", func() status.Code { return c.EnableBusClock(rcc.BusAHB) }},
		{"EnableBusClock(APB1)", func() status.Code { return c.EnableBusClock(rcc.BusAPB1) }},
	}
	for _, step := range steps {
		if st := step.run(); st != status.OK {
			t.Fatalf("%s = %v, want OK", step.name, st)
		}
	}
}

// openBackupDomain enables the PWR block and opens backup domain write
// access. Callers must have APB1 up.
func openBackupDomain(t *testing.T, c *rcc.Controller) {
	t.Helper()
	if st := c.EnablePWR(); st != status.OK {
		t.Fatalf("EnablePWR = %v, want OK", st)
	}
	c.Registers().PWRCR1().SetBits(rcc.PWR_CR1_DBP)
}
