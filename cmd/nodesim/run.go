package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/internal/simrcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/trace"
)

// runner drives a controller through a scenario's phases. Every phase
// boundary is marked with a PHASE trace event so the resulting file reads
// as a timeline of the node's duty cycle.
type runner struct {
	ctrl       *rcc.Controller
	dev        *simrcc.Device
	logger     trace.Logger
	budget     uint32
	hseBypass  bool
	msiDefault uint32
}

// Run executes the scenario: the phase list, repeated Cycles times, then
// a teardown of the system clock chain. The RTC and its source survive
// shutdown - on the real node they run from the backup domain across
// sleep.
func (r *runner) Run(ctx context.Context, s *Scenario) error {
	if s.Fault != nil && s.Fault.AtCycle == 0 {
		r.armFault(s.Fault)
	}

	for cycle := 1; cycle <= s.Cycles; cycle++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Fault != nil && s.Fault.AtCycle == cycle {
			r.armFault(s.Fault)
		}

		log.Printf("cycle %d/%d", cycle, s.Cycles)
		for i := range s.Phases {
			if err := r.runPhase(ctx, &s.Phases[i]); err != nil {
				return fmt.Errorf("cycle %d: %w", cycle, err)
			}
		}
	}

	if err := r.teardownRoot(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	r.phaseEvent("shutdown")
	return nil
}

// armFault applies a scenario fault to the simulated device.
func (r *runner) armFault(f *Fault) {
	if f.Clock != "" {
		id, _ := clockFromName(f.Clock)
		r.dev.SetFailReady(id, true)
		log.Printf("fault armed: %s ready flag held low", id)
	}
	if f.StuckSwitch {
		r.dev.SetStuckSwitch(true)
		log.Printf("fault armed: sysclk switch stuck")
	}
}

func (r *runner) runPhase(ctx context.Context, p *Phase) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.Sysclk != "" {
		if err := r.switchRoot(p); err != nil {
			return fmt.Errorf("phase %s: %w", p.Name, err)
		}
	}
	if err := r.applyPrescalers(p); err != nil {
		return fmt.Errorf("phase %s: %w", p.Name, err)
	}
	if p.RTC != "" {
		if err := r.applyRTC(p); err != nil {
			return fmt.Errorf("phase %s: %w", p.Name, err)
		}
	}
	if p.LSEDrive != nil {
		if err := r.applyLSEDrive(*p.LSEDrive); err != nil {
			return fmt.Errorf("phase %s: %w", p.Name, err)
		}
	}

	r.phaseEvent(p.Name)

	src, known := r.ctrl.SysclkSource()
	if known {
		log.Printf("  phase %-10s sysclk %s at %d Hz", p.Name, src, r.ctrl.SysclkFrequency())
	} else {
		log.Printf("  phase %-10s", p.Name)
	}

	if p.HoldMS > 0 {
		if err := dwell(ctx, time.Duration(p.HoldMS)*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// switchRoot moves the system clock to the phase's source. The running
// consumer chain cannot be re-pointed in place: buses come down, SYS is
// deselected and the old root deinited before the new root comes up. A
// phase that already runs from the requested root (at the requested MSI
// range) is a no-op.
func (r *runner) switchRoot(p *Phase) error {
	want, _ := clockFromName(p.Sysclk)
	t := r.ctrl.Tracker()

	if t.ClockUsage(rcc.ClockSYS) > 0 {
		cur, known := r.ctrl.SysclkSource()
		if known && cur == want && !r.rerangeNeeded(p, want) {
			return nil
		}
	}

	if err := r.teardownRoot(); err != nil {
		return err
	}
	if err := r.buildRoot(p, want); err != nil {
		return err
	}

	for _, b := range []rcc.BusID{rcc.BusAHB, rcc.BusAPB1, rcc.BusAPB2} {
		if st := r.ctrl.EnableBusClock(b); st.IsError() {
			return fmt.Errorf("enable %s: %v", b, st)
		}
	}
	return nil
}

// rerangeNeeded reports whether an MSI phase asks for a different range
// than the oscillator currently runs at.
func (r *runner) rerangeNeeded(p *Phase, want rcc.ClockID) bool {
	if want != rcc.ClockMSI || p.MSIRange == nil {
		return false
	}
	return r.ctrl.MSIFrequency() != rcc.MSIRangeFrequency(*p.MSIRange)
}

// teardownRoot winds the system clock chain down: peripherals and buses
// released, SYS deselected, the PLL and any oscillator holding only its
// own acquire deinited. Oscillators pinned by the RTC stay up.
func (r *runner) teardownRoot() error {
	t := r.ctrl.Tracker()

	if t.PeripheralUsage(rcc.PeriphPWR) > 0 {
		if st := r.ctrl.DisablePWR(); st.IsError() {
			return fmt.Errorf("disable pwr: %v", st)
		}
	}
	for _, b := range []rcc.BusID{rcc.BusAPB2, rcc.BusAPB1, rcc.BusAHB} {
		if t.BusUsage(b) > 0 {
			if st := r.ctrl.DisableBusClock(b); st.IsError() {
				return fmt.Errorf("release %s: %v", b, st)
			}
		}
	}
	if t.ClockUsage(rcc.ClockSYS) > 0 {
		if st := r.ctrl.DeselectSysclk(); st.IsError() {
			return fmt.Errorf("deselect sysclk: %v", st)
		}
	}
	if t.ClockUsage(rcc.ClockPLL) > 0 {
		if st := r.ctrl.DeinitPLL(r.budget); st.IsError() {
			return fmt.Errorf("deinit pll: %v", st)
		}
	}
	if t.ClockUsage(rcc.ClockMSI) == 1 {
		if st := r.ctrl.DeinitMSI(r.budget); st.IsError() {
			return fmt.Errorf("deinit msi: %v", st)
		}
	}
	if t.ClockUsage(rcc.ClockHSE) == 1 {
		if st := r.ctrl.DeinitHSE(r.budget); st.IsError() {
			return fmt.Errorf("deinit hse: %v", st)
		}
	}
	return nil
}

// buildRoot brings up the phase's root oscillator chain and switches the
// system clock onto it.
func (r *runner) buildRoot(p *Phase, want rcc.ClockID) error {
	t := r.ctrl.Tracker()

	switch want {
	case rcc.ClockMSI:
		if err := r.ensureMSI(p); err != nil {
			return err
		}
	case rcc.ClockHSE:
		if t.ClockUsage(rcc.ClockHSE) == 0 {
			if st := r.ctrl.InitHSE(r.hseBypass, r.budget); st.IsError() {
				return fmt.Errorf("init hse: %v", st)
			}
		}
	case rcc.ClockPLL:
		src, _ := clockFromName(p.PLL.Source)
		if src == rcc.ClockMSI {
			if err := r.ensureMSI(p); err != nil {
				return err
			}
		} else if t.ClockUsage(rcc.ClockHSE) == 0 {
			if st := r.ctrl.InitHSE(r.hseBypass, r.budget); st.IsError() {
				return fmt.Errorf("init hse: %v", st)
			}
		}
		cfg := rcc.PLLConfig{Source: src, M: p.PLL.M, N: p.PLL.N, R: p.PLL.R}
		if st := r.ctrl.InitPLL(cfg, r.budget); st.IsError() {
			return fmt.Errorf("init pll: %v", st)
		}
	}

	if st := r.ctrl.SelectSysclkSource(want, r.budget); st.IsError() {
		return fmt.Errorf("select %s: %v", want, st)
	}
	return nil
}

// ensureMSI brings the MSI oscillator up at the phase's range, or the
// board default when the phase does not name one.
func (r *runner) ensureMSI(p *Phase) error {
	rangeCode := r.msiDefault
	if p.MSIRange != nil {
		rangeCode = *p.MSIRange
	}

	if r.ctrl.Tracker().ClockUsage(rcc.ClockMSI) > 0 {
		if r.ctrl.MSIFrequency() != rcc.MSIRangeFrequency(rangeCode) {
			return fmt.Errorf("msi held at %d Hz, cannot retune", r.ctrl.MSIFrequency())
		}
		return nil
	}
	if st := r.ctrl.InitMSI(rangeCode, r.budget); st.IsError() {
		return fmt.Errorf("init msi: %v", st)
	}
	return nil
}

func (r *runner) applyPrescalers(p *Phase) error {
	steps := []struct {
		name string
		div  uint32
		set  func(uint32) status.Code
	}{
		{"ahb", p.AHBDiv, r.ctrl.SetAHBPrescaler},
		{"apb1", p.APB1Div, r.ctrl.SetAPB1Prescaler},
		{"apb2", p.APB2Div, r.ctrl.SetAPB2Prescaler},
	}
	for _, s := range steps {
		if s.div == 0 {
			continue
		}
		if st := s.set(s.div); st.IsError() {
			return fmt.Errorf("%s prescaler /%d: %v", s.name, s.div, st)
		}
	}
	return nil
}

// applyRTC executes a phase's RTC directive. Switching the RTC off also
// winds down its source oscillator when nothing else holds it.
func (r *runner) applyRTC(p *Phase) error {
	t := r.ctrl.Tracker()
	rtcOn := t.PeripheralUsage(rcc.PeriphRTC) > 0

	if strings.EqualFold(p.RTC, "off") {
		if !rtcOn {
			return nil
		}
		src, srcSet := r.ctrl.RTCSource()
		if st := r.ctrl.DeinitRTC(); st.IsError() {
			return fmt.Errorf("rtc off: %v", st)
		}
		if srcSet {
			return r.releaseRTCSource(src)
		}
		return nil
	}

	want, _ := clockFromName(p.RTC)
	if rtcOn {
		src, srcSet := r.ctrl.RTCSource()
		if srcSet && src == want {
			return nil
		}
		if st := r.ctrl.DeinitRTC(); st.IsError() {
			return fmt.Errorf("rtc reselect: %v", st)
		}
		if srcSet {
			if err := r.releaseRTCSource(src); err != nil {
				return err
			}
		}
	}

	switch want {
	case rcc.ClockLSE:
		if t.ClockUsage(rcc.ClockLSE) == 0 {
			var drive uint32
			if p.LSEDrive != nil {
				drive = *p.LSEDrive
			}
			err := r.withBackupAccess(func() error {
				if st := r.ctrl.InitLSE(drive, r.budget); st.IsError() {
					return fmt.Errorf("init lse: %v", st)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	case rcc.ClockLSI:
		if t.ClockUsage(rcc.ClockLSI) == 0 {
			if st := r.ctrl.InitLSI(r.budget); st.IsError() {
				return fmt.Errorf("init lsi: %v", st)
			}
		}
	case rcc.ClockHSE:
		if t.ClockUsage(rcc.ClockHSE) == 0 {
			if st := r.ctrl.InitHSE(r.hseBypass, r.budget); st.IsError() {
				return fmt.Errorf("init hse: %v", st)
			}
		}
	}

	if st := r.ctrl.InitRTC(want); st.IsError() {
		return fmt.Errorf("init rtc: %v", st)
	}
	return nil
}

// releaseRTCSource deinits a former RTC source clock once the RTC no
// longer pins it. Sources still held elsewhere (HSE doubling as sysclk)
// are left running.
func (r *runner) releaseRTCSource(src rcc.ClockID) error {
	if r.ctrl.Tracker().ClockUsage(src) != 1 {
		return nil
	}
	switch src {
	case rcc.ClockLSE:
		return r.withBackupAccess(func() error {
			if st := r.ctrl.DeinitLSE(r.budget); st.IsError() {
				return fmt.Errorf("deinit lse: %v", st)
			}
			return nil
		})
	case rcc.ClockLSI:
		if st := r.ctrl.DeinitLSI(r.budget); st.IsError() {
			return fmt.Errorf("deinit lsi: %v", st)
		}
	case rcc.ClockHSE:
		if st := r.ctrl.DeinitHSE(r.budget); st.IsError() {
			return fmt.Errorf("deinit hse: %v", st)
		}
	}
	return nil
}

// applyLSEDrive adjusts the crystal drive strength of a running LSE. When
// the LSE is down the phase's drive applies at the next init instead.
func (r *runner) applyLSEDrive(drive uint32) error {
	if r.ctrl.Tracker().ClockUsage(rcc.ClockLSE) == 0 {
		return nil
	}
	if r.ctrl.LSEDrive() == drive {
		return nil
	}
	return r.withBackupAccess(func() error {
		if st := r.ctrl.ChangeLSEDrive(drive, r.budget); st.IsError() {
			return fmt.Errorf("lse drive %d: %v", drive, st)
		}
		return nil
	})
}

// withBackupAccess runs fn with the PWR block up and backup domain write
// access open, restoring both afterwards.
func (r *runner) withBackupAccess(fn func() error) error {
	if st := r.ctrl.EnablePWR(); st.IsError() {
		return fmt.Errorf("enable pwr: %v", st)
	}
	pwr := r.ctrl.Registers().PWRCR1()
	pwr.SetBits(rcc.PWR_CR1_DBP)

	err := fn()

	pwr.ClearBits(rcc.PWR_CR1_DBP)
	if st := r.ctrl.DisablePWR(); st.IsError() && err == nil {
		err = fmt.Errorf("disable pwr: %v", st)
	}
	return err
}

// phaseEvent marks a phase boundary in the trace.
func (r *runner) phaseEvent(detail string) {
	r.logger.Log(trace.Event{
		Timestamp: time.Now(),
		Op:        trace.OpPhase,
		Target:    "NODE",
		Status:    uint8(status.OK),
		FreqHz:    r.ctrl.SysclkFrequency(),
		Detail:    detail,
	})
}

// dwell sleeps for the phase's hold time, giving up early on
// cancellation.
func dwell(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
