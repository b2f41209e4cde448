package rcc_test

import (
	"testing"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/internal/simrcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
)

func TestInitMSI(t *testing.T) {
	c, dev := newSimController()

	if st := c.InitMSI(0x8, pollBudget); st != status.OK {
		t.Fatalf("InitMSI = %v, want OK", st)
	}
	if got := c.Tracker().ClockUsage(rcc.ClockMSI); got != 1 {
		t.Errorf("MSI usage = %d, want 1", got)
	}
	if got := c.MSIFrequency(); got != 16*rcc.MHz {
		t.Errorf("MSIFrequency = %d, want 16 MHz", got)
	}

	cr := dev.Peek(rcc.RCC_BASE + rcc.RCC_CR)
	if cr&rcc.RCC_CR_MSION == 0 || cr&rcc.RCC_CR_MSIRDY == 0 {
		t.Errorf("CR = %#x, MSI should be on and ready", cr)
	}
	if cr&rcc.RCC_CR_MSIRGSEL == 0 {
		t.Errorf("CR = %#x, MSIRGSEL should be set after a range program", cr)
	}
	if got := cr >> rcc.RCC_CR_MSIRANGE_Pos & rcc.RCC_CR_MSIRANGE_Msk; got != 0x8 {
		t.Errorf("MSIRANGE = %#x, want 0x8", got)
	}
}

func TestInitMSIInvalidRange(t *testing.T) {
	c, _ := newSimController()

	if st := c.InitMSI(0xC, pollBudget); st != status.InvalidParam {
		t.Fatalf("InitMSI(0xC) = %v, want INVALID_PARAM", st)
	}
	if got := c.Tracker().ClockUsage(rcc.ClockMSI); got != 0 {
		t.Errorf("MSI usage after rejection = %d, want 0", got)
	}
}

func TestInitMSITwice(t *testing.T) {
	c, _ := newSimController()

	if st := c.InitMSI(0x6, pollBudget); st != status.OK {
		t.Fatalf("first InitMSI = %v", st)
	}
	if st := c.InitMSI(0x6, pollBudget); st != status.AlreadyAcquired {
		t.Fatalf("second InitMSI = %v, want ALREADY_ACQUIRED", st)
	}
	if got := c.Tracker().ClockUsage(rcc.ClockMSI); got != 1 {
		t.Errorf("MSI usage = %d, want 1", got)
	}
}

func TestInitMSITimeoutRollsBack(t *testing.T) {
	c, _ := newSimController(simrcc.WithFailReady(rcc.ClockMSI))

	if st := c.InitMSI(0x6, 8); st != status.Timeout {
		t.Fatalf("InitMSI with ready fault = %v, want TIMEOUT", st)
	}
	if got := c.Tracker().ClockUsage(rcc.ClockMSI); got != 0 {
		t.Errorf("MSI usage after timeout = %d, want 0", got)
	}
}

func TestDeinitMSI(t *testing.T) {
	c, dev := newSimController()

	if st := c.InitMSI(0x6, pollBudget); st != status.OK {
		t.Fatalf("InitMSI = %v", st)
	}
	if st := c.DeinitMSI(pollBudget); st != status.OK {
		t.Fatalf("DeinitMSI = %v, want OK", st)
	}
	if got := c.Tracker().ClockUsage(rcc.ClockMSI); got != 0 {
		t.Errorf("MSI usage = %d, want 0", got)
	}

	cr := dev.Peek(rcc.RCC_BASE + rcc.RCC_CR)
	if cr&rcc.RCC_CR_MSION != 0 || cr&rcc.RCC_CR_MSIRDY != 0 {
		t.Errorf("CR = %#x, MSI should be off", cr)
	}
}

func TestDeinitMSIRefusedWhileDependentsHold(t *testing.T) {
	c, dev := newSimController()
	bringUp(t, c)

	if st := c.DeinitMSI(pollBudget); st != status.DependenciesNotReleased {
		t.Fatalf("DeinitMSI under SYS = %v, want DEPENDENCIES_NOT_RELEASED", st)
	}

	// Refusal must leave the oscillator running.
	cr := dev.Peek(rcc.RCC_BASE + rcc.RCC_CR)
	if cr&rcc.RCC_CR_MSION == 0 {
		t.Errorf("CR = %#x, MSI must stay on after a refused deinit", cr)
	}
	if got := c.Tracker().ClockUsage(rcc.ClockMSI); got != 2 {
		t.Errorf("MSI usage = %d, want 2", got)
	}
}

func TestInitHSE(t *testing.T) {
	c, dev := newSimController()

	if st := c.InitHSE(true, pollBudget); st != status.OK {
		t.Fatalf("InitHSE = %v, want OK", st)
	}
	cr := dev.Peek(rcc.RCC_BASE + rcc.RCC_CR)
	if cr&rcc.RCC_CR_HSEON == 0 || cr&rcc.RCC_CR_HSERDY == 0 {
		t.Errorf("CR = %#x, HSE should be on and ready", cr)
	}
	if cr&rcc.RCC_CR_HSEBYP == 0 {
		t.Errorf("CR = %#x, bypass requested but HSEBYP clear", cr)
	}

	if st := c.DeinitHSE(pollBudget); st != status.OK {
		t.Fatalf("DeinitHSE = %v, want OK", st)
	}
	if got := dev.Peek(rcc.RCC_BASE+rcc.RCC_CR) & rcc.RCC_CR_HSEON; got != 0 {
		t.Errorf("HSEON still set after deinit")
	}
}

func TestInitHSEWithoutOscillator(t *testing.T) {
	dev := simrcc.NewDevice()
	c := rcc.NewController(dev, rcc.Config{LSEFitted: true, LSEHz: 32768, LSIHz: 32000})

	if st := c.InitHSE(false, pollBudget); st != status.ClockError {
		t.Fatalf("InitHSE on HSE-less board = %v, want CLOCK_ERROR", st)
	}
	if got := c.Tracker().ClockUsage(rcc.ClockHSE); got != 0 {
		t.Errorf("HSE usage = %d, want 0", got)
	}
}

func TestInitLSI(t *testing.T) {
	c, dev := newSimController()

	if st := c.InitLSI(pollBudget); st != status.OK {
		t.Fatalf("InitLSI = %v, want OK", st)
	}
	csr := dev.Peek(rcc.RCC_BASE + rcc.RCC_CSR)
	if csr&rcc.RCC_CSR_LSION == 0 || csr&rcc.RCC_CSR_LSIRDY == 0 {
		t.Errorf("CSR = %#x, LSI should be on and ready", csr)
	}

	if st := c.DeinitLSI(pollBudget); st != status.OK {
		t.Fatalf("DeinitLSI = %v, want OK", st)
	}
}

func TestInitLSE(t *testing.T) {
	c, dev := newSimController()
	bringUp(t, c)
	openBackupDomain(t, c)

	if st := c.InitLSE(2, pollBudget); st != status.OK {
		t.Fatalf("InitLSE = %v, want OK", st)
	}
	bdcr := dev.Peek(rcc.RCC_BASE + rcc.RCC_BDCR)
	if bdcr&rcc.RCC_BDCR_LSEON == 0 || bdcr&rcc.RCC_BDCR_LSERDY == 0 {
		t.Errorf("BDCR = %#x, LSE should be on and ready", bdcr)
	}
	if got := c.LSEDrive(); got != 2 {
		t.Errorf("LSEDrive = %d, want 2", got)
	}
}

func TestInitLSENotFitted(t *testing.T) {
	dev := simrcc.NewDevice()
	c := rcc.NewController(dev, rcc.Config{HSEHz: 8 * rcc.MHz})

	if st := c.InitLSE(0, pollBudget); st != status.ClockError {
		t.Fatalf("InitLSE without crystal = %v, want CLOCK_ERROR", st)
	}
}

func TestInitLSEInvalidDrive(t *testing.T) {
	c, _ := newSimController()

	if st := c.InitLSE(4, pollBudget); st != status.InvalidParam {
		t.Fatalf("InitLSE(4) = %v, want INVALID_PARAM", st)
	}
}

func TestInitLSEWithoutBackupAccess(t *testing.T) {
	c, _ := newSimController()
	bringUp(t, c)

	// DBP closed: the enable writes never land and the ready poll times
	// out; the acquisition must be rolled back.
	if st := c.InitLSE(1, 8); st != status.Timeout {
		t.Fatalf("InitLSE without DBP = %v, want TIMEOUT", st)
	}
	if got := c.Tracker().ClockUsage(rcc.ClockLSE); got != 0 {
		t.Errorf("LSE usage = %d, want 0", got)
	}
}

func TestChangeLSEDriveLowerAppliesLive(t *testing.T) {
	c, dev := newSimController()
	bringUp(t, c)
	openBackupDomain(t, c)
	if st := c.InitLSE(3, pollBudget); st != status.OK {
		t.Fatalf("InitLSE = %v", st)
	}

	if st := c.ChangeLSEDrive(1, pollBudget); st != status.OK {
		t.Fatalf("ChangeLSEDrive(1) = %v, want OK", st)
	}
	if got := c.LSEDrive(); got != 1 {
		t.Errorf("LSEDrive = %d, want 1", got)
	}

	// A lowering keeps the oscillator running: ready never dropped.
	bdcr := dev.Peek(rcc.RCC_BASE + rcc.RCC_BDCR)
	if bdcr&rcc.RCC_BDCR_LSERDY == 0 {
		t.Errorf("BDCR = %#x, LSE should have stayed ready through a live change", bdcr)
	}
}

func TestChangeLSEDriveHigherCycles(t *testing.T) {
	c, dev := newSimController()
	bringUp(t, c)
	openBackupDomain(t, c)
	if st := c.InitLSE(0, pollBudget); st != status.OK {
		t.Fatalf("InitLSE = %v", st)
	}

	if st := c.ChangeLSEDrive(3, pollBudget); st != status.OK {
		t.Fatalf("ChangeLSEDrive(3) = %v, want OK", st)
	}
	if got := c.LSEDrive(); got != 3 {
		t.Errorf("LSEDrive = %d, want 3", got)
	}
	bdcr := dev.Peek(rcc.RCC_BASE + rcc.RCC_BDCR)
	if bdcr&rcc.RCC_BDCR_LSEON == 0 || bdcr&rcc.RCC_BDCR_LSERDY == 0 {
		t.Errorf("BDCR = %#x, LSE should be back on and ready after the cycle", bdcr)
	}

	// The tracker is never involved in drive changes.
	if got := c.Tracker().ClockUsage(rcc.ClockLSE); got != 1 {
		t.Errorf("LSE usage = %d, want 1", got)
	}
}

func TestChangeLSEDriveNoChange(t *testing.T) {
	c, _ := newSimController()
	bringUp(t, c)
	openBackupDomain(t, c)
	if st := c.InitLSE(2, pollBudget); st != status.OK {
		t.Fatalf("InitLSE = %v", st)
	}

	if st := c.ChangeLSEDrive(2, pollBudget); st != status.OK {
		t.Fatalf("ChangeLSEDrive(equal) = %v, want OK", st)
	}
	if st := c.ChangeLSEDrive(5, pollBudget); st != status.InvalidParam {
		t.Fatalf("ChangeLSEDrive(5) = %v, want INVALID_PARAM", st)
	}
}
