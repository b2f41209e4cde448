package simrcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
)

const (
	crAddr    = rcc.RCC_BASE + rcc.RCC_CR
	cfgrAddr  = rcc.RCC_BASE + rcc.RCC_CFGR
	bdcrAddr  = rcc.RCC_BASE + rcc.RCC_BDCR
	apb1Addr  = rcc.RCC_BASE + rcc.RCC_APB1ENR1
	pwrC1Addr = rcc.PWR_BASE + rcc.PWR_CR1
)

// pollFor reads addr until mask matches want or the read budget runs out.
func pollFor(d *Device, addr, mask uint32, want bool, reads int) bool {
	for i := 0; i < reads; i++ {
		if d.Read32(addr)&mask != 0 == want {
			return true
		}
	}
	return false
}

func TestResetState(t *testing.T) {
	d := NewDevice()

	cr := d.Peek(crAddr)
	assert.NotZero(t, cr&rcc.RCC_CR_MSION, "MSI should be on after reset")
	assert.NotZero(t, cr&rcc.RCC_CR_MSIRDY, "MSI should be ready after reset")
	assert.Equal(t, uint32(0x6), cr>>rcc.RCC_CR_MSIRANGE_Pos&rcc.RCC_CR_MSIRANGE_Msk)

	cfgr := d.Peek(cfgrAddr)
	assert.Equal(t, rcc.RCC_CFGR_SWS_MSI, cfgr>>rcc.RCC_CFGR_SWS_Pos&rcc.RCC_CFGR_SWS_Msk)

	assert.Equal(t, uint32(0x1), d.Peek(pwrC1Addr)>>rcc.PWR_CR1_VOS_Pos&rcc.PWR_CR1_VOS_Msk)
	assert.Equal(t, uint64(0), d.Tick())
}

func TestReadyFollowsEnable(t *testing.T) {
	d := NewDevice(WithReadyLatency(3))

	cr := d.Read32(crAddr)
	require.Zero(t, cr&rcc.RCC_CR_HSERDY)
	d.Write32(crAddr, cr|rcc.RCC_CR_HSEON)

	// Not ready on the very next read.
	assert.Zero(t, d.Read32(crAddr)&rcc.RCC_CR_HSERDY)
	assert.True(t, pollFor(d, crAddr, rcc.RCC_CR_HSERDY, true, 5))

	// Disabling drops ready after the same latency.
	cr = d.Read32(crAddr)
	d.Write32(crAddr, cr&^rcc.RCC_CR_HSEON)
	assert.True(t, pollFor(d, crAddr, rcc.RCC_CR_HSERDY, false, 5))
}

func TestFailReady(t *testing.T) {
	d := NewDevice(WithFailReady(rcc.ClockHSE))

	cr := d.Read32(crAddr)
	d.Write32(crAddr, cr|rcc.RCC_CR_HSEON)
	assert.False(t, pollFor(d, crAddr, rcc.RCC_CR_HSERDY, true, 20))

	// Clearing the fault lets the pending transition settle.
	d.SetFailReady(rcc.ClockHSE, false)
	assert.True(t, pollFor(d, crAddr, rcc.RCC_CR_HSERDY, true, 5))
}

func TestReadyBitsNotSoftwareWritable(t *testing.T) {
	d := NewDevice()

	cr := d.Read32(crAddr)
	d.Write32(crAddr, cr&^rcc.RCC_CR_MSIRDY)
	assert.NotZero(t, d.Peek(crAddr)&rcc.RCC_CR_MSIRDY, "MSIRDY write should be ignored")
	assert.NotZero(t, d.Peek(crAddr)&rcc.RCC_CR_MSION, "MSION should be untouched")
}

func TestSwitchFollowsCommandedSource(t *testing.T) {
	d := NewDevice(WithReadyLatency(2), WithSwitchLatency(2))

	cr := d.Read32(crAddr)
	d.Write32(crAddr, cr|rcc.RCC_CR_HSEON)
	require.True(t, pollFor(d, crAddr, rcc.RCC_CR_HSERDY, true, 5))

	cfgr := d.Read32(cfgrAddr)
	d.Write32(cfgrAddr, cfgr|rcc.RCC_CFGR_SW_HSE<<rcc.RCC_CFGR_SW_Pos)

	swsIs := func(want uint32) bool {
		for i := 0; i < 10; i++ {
			sws := d.Read32(cfgrAddr) >> rcc.RCC_CFGR_SWS_Pos & rcc.RCC_CFGR_SWS_Msk
			if sws == want {
				return true
			}
		}
		return false
	}
	assert.True(t, swsIs(rcc.RCC_CFGR_SW_HSE))
}

func TestSwitchWaitsForSourceReady(t *testing.T) {
	d := NewDevice(WithReadyLatency(50), WithSwitchLatency(1))

	cr := d.Read32(crAddr)
	d.Write32(crAddr, cr|rcc.RCC_CR_HSEON)

	// Commanding HSE before it is ready must not move the status field.
	cfgr := d.Read32(cfgrAddr)
	d.Write32(cfgrAddr, cfgr|rcc.RCC_CFGR_SW_HSE<<rcc.RCC_CFGR_SW_Pos)
	for i := 0; i < 10; i++ {
		sws := d.Read32(cfgrAddr) >> rcc.RCC_CFGR_SWS_Pos & rcc.RCC_CFGR_SWS_Msk
		assert.Equal(t, rcc.RCC_CFGR_SWS_MSI, sws)
	}
}

func TestStuckSwitch(t *testing.T) {
	d := NewDevice(WithReadyLatency(1), WithStuckSwitch())

	cr := d.Read32(crAddr)
	d.Write32(crAddr, cr|rcc.RCC_CR_HSEON)
	require.True(t, pollFor(d, crAddr, rcc.RCC_CR_HSERDY, true, 5))

	cfgr := d.Read32(cfgrAddr)
	d.Write32(cfgrAddr, cfgr|rcc.RCC_CFGR_SW_HSE<<rcc.RCC_CFGR_SW_Pos)
	for i := 0; i < 10; i++ {
		sws := d.Read32(cfgrAddr) >> rcc.RCC_CFGR_SWS_Pos & rcc.RCC_CFGR_SWS_Msk
		assert.Equal(t, rcc.RCC_CFGR_SWS_MSI, sws)
	}
}

func TestPWRWriteProtection(t *testing.T) {
	d := NewDevice()

	before := d.Peek(pwrC1Addr)
	d.Write32(pwrC1Addr, before|rcc.PWR_CR1_DBP)
	assert.Equal(t, before, d.Peek(pwrC1Addr), "PWR write without PWREN should be dropped")

	d.Write32(apb1Addr, rcc.RCC_APB1ENR1_PWREN)
	d.Write32(pwrC1Addr, before|rcc.PWR_CR1_DBP)
	assert.NotZero(t, d.Peek(pwrC1Addr)&rcc.PWR_CR1_DBP)
}

func TestBackupDomainProtection(t *testing.T) {
	d := NewDevice()

	d.Write32(bdcrAddr, rcc.RCC_BDCR_LSEON)
	assert.Zero(t, d.Peek(bdcrAddr), "backup domain write without DBP should be dropped")

	d.Write32(apb1Addr, rcc.RCC_APB1ENR1_PWREN)
	d.Write32(pwrC1Addr, d.Peek(pwrC1Addr)|rcc.PWR_CR1_DBP)
	d.Write32(bdcrAddr, rcc.RCC_BDCR_LSEON)
	assert.NotZero(t, d.Peek(bdcrAddr)&rcc.RCC_BDCR_LSEON)
}

func TestTickCountsBusAccesses(t *testing.T) {
	d := NewDevice()

	d.Read32(crAddr)
	d.Read32(crAddr)
	d.Write32(cfgrAddr, 0)
	assert.Equal(t, uint64(3), d.Tick())

	// Peek and Poke stay off the bus.
	d.Peek(crAddr)
	d.Poke(cfgrAddr, 0)
	assert.Equal(t, uint64(3), d.Tick())
}

func TestResetRestoresPowerOnState(t *testing.T) {
	d := NewDevice()

	d.Write32(apb1Addr, rcc.RCC_APB1ENR1_PWREN)
	d.Write32(crAddr, d.Peek(crAddr)|rcc.RCC_CR_HSEON)
	d.Reset()

	assert.Zero(t, d.Peek(apb1Addr))
	assert.Zero(t, d.Peek(crAddr)&rcc.RCC_CR_HSEON)
	assert.NotZero(t, d.Peek(crAddr)&rcc.RCC_CR_MSIRDY)
	assert.Equal(t, uint64(0), d.Tick())
}
