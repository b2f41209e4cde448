package simrcc

import (
	"sync"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/mmio"
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/rcc"
)

// Compile-time check that Device satisfies the register bus interface.
var _ mmio.Bus = (*Device)(nil)

// Default behavioral parameters, in ticks.
const (
	// DefaultReadyLatency is how long an oscillator takes to report ready
	// after being enabled (and to drop ready after being disabled).
	DefaultReadyLatency = 4

	// DefaultSwitchLatency is how long the system clock switch takes once
	// the target source is ready.
	DefaultSwitchLatency = 2
)

// oscillator models one enable/ready bit pair with a settle latency.
type oscillator struct {
	clock rcc.ClockID
	addr  uint32
	on    uint32
	rdy   uint32

	pending bool
	eta     uint64
}

// Device simulates the RCC and PWR register blocks at their standard
// STM32L476 base addresses. Every Read32 or Write32 advances the
// simulation by one tick; pending oscillator and switch transitions settle
// as ticks pass.
type Device struct {
	mu    sync.Mutex
	words map[uint32]uint32
	tick  uint64

	readyLatency  uint64
	switchLatency uint64

	oscs      []*oscillator
	swChanged uint64

	stuckSwitch bool
	failReady   map[rcc.ClockID]bool
}

// Option configures a Device.
type Option func(*Device)

// WithReadyLatency sets the oscillator ready latency in ticks.
func WithReadyLatency(ticks uint64) Option {
	return func(d *Device) {
		d.readyLatency = ticks
	}
}

// WithSwitchLatency sets the system clock switch latency in ticks.
func WithSwitchLatency(ticks uint64) Option {
	return func(d *Device) {
		d.switchLatency = ticks
	}
}

// WithFailReady injects a fault: the given oscillator never reports ready.
func WithFailReady(clock rcc.ClockID) Option {
	return func(d *Device) {
		d.failReady[clock] = true
	}
}

// WithStuckSwitch injects a fault: the system clock switch status never
// follows the commanded source.
func WithStuckSwitch() Option {
	return func(d *Device) {
		d.stuckSwitch = true
	}
}

// NewDevice returns a simulated device in its power-on reset state.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		words:         make(map[uint32]uint32),
		readyLatency:  DefaultReadyLatency,
		switchLatency: DefaultSwitchLatency,
		failReady:     make(map[rcc.ClockID]bool),
	}
	d.oscs = []*oscillator{
		{clock: rcc.ClockMSI, addr: rcc.RCC_BASE + rcc.RCC_CR, on: rcc.RCC_CR_MSION, rdy: rcc.RCC_CR_MSIRDY},
		{clock: rcc.ClockHSE, addr: rcc.RCC_BASE + rcc.RCC_CR, on: rcc.RCC_CR_HSEON, rdy: rcc.RCC_CR_HSERDY},
		{clock: rcc.ClockPLL, addr: rcc.RCC_BASE + rcc.RCC_CR, on: rcc.RCC_CR_PLLON, rdy: rcc.RCC_CR_PLLRDY},
		{clock: rcc.ClockLSE, addr: rcc.RCC_BASE + rcc.RCC_BDCR, on: rcc.RCC_BDCR_LSEON, rdy: rcc.RCC_BDCR_LSERDY},
		{clock: rcc.ClockLSI, addr: rcc.RCC_BASE + rcc.RCC_CSR, on: rcc.RCC_CSR_LSION, rdy: rcc.RCC_CSR_LSIRDY},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.reset()
	return d
}

// reset loads the power-on register values: MSI on and ready at range 6
// (4 MHz), system clock on MSI, voltage scaling range 1.
func (d *Device) reset() {
	d.words = map[uint32]uint32{
		rcc.RCC_BASE + rcc.RCC_CR: rcc.RCC_CR_MSION | rcc.RCC_CR_MSIRDY |
			0x6<<rcc.RCC_CR_MSIRANGE_Pos,
		rcc.RCC_BASE + rcc.RCC_CSR: 0x6 << rcc.RCC_CSR_MSISRANGE_Pos,
		rcc.PWR_BASE + rcc.PWR_CR1: 0x1 << rcc.PWR_CR1_VOS_Pos,
	}
	for _, o := range d.oscs {
		o.pending = false
	}
	d.tick = 0
	d.swChanged = 0
}

// Reset returns the device to its power-on state. Injected faults stay in
// effect.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

// Read32 implements mmio.Bus.
func (d *Device) Read32(addr uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.step()
	return d.words[addr]
}

// Write32 implements mmio.Bus.
func (d *Device) Write32(addr uint32, v uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.step()

	if !d.writable(addr) {
		return
	}

	old := d.words[addr]
	d.words[addr] = v

	for _, o := range d.oscs {
		if o.addr != addr {
			continue
		}
		// Ready flags are hardware-owned; software writes cannot move
		// them.
		d.words[addr] = d.words[addr]&^o.rdy | old&o.rdy
		if (old^v)&o.on != 0 {
			o.pending = true
			o.eta = d.tick + d.readyLatency
		}
	}

	cfgr := rcc.RCC_BASE + rcc.RCC_CFGR
	if addr == cfgr {
		// The switch status field is hardware-owned too.
		swsMask := rcc.RCC_CFGR_SWS_Msk << rcc.RCC_CFGR_SWS_Pos
		d.words[addr] = d.words[addr]&^swsMask | old&swsMask
		swMask := rcc.RCC_CFGR_SW_Msk << rcc.RCC_CFGR_SW_Pos
		if (old^v)&swMask != 0 {
			d.swChanged = d.tick
		}
	}
}

// writable applies the write protection rules: PWR_CR1 needs the PWR block
// clocked, the backup domain register needs DBP open.
func (d *Device) writable(addr uint32) bool {
	switch addr {
	case rcc.PWR_BASE + rcc.PWR_CR1:
		return d.words[rcc.RCC_BASE+rcc.RCC_APB1ENR1]&rcc.RCC_APB1ENR1_PWREN != 0
	case rcc.RCC_BASE + rcc.RCC_BDCR:
		return d.words[rcc.PWR_BASE+rcc.PWR_CR1]&rcc.PWR_CR1_DBP != 0
	default:
		return true
	}
}

// step advances the simulation one tick and settles any due transitions.
func (d *Device) step() {
	d.tick++

	for _, o := range d.oscs {
		if !o.pending || d.tick < o.eta {
			continue
		}
		on := d.words[o.addr]&o.on != 0
		if on && d.failReady[o.clock] {
			continue
		}
		if on {
			d.words[o.addr] |= o.rdy
		} else {
			d.words[o.addr] &^= o.rdy
		}
		o.pending = false
	}

	if d.stuckSwitch {
		return
	}
	cfgr := rcc.RCC_BASE + rcc.RCC_CFGR
	sw := d.words[cfgr] >> rcc.RCC_CFGR_SW_Pos & rcc.RCC_CFGR_SW_Msk
	sws := d.words[cfgr] >> rcc.RCC_CFGR_SWS_Pos & rcc.RCC_CFGR_SWS_Msk
	if sw != sws && d.tick >= d.swChanged+d.switchLatency && d.sourceReady(sw) {
		swsMask := rcc.RCC_CFGR_SWS_Msk << rcc.RCC_CFGR_SWS_Pos
		d.words[cfgr] = d.words[cfgr]&^swsMask | sw<<rcc.RCC_CFGR_SWS_Pos
	}
}

// sourceReady reports whether the oscillator behind a CFGR.SW encoding is
// ready. HSI16 is not modeled and never becomes ready.
func (d *Device) sourceReady(sw uint32) bool {
	var clock rcc.ClockID
	switch sw {
	case rcc.RCC_CFGR_SW_MSI:
		clock = rcc.ClockMSI
	case rcc.RCC_CFGR_SW_HSE:
		clock = rcc.ClockHSE
	case rcc.RCC_CFGR_SW_PLL:
		clock = rcc.ClockPLL
	default:
		return false
	}
	for _, o := range d.oscs {
		if o.clock == clock {
			return d.words[o.addr]&o.rdy != 0
		}
	}
	return false
}

// SetFailReady injects or clears a ready fault at runtime.
func (d *Device) SetFailReady(clock rcc.ClockID, fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failReady[clock] = fail
}

// SetStuckSwitch injects or clears the stuck-switch fault at runtime.
func (d *Device) SetStuckSwitch(stuck bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stuckSwitch = stuck
}

// Tick returns the number of bus accesses performed so far.
func (d *Device) Tick() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tick
}

// Peek reads a register without advancing the simulation.
func (d *Device) Peek(addr uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.words[addr]
}

// Poke writes a register without advancing the simulation and without
// protection checks or side effects. Tests use it to force states the
// drivers cannot reach.
func (d *Device) Poke(addr uint32, v uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.words[addr] = v
}
