package rcc

import (
	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/mmio"
)

// RegisterFile binds a register bus to the RCC and PWR base addresses of a
// concrete board and hands out typed register handles.
type RegisterFile struct {
	bus     mmio.Bus
	rccBase uint32
	pwrBase uint32
}

// NewRegisterFile returns a register file over bus. Zero base addresses
// fall back to the STM32L476 defaults.
func NewRegisterFile(bus mmio.Bus, rccBase, pwrBase uint32) *RegisterFile {
	if rccBase == 0 {
		rccBase = RCC_BASE
	}
	if pwrBase == 0 {
		pwrBase = PWR_BASE
	}
	return &RegisterFile{bus: bus, rccBase: rccBase, pwrBase: pwrBase}
}

// Reg returns a handle to the register at an absolute address. Raw acquire
// targets resolve through this.
func (f *RegisterFile) Reg(addr uint32) mmio.Reg {
	return mmio.NewReg(f.bus, addr)
}

// CR returns the clock control register.
func (f *RegisterFile) CR() mmio.Reg {
	return mmio.NewReg(f.bus, f.rccBase+RCC_CR)
}

// CFGR returns the clock configuration register.
func (f *RegisterFile) CFGR() mmio.Reg {
	return mmio.NewReg(f.bus, f.rccBase+RCC_CFGR)
}

// PLLCFGR returns the PLL configuration register.
func (f *RegisterFile) PLLCFGR() mmio.Reg {
	return mmio.NewReg(f.bus, f.rccBase+RCC_PLLCFGR)
}

// AHB1ENR returns the AHB1 peripheral clock enable register.
func (f *RegisterFile) AHB1ENR() mmio.Reg {
	return mmio.NewReg(f.bus, f.rccBase+RCC_AHB1ENR)
}

// AHB2ENR returns the AHB2 peripheral clock enable register.
func (f *RegisterFile) AHB2ENR() mmio.Reg {
	return mmio.NewReg(f.bus, f.rccBase+RCC_AHB2ENR)
}

// APB1ENR1 returns the first APB1 peripheral clock enable register.
func (f *RegisterFile) APB1ENR1() mmio.Reg {
	return mmio.NewReg(f.bus, f.rccBase+RCC_APB1ENR1)
}

// APB2ENR returns the APB2 peripheral clock enable register.
func (f *RegisterFile) APB2ENR() mmio.Reg {
	return mmio.NewReg(f.bus, f.rccBase+RCC_APB2ENR)
}

// BDCR returns the backup domain control register.
func (f *RegisterFile) BDCR() mmio.Reg {
	return mmio.NewReg(f.bus, f.rccBase+RCC_BDCR)
}

// CSR returns the control/status register.
func (f *RegisterFile) CSR() mmio.Reg {
	return mmio.NewReg(f.bus, f.rccBase+RCC_CSR)
}

// PWRCR1 returns power control register 1.
func (f *RegisterFile) PWRCR1() mmio.Reg {
	return mmio.NewReg(f.bus, f.pwrBase+PWR_CR1)
}
