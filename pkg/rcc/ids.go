package rcc

// ClockID identifies an oscillator or derived clock in the tree.
type ClockID uint8

const (
	// ClockMSI is the multi-speed internal RC oscillator (100 kHz..48 MHz).
	ClockMSI ClockID = 0

	// ClockHSE is the external high-speed oscillator or bypass input.
	ClockHSE ClockID = 1

	// ClockLSI is the low-speed internal RC oscillator (~32 kHz).
	ClockLSI ClockID = 2

	// ClockLSE is the external 32.768 kHz crystal in the backup domain.
	ClockLSE ClockID = 3

	// ClockPLL is the main PLL, sourced from MSI or HSE.
	ClockPLL ClockID = 4

	// ClockSYS is the system clock, sourced from MSI, HSE or PLL.
	ClockSYS ClockID = 5

	// ClockCount bounds the valid ClockID range.
	ClockCount = 6
)

// String returns the clock name.
func (c ClockID) String() string {
	switch c {
	case ClockMSI:
		return "MSI"
	case ClockHSE:
		return "HSE"
	case ClockLSI:
		return "LSI"
	case ClockLSE:
		return "LSE"
	case ClockPLL:
		return "PLL"
	case ClockSYS:
		return "SYS"
	default:
		return "UNKNOWN"
	}
}

// BusID identifies a peripheral bus.
type BusID uint8

const (
	// BusAHB is the AHB matrix, clocked directly from the system clock.
	BusAHB BusID = 0

	// BusAPB1 is the low-speed peripheral bus.
	BusAPB1 BusID = 1

	// BusAPB2 is the high-speed peripheral bus.
	BusAPB2 BusID = 2

	// BusCount bounds the valid BusID range.
	BusCount = 3
)

// String returns the bus name.
func (b BusID) String() string {
	switch b {
	case BusAHB:
		return "AHB"
	case BusAPB1:
		return "APB1"
	case BusAPB2:
		return "APB2"
	default:
		return "UNKNOWN"
	}
}

// PeripheralID identifies a peripheral whose clock gate is tracked
// individually.
type PeripheralID uint8

const (
	// PeriphPWR is the power controller, required for backup-domain access.
	PeriphPWR PeripheralID = 0

	// PeriphRTC is the real-time clock.
	PeriphRTC PeripheralID = 1

	// PeriphCount bounds the valid PeripheralID range.
	PeriphCount = 2
)

// String returns the peripheral name.
func (p PeripheralID) String() string {
	switch p {
	case PeriphPWR:
		return "PWR"
	case PeriphRTC:
		return "RTC"
	default:
		return "UNKNOWN"
	}
}
