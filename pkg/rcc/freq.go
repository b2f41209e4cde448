package rcc

// Frequency units in Hz.
const (
	KHz uint32 = 1000
	MHz uint32 = 1000 * KHz
)

// MaxSysclkHz is the highest system clock frequency the part supports.
const MaxSysclkHz = 80 * MHz

// msiRangeMax is the highest valid MSI range code.
const msiRangeMax = 0xB

// msiRangeHz maps MSI range codes to their nominal frequency.
var msiRangeHz = [msiRangeMax + 1]uint32{
	100 * KHz,
	200 * KHz,
	400 * KHz,
	800 * KHz,
	1 * MHz,
	2 * MHz,
	4 * MHz,
	8 * MHz,
	16 * MHz,
	24 * MHz,
	32 * MHz,
	48 * MHz,
}

// MSIRangeFrequency returns the nominal frequency for an MSI range code, or
// zero for reserved codes.
func MSIRangeFrequency(rangeCode uint32) uint32 {
	if rangeCode > msiRangeMax {
		return 0
	}
	return msiRangeHz[rangeCode]
}

// CalculatePLLFrequency returns the PLL R-output frequency for the given
// input frequency and dividers: input * n / m / r. The arithmetic is pure
// and unbounded; callers enforce the system clock limit separately.
func CalculatePLLFrequency(inputHz, m, n, r uint32) uint32 {
	if m == 0 || r == 0 {
		return 0
	}
	return uint32(uint64(inputHz) * uint64(n) / uint64(m) / uint64(r))
}

// hpreDivider decodes the CFGR.HPRE field into the AHB prescaler divider.
func hpreDivider(field uint32) uint32 {
	switch field {
	case 0x8:
		return 2
	case 0x9:
		return 4
	case 0xA:
		return 8
	case 0xB:
		return 16
	case 0xC:
		return 64
	case 0xD:
		return 128
	case 0xE:
		return 256
	case 0xF:
		return 512
	default:
		return 1
	}
}

// ppreDivider decodes a CFGR.PPREx field into the APB prescaler divider.
func ppreDivider(field uint32) uint32 {
	switch field {
	case 0x4:
		return 2
	case 0x5:
		return 4
	case 0x6:
		return 8
	case 0x7:
		return 16
	default:
		return 1
	}
}

// ahbPrescalerField encodes an AHB divider into the CFGR.HPRE field.
// The second return is false for dividers the hardware cannot produce.
func ahbPrescalerField(div uint32) (uint32, bool) {
	switch div {
	case 1:
		return 0x0, true
	case 2:
		return 0x8, true
	case 4:
		return 0x9, true
	case 8:
		return 0xA, true
	case 16:
		return 0xB, true
	case 64:
		return 0xC, true
	case 128:
		return 0xD, true
	case 256:
		return 0xE, true
	case 512:
		return 0xF, true
	default:
		return 0, false
	}
}

// apbPrescalerField encodes an APB divider into a CFGR.PPREx field.
func apbPrescalerField(div uint32) (uint32, bool) {
	switch div {
	case 1:
		return 0x0, true
	case 2:
		return 0x4, true
	case 4:
		return 0x5, true
	case 8:
		return 0x6, true
	case 16:
		return 0x7, true
	default:
		return 0, false
	}
}
