package mmio

// Mem is a sparse in-memory Bus for unit tests. Addresses that have never
// been written read as zero.
type Mem struct {
	words map[uint32]uint32
}

var _ Bus = (*Mem)(nil)

// NewMem returns an empty memory-backed bus.
func NewMem() *Mem {
	return &Mem{words: make(map[uint32]uint32)}
}

// Read32 returns the word at addr, or zero if it was never written.
func (m *Mem) Read32(addr uint32) uint32 {
	return m.words[addr]
}

// Write32 stores v at addr.
func (m *Mem) Write32(addr uint32, v uint32) {
	m.words[addr] = v
}
