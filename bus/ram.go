// Package bus provides a concrete AddressBus for the m68k core: a
// page-sparse RAM implementation that allocates backing storage lazily,
// so a small test image or a sparsely-populated memory map never pays for
// a full 16 MiB allocation.
package bus

import "github.com/merlinvale/m68k"

const pageSize = 4096
const pageMask = pageSize - 1

// RAM is a 24-bit-addressed, page-sparse memory implementing m68k.Bus and
// m68k.CycleBus. Pages are allocated on first write; a read of an
// unallocated page returns zero without allocating it.
type RAM struct {
	pages map[uint32]*[pageSize]byte
}

// NewRAM returns an empty RAM with no pages allocated.
func NewRAM() *RAM {
	return &RAM{pages: make(map[uint32]*[pageSize]byte)}
}

func (r *RAM) page(addr uint32, alloc bool) *[pageSize]byte {
	key := addr / pageSize
	if p, ok := r.pages[key]; ok {
		return p
	}
	if !alloc {
		return nil
	}
	p := &[pageSize]byte{}
	r.pages[key] = p
	return p
}

func (r *RAM) readByte(addr uint32) byte {
	p := r.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr&pageMask]
}

func (r *RAM) writeByte(addr uint32, val byte) {
	p := r.page(addr, true)
	p[addr&pageMask] = val
}

// Read implements m68k.Bus.
func (r *RAM) Read(sz m68k.Size, addr uint32) uint32 {
	addr &= 0xFFFFFF
	switch sz {
	case m68k.Byte:
		return uint32(r.readByte(addr))
	case m68k.Word:
		return uint32(r.readByte(addr))<<8 | uint32(r.readByte(addr+1))
	case m68k.Long:
		return uint32(r.readByte(addr))<<24 | uint32(r.readByte(addr+1))<<16 |
			uint32(r.readByte(addr+2))<<8 | uint32(r.readByte(addr+3))
	default:
		return 0
	}
}

// Write implements m68k.Bus.
func (r *RAM) Write(sz m68k.Size, addr uint32, val uint32) {
	addr &= 0xFFFFFF
	switch sz {
	case m68k.Byte:
		r.writeByte(addr, byte(val))
	case m68k.Word:
		r.writeByte(addr, byte(val>>8))
		r.writeByte(addr+1, byte(val))
	case m68k.Long:
		r.writeByte(addr, byte(val>>24))
		r.writeByte(addr+1, byte(val>>16))
		r.writeByte(addr+2, byte(val>>8))
		r.writeByte(addr+3, byte(val))
	}
}

// Reset implements m68k.Bus. RESET pulses the external reset line; it does
// not clear memory, so this is a no-op.
func (r *RAM) Reset() {}

// ReadCycle implements m68k.CycleBus. RAM itself is cycle-blind; the cycle
// argument exists so an outer bus (DMA arbitration, wait-state modeling)
// can wrap RAM and intercept it.
func (r *RAM) ReadCycle(_ uint64, sz m68k.Size, addr uint32) uint32 {
	return r.Read(sz, addr)
}

// WriteCycle implements m68k.CycleBus.
func (r *RAM) WriteCycle(_ uint64, sz m68k.Size, addr uint32, val uint32) {
	r.Write(sz, addr, val)
}

// Load copies data into RAM starting at addr, a convenience for seeding a
// memory image (a binary load into a cmd/m68kctl run, or a test fixture).
func (r *RAM) Load(addr uint32, data []byte) {
	for i, b := range data {
		r.writeByte(addr+uint32(i), b)
	}
}

// CopyFrom deep-clones every allocated page of other into r, for
// speculative execution or snapshot/restore without aliasing pages.
func (r *RAM) CopyFrom(other *RAM) {
	r.pages = make(map[uint32]*[pageSize]byte, len(other.pages))
	for key, src := range other.pages {
		dst := &[pageSize]byte{}
		*dst = *src
		r.pages[key] = dst
	}
}
