package bus

import (
	"testing"

	"github.com/merlinvale/m68k"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRAMReadWriteRoundTrip(t *testing.T) {
	r := NewRAM()
	r.Write(m68k.Long, 0x1000, 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), r.Read(m68k.Long, 0x1000))
	assert.Equal(t, uint32(0xDEAD), r.Read(m68k.Word, 0x1000))
	assert.Equal(t, uint32(0xBEEF), r.Read(m68k.Word, 0x1002))
	assert.Equal(t, uint32(0xDE), r.Read(m68k.Byte, 0x1000))
}

func TestRAMUnallocatedPageReadsZero(t *testing.T) {
	r := NewRAM()
	assert.Equal(t, uint32(0), r.Read(m68k.Long, 0x500000))
	assert.Empty(t, r.pages, "a read-only access must not allocate a page")
}

func TestRAMLoad(t *testing.T) {
	r := NewRAM()
	r.Load(0x2000, []byte{0x4E, 0x71, 0x4E, 0x75})
	assert.Equal(t, uint32(0x4E71), r.Read(m68k.Word, 0x2000))
	assert.Equal(t, uint32(0x4E75), r.Read(m68k.Word, 0x2002))
}

func TestRAMCopyFromIsDeepClone(t *testing.T) {
	src := NewRAM()
	src.Write(m68k.Byte, 0x10, 0xAA)

	dst := NewRAM()
	dst.CopyFrom(src)
	require.Equal(t, uint32(0xAA), dst.Read(m68k.Byte, 0x10))

	dst.Write(m68k.Byte, 0x10, 0x55)
	assert.Equal(t, uint32(0xAA), src.Read(m68k.Byte, 0x10), "mutating the clone must not affect the source")
}

func TestRAMImplementsCycleBus(t *testing.T) {
	var _ m68k.CycleBus = NewRAM()

	r := NewRAM()
	r.WriteCycle(42, m68k.Word, 0x100, 0x1234)
	assert.Equal(t, uint32(0x1234), r.ReadCycle(43, m68k.Word, 0x100))
}

func TestRAMAddressMasking(t *testing.T) {
	r := NewRAM()
	r.Write(m68k.Byte, 0x01000010, 0x7F)
	assert.Equal(t, uint32(0x7F), r.Read(m68k.Byte, 0x000010), "addresses above 24 bits must wrap")
}
