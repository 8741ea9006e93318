package disasm

import (
	"testing"

	"github.com/merlinvale/m68k"
	"github.com/merlinvale/m68k/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, words ...uint16) *bus.RAM {
	t.Helper()
	r := bus.NewRAM()
	addr := uint32(0x1000)
	for _, w := range words {
		r.Write(m68k.Word, addr, uint32(w))
		addr += 2
	}
	return r
}

func TestDecodeNoOperands(t *testing.T) {
	r := load(t, 0x4E71) // NOP
	in, next := Decode(0x1000, r)
	assert.Equal(t, "NOP", in.String())
	assert.Equal(t, uint32(0x1002), next)
}

func TestDecodeMOVEImmediateToDataReg(t *testing.T) {
	r := load(t, 0x0240) // ANDI.W #imm,D0 ... actually verify via MOVE instead
	_ = r
	r2 := load(t, 0x303C) // MOVE.W #imm,D0 -> mode 7 reg 4 source immediate
	in, next := Decode(0x1000, r2)
	require.Equal(t, "MOVE.W", in.Mnemonic)
	assert.Equal(t, uint32(0x1004), next) // opcode + one extension word (imm)
}

func TestDecodeBranchWithByteDisplacement(t *testing.T) {
	r := bus.NewRAM()
	r.Write(m68k.Word, 0x2000, 0x6704) // BEQ +4 (byte displacement)
	in, next := Decode(0x2000, r)
	assert.Equal(t, "BEQ", in.Mnemonic)
	assert.Equal(t, "$002006", in.Operands)
	assert.Equal(t, uint32(0x2002), next)
}

func TestDecodeBranchWithWordDisplacement(t *testing.T) {
	r := bus.NewRAM()
	r.Write(m68k.Word, 0x2000, 0x6700) // BEQ with word extension
	r.Write(m68k.Word, 0x2002, 0x0010) // +16
	in, next := Decode(0x2000, r)
	assert.Equal(t, "BEQ", in.Mnemonic)
	assert.Equal(t, "$002012", in.Operands)
	assert.Equal(t, uint32(0x2004), next)
}

func TestDecodeUnknownOpcodeIsDataWord(t *testing.T) {
	r := load(t, 0xA123) // Line-A: no table entry
	in, next := Decode(0x1000, r)
	assert.Equal(t, "DC.W", in.Mnemonic)
	assert.Equal(t, "$A123", in.Operands)
	assert.Equal(t, uint32(0x1002), next)
}

func TestDecodeMOVEMRegListToEA(t *testing.T) {
	r := bus.NewRAM()
	r.Write(m68k.Word, 0x1000, 0x48E7) // MOVEM.L reg-to-mem, -(A7)
	r.Write(m68k.Word, 0x1002, 0xC000) // D0,D1
	in, next := Decode(0x1000, r)
	assert.Equal(t, "MOVEM.L", in.Mnemonic)
	assert.Equal(t, "D0/D1,-(A7)", in.Operands)
	assert.Equal(t, uint32(0x1004), next)
}

// TestProperty10ExecutorDisassemblerAgreeOnLength checks the executor and
// the disassembler agree on how many bytes an instruction occupies, for a
// sample of installed opcodes, by constructing a minimal bus holding just
// that opcode and stepping both.
func TestProperty10ExecutorDisassemblerAgreeOnLength(t *testing.T) {
	sample := []uint16{
		0x4E71, // NOP
		0x303C, // MOVE.W #imm,D0
		0x41F8, // LEA abs.W,A0
		0x6704, // BEQ.B
		0x6000, // BRA.W (word disp)
		0x48E7, // MOVEM.L (reg list follows)
		0x5340, // SUBQ.W #1,D0
		0x7000, // MOVEQ #0,D0
	}

	for _, opcode := range sample {
		r := bus.NewRAM()
		r.Write(m68k.Word, 0x1000, uint32(opcode))
		// Fill plausible extension words so any consumed bytes are defined.
		// A word displacement of +2 makes BRA.W land on the instruction
		// right after its extension word, so its executor PC equals its length.
		r.Write(m68k.Word, 0x1002, 0x0002)
		r.Write(m68k.Word, 0x1004, 0x0000)

		cpu := m68k.New(r, m68k.Callbacks{})
		cpu.SetState(m68k.Registers{PC: 0x1000, SR: 0x2700, SSP: 0x10000})
		cpu.Step()
		cpuNextPC := cpu.Registers().PC

		_, disasmNext := Decode(0x1000, r)

		assert.Equalf(t, cpuNextPC, disasmNext, "opcode %04X: executor advanced PC to %06X, disassembler to %06X", opcode, cpuNextPC, disasmNext)
	}
}
