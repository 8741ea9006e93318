// Package disasm implements a Motorola 68000 disassembler built on the
// same opcode descriptor table the m68k core's executor dispatches
// through, so a mnemonic's text and the handler that runs it can never
// silently drift apart.
package disasm

import (
	"fmt"
	"strings"

	"github.com/merlinvale/m68k"
)

// Instruction is one decoded opcode: its address, raw first word,
// rendered mnemonic and operand text, and its length in bytes.
type Instruction struct {
	PC       uint32
	Opcode   uint16
	Mnemonic string
	Operands string
	Length   uint32
}

// String renders the instruction in Motorola assembler syntax, e.g.
// "MOVE.W D0,D1".
func (in Instruction) String() string {
	if in.Operands == "" {
		return in.Mnemonic
	}
	return in.Mnemonic + " " + in.Operands
}

// Decode reads one instruction from bus at pc and returns it along with
// the address of the instruction that follows. An opcode with no table
// entry decodes as "DC.W $xxxx" (a raw data word), matching spec's
// "return illegal-instruction with the fetched opcode" fallback.
func Decode(pc uint32, bus m68k.Bus) (Instruction, uint32) {
	opcode := uint16(bus.Read(m68k.Word, pc))
	cursor := pc + 2

	d := m68k.DescriptorFor(opcode)
	if d == nil {
		return Instruction{
			PC: pc, Opcode: opcode,
			Mnemonic: "DC.W",
			Operands: fmt.Sprintf("$%04X", opcode),
			Length:   2,
		}, pc + 2
	}

	mnemonic := d.Mnemonic
	if d.Size != 0 && hasSizeSuffix(d.Shape) {
		mnemonic += "." + sizeSuffix(d.Size)
	}

	operands := formatOperands(bus, &cursor, pc, opcode, d)

	return Instruction{
		PC: pc, Opcode: opcode,
		Mnemonic: mnemonic,
		Operands: operands,
		Length:   cursor - pc,
	}, cursor
}

func sizeSuffix(sz m68k.Size) string {
	switch sz {
	case m68k.Byte:
		return "B"
	case m68k.Word:
		return "W"
	case m68k.Long:
		return "L"
	default:
		return ""
	}
}

// hasSizeSuffix reports whether shape's mnemonic conventionally carries a
// .B/.W/.L suffix. Branch, control, and single-register shapes don't.
func hasSizeSuffix(shape m68k.OperandShape) bool {
	switch shape {
	case m68k.ShapeNone, m68k.ShapeBranch, m68k.ShapeCond, m68k.ShapeImm,
		m68k.ShapeRegImm, m68k.ShapeAreg, m68k.ShapeAregToUSP, m68k.ShapeUSPToAreg,
		m68k.ShapeSRToEA, m68k.ShapeEAToCCR, m68k.ShapeEAToSR,
		m68k.ShapeImmToCCR, m68k.ShapeImmToSR:
		return false
	default:
		return true
	}
}

func formatOperands(bus m68k.Bus, cursor *uint32, pc uint32, opcode uint16, d *m68k.Descriptor) string {
	switch d.Shape {
	case m68k.ShapeNone:
		return ""

	case m68k.ShapeEA:
		mode, reg := eaFields(opcode)
		return eaText(bus, cursor, mode, reg, d.Size)

	case m68k.ShapeEAToReg:
		mode, reg := eaFields(opcode)
		ea := eaText(bus, cursor, mode, reg, d.Size)
		dn := (opcode >> 9) & 7
		if isBitOpMnemonic(d.Mnemonic) {
			// BTST/BCHG/BCLR/BSET's dynamic (register bit number) form reads
			// "Dn,<ea>": Dn supplies the bit number, <ea> the tested operand.
			return fmt.Sprintf("D%d,%s", dn, ea)
		}
		return fmt.Sprintf("%s,D%d", ea, dn)

	case m68k.ShapeRegToEA:
		mode, reg := eaFields(opcode)
		ea := eaText(bus, cursor, mode, reg, d.Size)
		dn := (opcode >> 9) & 7
		return fmt.Sprintf("D%d,%s", dn, ea)

	case m68k.ShapeEAToAreg:
		mode, reg := eaFields(opcode)
		ea := eaText(bus, cursor, mode, reg, d.Size)
		an := (opcode >> 9) & 7
		return fmt.Sprintf("%s,A%d", ea, an)

	case m68k.ShapeImmToEA:
		imm := fetchImmediate(bus, cursor, d.Size)
		mode, reg := eaFields(opcode)
		ea := eaText(bus, cursor, mode, reg, d.Size)
		return fmt.Sprintf("#$%X,%s", imm, ea)

	case m68k.ShapeQuickToEA:
		if d.Mnemonic == "MOVEQ" {
			return fmt.Sprintf("#%d,D%d", int8(opcode&0xFF), (opcode>>9)&7)
		}
		data := (opcode >> 9) & 7
		if data == 0 {
			data = 8
		}
		mode, reg := eaFields(opcode)
		ea := eaText(bus, cursor, mode, reg, d.Size)
		return fmt.Sprintf("#%d,%s", data, ea)

	case m68k.ShapeRegToReg:
		rx := (opcode >> 9) & 7
		ry := opcode & 7

		if d.Mnemonic == "EXG" {
			switch (opcode >> 3) & 0x1F {
			case 0x09: // Ax,Ay
				return fmt.Sprintf("A%d,A%d", rx, ry)
			case 0x11: // Dx,Ay
				return fmt.Sprintf("D%d,A%d", rx, ry)
			default: // Dx,Dy
				return fmt.Sprintf("D%d,D%d", rx, ry)
			}
		}

		if isShiftMnemonic(d.Mnemonic) {
			dreg := opcode & 7
			if (opcode>>5)&1 != 0 {
				cnt := (opcode >> 9) & 7
				return fmt.Sprintf("D%d,D%d", cnt, dreg)
			}
			count := (opcode >> 9) & 7
			if count == 0 {
				count = 8
			}
			return fmt.Sprintf("#%d,D%d", count, dreg)
		}

		// ADDX/SUBX/ABCD/SBCD: Dy,Dx (source,destination)
		return fmt.Sprintf("D%d,D%d", ry, rx)

	case m68k.ShapeMemToMem:
		rx := (opcode >> 9) & 7
		ry := opcode & 7
		if d.Mnemonic == "CMPM" {
			return fmt.Sprintf("(A%d)+,(A%d)+", ry, rx)
		}
		return fmt.Sprintf("-(A%d),-(A%d)", ry, rx)

	case m68k.ShapeBranch:
		base := pc + 2
		disp := int32(int8(opcode & 0xFF))
		if disp == 0 {
			ext := fetchWord(bus, cursor)
			disp = int32(int16(ext))
		}
		target := uint32(int32(base) + disp)
		return fmt.Sprintf("$%06X", target)

	case m68k.ShapeEAToRegList:
		list := fetchWord(bus, cursor)
		mode, reg := eaFields(opcode)
		ea := eaText(bus, cursor, mode, reg, d.Size)
		return fmt.Sprintf("%s,%s", ea, regListText(list, mode == 4))

	case m68k.ShapeRegListToEA:
		list := fetchWord(bus, cursor)
		mode, reg := eaFields(opcode)
		ea := eaText(bus, cursor, mode, reg, d.Size)
		return fmt.Sprintf("%s,%s", regListText(list, mode == 4), ea)

	case m68k.ShapeEAToEA:
		// MOVE's destination field is encoded reg(11-9),mode(8-6) ahead of
		// the source mode(5-3)/reg(2-0) - the one instruction whose two EA
		// fields are not adjacent in the natural mode/reg order.
		srcMode, srcReg := eaFields(opcode)
		src := eaText(bus, cursor, srcMode, srcReg, d.Size)
		dstMode := uint8((opcode >> 6) & 7)
		dstReg := uint8((opcode >> 9) & 7)
		dst := eaText(bus, cursor, dstMode, dstReg, d.Size)
		return fmt.Sprintf("%s,%s", src, dst)

	case m68k.ShapeImm:
		if d.Mnemonic == "TRAP" {
			return fmt.Sprintf("#%d", opcode&0xF)
		}
		imm := fetchImmediate(bus, cursor, d.Size)
		return fmt.Sprintf("#$%X", imm)

	case m68k.ShapeReg:
		return fmt.Sprintf("D%d", opcode&7)

	case m68k.ShapeAreg:
		return fmt.Sprintf("A%d", opcode&7)

	case m68k.ShapeRegImm:
		an := opcode & 7
		disp := int16(fetchWord(bus, cursor))
		return fmt.Sprintf("A%d,#%d", an, disp)

	case m68k.ShapeCond:
		if strings.HasPrefix(d.Mnemonic, "DB") {
			dn := opcode & 7
			disp := int16(fetchWord(bus, cursor))
			target := uint32(int32(pc+2) + int32(disp))
			return fmt.Sprintf("D%d,$%06X", dn, target)
		}
		mode, reg := eaFields(opcode)
		return eaText(bus, cursor, mode, reg, m68k.Byte)

	case m68k.ShapeSRToEA:
		mode, reg := eaFields(opcode)
		return fmt.Sprintf("SR,%s", eaText(bus, cursor, mode, reg, m68k.Word))

	case m68k.ShapeEAToCCR:
		mode, reg := eaFields(opcode)
		return fmt.Sprintf("%s,CCR", eaText(bus, cursor, mode, reg, m68k.Word))

	case m68k.ShapeEAToSR:
		mode, reg := eaFields(opcode)
		return fmt.Sprintf("%s,SR", eaText(bus, cursor, mode, reg, m68k.Word))

	case m68k.ShapeAregToUSP:
		return fmt.Sprintf("A%d,USP", opcode&7)

	case m68k.ShapeUSPToAreg:
		return fmt.Sprintf("USP,A%d", opcode&7)

	case m68k.ShapeImmToCCR:
		imm := fetchImmediate(bus, cursor, d.Size)
		return fmt.Sprintf("#$%X,CCR", imm)

	case m68k.ShapeImmToSR:
		imm := fetchImmediate(bus, cursor, d.Size)
		return fmt.Sprintf("#$%X,SR", imm)

	case m68k.ShapeMOVEP:
		dn := (opcode >> 9) & 7
		an := opcode & 7
		disp := int16(fetchWord(bus, cursor))
		if (opcode>>7)&1 == 0 {
			return fmt.Sprintf("%d(A%d),D%d", disp, an, dn)
		}
		return fmt.Sprintf("D%d,%d(A%d)", dn, disp, an)

	default:
		return ""
	}
}

// isBitOpMnemonic reports whether mnemonic is one of the four dynamic
// bit instructions, whose ShapeEAToReg encoding reads "Dn,<ea>" rather
// than the shape's usual "<ea>,Dn" order.
func isBitOpMnemonic(mnemonic string) bool {
	switch mnemonic {
	case "BTST", "BCHG", "BCLR", "BSET":
		return true
	default:
		return false
	}
}

// isShiftMnemonic reports whether mnemonic is one of the eight
// shift/rotate forms sharing opShiftReg's Dx,Dn / #count,Dn encoding.
func isShiftMnemonic(mnemonic string) bool {
	switch mnemonic {
	case "ASR", "ASL", "LSR", "LSL", "ROXR", "ROXL", "ROR", "ROL":
		return true
	default:
		return false
	}
}

func eaFields(opcode uint16) (mode, reg uint8) {
	return uint8((opcode >> 3) & 7), uint8(opcode & 7)
}

func fetchWord(bus m68k.Bus, cursor *uint32) uint16 {
	w := uint16(bus.Read(m68k.Word, *cursor))
	*cursor += 2
	return w
}

func fetchLong(bus m68k.Bus, cursor *uint32) uint32 {
	l := bus.Read(m68k.Long, *cursor)
	*cursor += 4
	return l
}

func fetchImmediate(bus m68k.Bus, cursor *uint32, sz m68k.Size) uint32 {
	if sz == m68k.Long {
		return fetchLong(bus, cursor)
	}
	w := fetchWord(bus, cursor)
	if sz == m68k.Byte {
		return uint32(w) & 0xFF
	}
	return uint32(w)
}

// eaText renders one effective address operand in Motorola syntax,
// consuming any extension words the mode requires from bus starting at
// *cursor.
func eaText(bus m68k.Bus, cursor *uint32, mode, reg uint8, sz m68k.Size) string {
	switch mode {
	case 0:
		return fmt.Sprintf("D%d", reg)
	case 1:
		return fmt.Sprintf("A%d", reg)
	case 2:
		return fmt.Sprintf("(A%d)", reg)
	case 3:
		return fmt.Sprintf("(A%d)+", reg)
	case 4:
		return fmt.Sprintf("-(A%d)", reg)
	case 5:
		disp := int16(fetchWord(bus, cursor))
		return fmt.Sprintf("%d(A%d)", disp, reg)
	case 6:
		ext := fetchWord(bus, cursor)
		return indexedText(ext, fmt.Sprintf("A%d", reg))
	case 7:
		switch reg {
		case 0:
			addr := fetchWord(bus, cursor)
			return fmt.Sprintf("$%04X.W", addr)
		case 1:
			addr := fetchLong(bus, cursor)
			return fmt.Sprintf("$%08X.L", addr)
		case 2:
			base := *cursor
			disp := int16(fetchWord(bus, cursor))
			target := uint32(int32(base) + int32(disp))
			return fmt.Sprintf("$%06X(PC)", target)
		case 3:
			ext := fetchWord(bus, cursor)
			return indexedText(ext, "PC")
		case 4:
			imm := fetchImmediate(bus, cursor, sz)
			return fmt.Sprintf("#$%X", imm)
		}
	}
	return "?"
}

// indexedText renders a d8(base,Xn.w/l) operand from its extension word.
func indexedText(ext uint16, base string) string {
	disp := int8(ext & 0xFF)
	xn := (ext >> 12) & 7
	regKind := "D"
	if ext&0x8000 != 0 {
		regKind = "A"
	}
	sizeKind := "W"
	if ext&0x0800 != 0 {
		sizeKind = "L"
	}
	return fmt.Sprintf("%d(%s,%s%d.%s)", disp, base, regKind, xn, sizeKind)
}

// regListText renders a MOVEM register list. The bit order is reversed
// for predecrement destinations (A7..A0,D7..D0) versus every other mode
// (D0..D7,A0..A7), per the MC68000's MOVEM encoding. Either way the
// registers are listed in D0..D7,A0..A7 order.
func regListText(list uint16, predecrement bool) string {
	var names [16]string
	if predecrement {
		for i := 0; i < 8; i++ {
			names[i] = fmt.Sprintf("A%d", 7-i)
		}
		for i := 0; i < 8; i++ {
			names[8+i] = fmt.Sprintf("D%d", 7-i)
		}
	} else {
		for i := 0; i < 8; i++ {
			names[i] = fmt.Sprintf("D%d", i)
		}
		for i := 0; i < 8; i++ {
			names[8+i] = fmt.Sprintf("A%d", i)
		}
	}

	var parts []string
	for n := 0; n < 16; n++ {
		i := n
		if predecrement {
			i = 15 - n
		}
		if list&(1<<uint(i)) != 0 {
			parts = append(parts, names[i])
		}
	}
	if len(parts) == 0 {
		return "{}"
	}
	return strings.Join(parts, "/")
}
