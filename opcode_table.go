package m68k

import "sync"

// OperandShape tags the operand layout a Descriptor's mnemonic takes, so a
// disassembler can render text without knowing anything about the handler
// function itself. Shapes are shared across many mnemonics; an instruction
// family picks whichever shape matches how it reads/writes its operands.
type OperandShape uint8

const (
	ShapeNone        OperandShape = iota // no operands (NOP, RTS, ...)
	ShapeEA                              // <ea>
	ShapeEAToReg                         // <ea>,Dn
	ShapeRegToEA                         // Dn,<ea>
	ShapeEAToAreg                        // <ea>,An
	ShapeImmToEA                         // #imm,<ea>
	ShapeQuickToEA                       // #data,<ea> (3-bit immediate in the opcode itself)
	ShapeRegToReg                        // Rx,Ry (data, address, or mixed)
	ShapeMemToMem                        // -(Ay),-(Ax) or (Ay)+,(Ax)+ predecrement/postincrement pairs
	ShapeBranch                          // PC-relative displacement
	ShapeEAToRegList                     // <ea>,register-list (MOVEM mem->reg)
	ShapeRegListToEA                     // register-list,<ea> (MOVEM reg->mem)
	ShapeEAToEA                          // <ea>,<ea> (MOVE)
	ShapeImm                             // #imm (TRAP, STOP)
	ShapeReg                             // single data register (EXT, SWAP)
	ShapeAreg                            // single address register (UNLK)
	ShapeRegImm                          // An,#disp (LINK)
	ShapeCond                            // Scc/DBcc condition-coded forms (Bcc uses ShapeBranch)
	ShapeSRToEA                          // SR,<ea> (MOVE from SR)
	ShapeEAToCCR                         // <ea>,CCR (MOVE to CCR)
	ShapeEAToSR                          // <ea>,SR (MOVE to SR)
	ShapeAregToUSP                       // An,USP
	ShapeUSPToAreg                       // USP,An
	ShapeImmToCCR                        // #imm,CCR (ANDI/ORI/EORI to CCR - no <ea> field)
	ShapeImmToSR                         // #imm,SR (ANDI/ORI/EORI to SR - no <ea> field)
	ShapeMOVEP                           // d16(An),Dn or Dn,d16(An) - MOVEP's fixed addressing form
)

// Descriptor is the declarative unit the opcode table is built from: a
// family of opcodes sharing one handler, one mnemonic, one operand shape,
// and a mask identifying which bits of the 16-bit instruction word are
// "free" (vary across the family) versus fixed ("matching").
//
// A single opcode is the degenerate case Mask == 0xFFFF.
type Descriptor struct {
	Mask     uint16
	Matching uint16
	Handler  opFunc
	Mnemonic string
	Size     Size
	Shape    OperandShape

	// Legal, when non-nil, filters the free-bit subspace further: a
	// compressed rule's mask may be rectangular while a handful of its
	// combinations are still illegal encodings (e.g. An-direct or a
	// reserved EA register number). Returning false drops that one opcode.
	Legal func(opcode uint16) bool
}

// Named free-bit mask families, matching the three non-contiguous shapes
// that recur across the MC68000 instruction set:
//   - maskOutX frees the 3-bit X register field (bits 9-11) only.
//   - maskOutXY frees both the X (bits 9-11) and Y (bits 0-2) register fields.
//   - maskLobytX frees the X register field (bits 9-11) and an 8-bit
//     immediate data field (bits 0-7), as used by MOVEQ.
//
// These are not handled as separate code paths: freeBitCombos enumerates
// the zero bits of any mask uniformly, so a "named family" is simply a
// mask value with a convenient name, not a distinct algorithm.
const (
	maskOutX   uint16 = 0xF1FF
	maskOutXY  uint16 = 0xF1F8
	maskLobytX uint16 = 0xF100
)

var (
	opcodeTable     [65536]opFunc
	descriptorTable [65536]*Descriptor
	rules           []Descriptor
	buildOnce       sync.Once
)

// addRule appends a descriptor to the pending rule list. Instruction files
// call this (directly or through install) from their init() functions;
// buildTables expands every rule into the two 64K tables on first use.
func addRule(d Descriptor) {
	if d.Matching&^d.Mask != 0 {
		panic("m68k: descriptor matching bits set outside mask")
	}
	rules = append(rules, d)
}

// freeBitCombos returns every value obtainable by independently toggling
// each zero bit of mask — i.e. every element of the legal-opcode subspace
// a Descriptor with that mask covers. This is the single enumeration
// routine behind every family (maskOutX, maskOutXY, maskLobytX, and any
// other mask shape): it only ever visits 2^popcount(^mask) values, never
// the full 65536-entry space.
func freeBitCombos(mask uint16) []uint16 {
	free := ^mask
	var bits []uint16
	for b := uint16(1); ; b <<= 1 {
		if free&b != 0 {
			bits = append(bits, b)
		}
		if b == 0x8000 {
			break
		}
	}
	n := uint(len(bits))
	combos := make([]uint16, 1<<n)
	for i := range combos {
		var v uint16
		for j, b := range bits {
			if uint(i)&(1<<uint(j)) != 0 {
				v |= b
			}
		}
		combos[i] = v
	}
	return combos
}

// buildTables expands every registered rule into opcodeTable and
// descriptorTable. Run once, lazily, the first time either table is
// needed (CPU construction or disassembly).
func buildTables() {
	buildOnce.Do(func() {
		for _, d := range rules {
			dd := d
			for _, combo := range freeBitCombos(d.Mask) {
				opcode := d.Matching | combo
				if dd.Legal != nil && !dd.Legal(opcode) {
					continue
				}
				opcodeTable[opcode] = d.Handler
				descriptorTable[opcode] = &dd
			}
		}
	})
}

// install registers a single opcode's handler, mnemonic and operand shape.
// Used by instruction families whose legality is easier to express as an
// explicit enumeration loop (illegal EA combinations vary per instruction)
// than as a single free-bit mask; the loop itself is the legality filter,
// and each surviving opcode becomes its own one-entry Descriptor.
func install(opcode uint16, handler opFunc, mnemonic string, sz Size, shape OperandShape) {
	addRule(Descriptor{Mask: 0xFFFF, Matching: opcode, Handler: handler, Mnemonic: mnemonic, Size: sz, Shape: shape})
}

// installRule registers a genuine compressed-mask rule: every opcode in
// the rule's free-bit subspace is filled from a single Descriptor, the
// literal realization of the maskOutX/maskOutXY/maskLobytX families.
func installRule(d Descriptor) {
	addRule(d)
}

// ccNames gives the two-letter condition suffix for each of the 16 MC68000
// condition codes, in the order CPU.testCondition switches on. Exported as
// CCNames so a disassembler outside this package can render Bcc/DBcc/Scc
// mnemonics without re-deriving the table.
var ccNames = [16]string{
	"T", "F", "HI", "LS", "CC", "CS", "NE", "EQ",
	"VC", "VS", "PL", "MI", "GE", "LT", "GT", "LE",
}

var CCNames = ccNames

// shiftTypeNames/shiftDirNames name the 8 shift/rotate mnemonics sharing
// opShiftReg/opShiftMem: the type field picks AS/LS/ROX/RO, the direction
// bit picks the L/R suffix.
var shiftTypeNames = [4]string{"AS", "LS", "ROX", "RO"}

func shiftMnemonic(dir, typ uint16) string {
	suffix := "R"
	if dir == 1 {
		suffix = "L"
	}
	return shiftTypeNames[typ] + suffix
}

// ShiftMnemonic exposes shiftMnemonic to packages outside m68k.
func ShiftMnemonic(dir, typ uint16) string {
	return shiftMnemonic(dir, typ)
}

// wordOrLong maps the 3-bit szBit encoding ADDA/SUBA/CMPA share (3=Word,
// 7=Long) to a Size, for install() calls registering those families.
func wordOrLong(szBit uint16) Size {
	if szBit == 7 {
		return Long
	}
	return Word
}

// lookupDescriptor returns the Descriptor governing opcode, if any. Used
// by the disassembler; the executor uses opcodeTable directly for speed.
func lookupDescriptor(opcode uint16) *Descriptor {
	buildTables()
	return descriptorTable[opcode]
}

// DescriptorFor exposes the opcode table's Descriptor for opcode to
// packages outside m68k, such as a disassembler that needs the mnemonic
// and operand shape without duplicating the table.
func DescriptorFor(opcode uint16) *Descriptor {
	return lookupDescriptor(opcode)
}
