// Package m68k implements a Motorola 68000 CPU emulator.
//
// The MC68000 is a 32-bit internal / 16-bit external CISC processor with:
//   - Eight 32-bit data registers (D0-D7)
//   - Eight 32-bit address registers (A0-A7), where A7 is the stack pointer
//   - A 32-bit program counter (24-bit external address bus)
//   - A 16-bit status register (system byte + condition code register)
//   - Dual stack pointers (USP for user mode, SSP for supervisor mode)
package m68k

import "log"

// Bus provides word-aligned memory access for the CPU.
// All addresses are 24-bit (masked by the CPU before calling).
type Bus interface {
	Read(op Size, addr uint32) uint32
	Write(op Size, addr uint32, val uint32)
	Reset()
}

// CycleBus is optionally implemented by a Bus that needs
// per-access cycle timestamps (e.g., for device timing, DMA).
type CycleBus interface {
	Bus
	ReadCycle(cycle uint64, op Size, addr uint32) uint32
	WriteCycle(cycle uint64, op Size, addr uint32, val uint32)
}

// FunctionCode identifies which of the six address spaces the 68000's FC0-FC2
// pins assert for a given bus cycle. A system with memory management or
// bus arbitration watches these lines to route an access to the right
// device; an emulator without one can ignore the callback entirely.
type FunctionCode uint8

const (
	FCUserData          FunctionCode = 1
	FCUserProgram       FunctionCode = 2
	FCSupervisorData    FunctionCode = 5
	FCSupervisorProgram FunctionCode = 6
	FCCPUSpace          FunctionCode = 7
)

func (fc FunctionCode) String() string {
	switch fc {
	case FCUserData:
		return "user-data"
	case FCUserProgram:
		return "user-program"
	case FCSupervisorData:
		return "supervisor-data"
	case FCSupervisorProgram:
		return "supervisor-program"
	case FCCPUSpace:
		return "cpu-space"
	default:
		return "reserved"
	}
}

// Callbacks are optional hooks a host wires up to observe or participate in
// bus cycles the core itself has no opinion about. Every field may be left
// nil; a nil hook is simply never called.
type Callbacks struct {
	// InterruptAck is invoked when the CPU services a pending interrupt
	// whose vector was not supplied via RequestInterrupt. Returning
	// ok=false falls back to auto-vectoring.
	InterruptAck func(level uint8) (vector uint8, ok bool)

	// FunctionCode is invoked with the address space of every bus access,
	// before the Read/Write call that carries it out.
	FunctionCode func(fc FunctionCode)

	// InstructionHook is invoked with the PC of every instruction about to
	// execute, after fetch. Useful for tracing and breakpoints.
	InstructionHook func(pc uint32)

	// ResetPulse is invoked when the CPU executes the RESET instruction,
	// which pulses the system reset line without resetting the CPU itself.
	ResetPulse func()

	// StopSignal is invoked whenever the CPU's halted state changes.
	StopSignal func(halted bool)
}

// Registers holds the programmer-visible state of the MC68000.
type Registers struct {
	D   [8]uint32 // Data registers
	A   [8]uint32 // Address registers (A7 is active stack pointer)
	PC  uint32    // Program counter
	SR  uint16    // Status register
	USP uint32    // User stack pointer (shadowed)
	SSP uint32    // Supervisor stack pointer (shadowed)
	IR  uint16    // Instruction register (first word of executing instruction)
}

// CPU is the MC68000 processor.
type CPU struct {
	reg      Registers
	bus      Bus
	cycleBus CycleBus // non-nil when bus implements CycleBus
	cycles   uint64

	// The instruction register holds the first word of the currently
	// executing instruction, latched at fetch time.
	ir uint16

	stopped bool   // Set by STOP, cleared by interrupt
	halted  bool   // Set by double bus fault
	prevPC  uint32 // PC of the previous instruction (for diagnostics)

	// Interrupt state
	pendingIPL uint8  // Pending interrupt priority level (1-7, 0=none)
	pendingVec *uint8 // Pending interrupt vector (nil = auto-vector)

	// Cycle deficit from StepCycles when an instruction's cost exceeded the budget.
	deficit int

	cb          Callbacks
	inException bool // true while stacking an exception frame; guards double faults

	// predecLowWordFirst governs the bus-cycle order of a Long write through
	// a -(An) effective address: false (default) writes the high word to
	// the lower address first, matching real MC68000 hardware; true writes
	// the low word first. Construction-time only; see SetPredecrementWordOrder.
	predecLowWordFirst bool

	// maskAddressErrors, when true, rounds an odd-address word/long access
	// down to the nearest even address and lets it proceed instead of
	// raising the architectural address-error exception. The zero value
	// (false) matches real MC68000 hardware, which always traps.
	// Construction-time only; see SetEmulateAddressError.
	maskAddressErrors bool
}

// SetPredecrementWordOrder selects which word of a Long write through a
// -(An) effective address hits the bus first. lowFirst=false (the default)
// matches real MC68000 hardware order (high word first); this only affects
// the order of the two word-sized bus cycles, never the bytes written.
func (c *CPU) SetPredecrementWordOrder(lowFirst bool) {
	c.predecLowWordFirst = lowFirst
}

// SetEmulateAddressError selects whether an odd-address word/long access
// raises the architectural address-error exception (emulate=true, the
// default, matching real MC68000 hardware) or is instead silently rounded
// down to the nearest even address and allowed to proceed (emulate=false).
// The latter matches how some 68020+-targeted software, and some hosts
// that never want to implement the address-error trap, expect accesses to
// behave; it is never the hardware-accurate choice.
func (c *CPU) SetEmulateAddressError(emulate bool) {
	c.maskAddressErrors = !emulate
}

// New creates a CPU wired to the given bus and performs a hardware reset.
// The reset reads the initial SSP from address 0 and PC from address 4.
// cb's fields are all optional; the zero Callbacks{} disables every hook.
func New(bus Bus, cb Callbacks) *CPU {
	buildTables()
	c := &CPU{bus: bus, cb: cb}
	c.cycleBus, _ = bus.(CycleBus)
	c.Reset()
	return c
}

// Reset performs a hardware reset: loads SSP from address 0x000000 and
// PC from address 0x000004, enters supervisor mode with interrupts masked.
func (c *CPU) Reset() {
	c.cycleBus, _ = c.bus.(CycleBus)
	c.reg = Registers{SR: 0x2700}
	c.stopped = false
	c.halted = false
	c.inException = false
	c.cycles = 0
	c.deficit = 0
	c.pendingIPL = 0
	c.pendingVec = nil

	if c.cycleBus != nil {
		ssp := c.cycleBus.ReadCycle(c.cycles, Long, 0)
		c.reg.A[7] = ssp
		c.reg.SSP = ssp
		c.reg.PC = c.cycleBus.ReadCycle(c.cycles, Long, 4)
	} else {
		ssp := c.bus.Read(Long, 0)
		c.reg.A[7] = ssp
		c.reg.SSP = ssp
		c.reg.PC = c.bus.Read(Long, 4)
	}
}

// Halted returns true if the CPU is halted due to a double bus fault.
func (c *CPU) Halted() bool {
	return c.halted
}

// Step executes a single instruction and returns the number of cycles consumed.
// Returns 0 if the CPU is halted (double bus fault).
func (c *CPU) Step() int {
	if c.halted {
		return 0
	}

	before := c.cycles

	if c.stopped {
		c.cycles += 4
		c.checkInterrupt()
		return int(c.cycles - before)
	}

	c.checkInterrupt()

	// Address error: instruction fetch from odd PC
	if c.reg.PC&1 != 0 {
		if c.maskAddressErrors {
			c.reg.PC &^= 1
		} else {
			c.addressError("fetch", Word, c.reg.PC, 0)
			return int(c.cycles - before)
		}
	}

	c.prevPC = c.reg.PC
	c.ir = c.fetchPC()
	c.reg.IR = c.ir
	if c.cb.InstructionHook != nil {
		c.cb.InstructionHook(c.prevPC)
	}

	handler := opcodeTable[c.ir]
	if handler == nil {
		switch c.ir >> 12 {
		case 0xA:
			c.exception(vecLineA)
		case 0xF:
			c.exception(vecLineF)
		default:
			c.exception(vecIllegalInstruction)
		}
	} else {
		handler(c)
	}

	// Post-instruction odd-PC check: catch branches/jumps to odd addresses.
	// On real hardware the prefetch pipeline would trigger this during the
	// instruction; we don't model prefetch so check here instead.
	if !c.halted && c.reg.PC&1 != 0 {
		if c.maskAddressErrors {
			c.reg.PC &^= 1
		} else {
			c.addressError("fetch", Word, c.reg.PC, 0)
		}
	}

	return int(c.cycles - before)
}

// StepCycles executes a single instruction within the given cycle budget.
// If a previous instruction's cost exceeded its budget, the deficit is paid
// down first without executing a new instruction. When a new instruction
// executes and its cost exceeds the budget, the excess is stored as a
// deficit to be charged on subsequent calls. Returns the number of cycles
// consumed from this call's budget.
func (c *CPU) StepCycles(budget int) int {
	if c.halted {
		return 0
	}

	// Pay down deficit from a previous instruction that exceeded its budget.
	if c.deficit > 0 {
		if budget >= c.deficit {
			n := c.deficit
			c.deficit = 0
			return n
		}
		c.deficit -= budget
		return budget
	}

	cost := c.Step()

	if cost <= budget {
		return cost
	}

	c.deficit = cost - budget
	return budget
}

// Deficit returns the remaining cycle deficit from a previous StepCycles
// call where the instruction cost exceeded the budget.
func (c *CPU) Deficit() int {
	return c.deficit
}

// Cycles returns the total cycle count since the last reset.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// AddCycles advances the cycle counter by n without executing any
// instruction. Used to account for external bus-hold periods such as
// DMA seizing the 68K bus.
func (c *CPU) AddCycles(n uint64) {
	c.cycles += n
}

// Registers returns a snapshot of the current register state.
func (c *CPU) Registers() Registers {
	return c.reg
}

// RequestInterrupt queues an interrupt at the given priority level (1-7).
// Pass nil for vector to use auto-vectoring.
// A higher level replaces a lower pending level.
func (c *CPU) RequestInterrupt(level uint8, vector *uint8) {
	if level > c.pendingIPL {
		c.pendingIPL = level
		c.pendingVec = vector
	}
}

// dataFC returns the function code for a data-space access in the CPU's
// current privilege mode.
func (c *CPU) dataFC() FunctionCode {
	if c.supervisor() {
		return FCSupervisorData
	}
	return FCUserData
}

// progFC returns the function code for a program-space access (instruction
// fetch) in the CPU's current privilege mode.
func (c *CPU) progFC() FunctionCode {
	if c.supervisor() {
		return FCSupervisorProgram
	}
	return FCUserProgram
}

// setHalted updates the halted flag, firing Callbacks.StopSignal on change.
func (c *CPU) setHalted(halted bool) {
	if c.halted == halted {
		return
	}
	c.halted = halted
	if c.cb.StopSignal != nil {
		c.cb.StopSignal(halted)
	}
}

// addressError handles a misaligned word/long access. While already
// stacking an exception frame, a second fault is a double bus fault and
// halts the CPU outright; otherwise it raises a normal address-error
// exception, leaving the instruction's result undefined.
func (c *CPU) addressError(kind string, sz Size, addr uint32, val uint32) {
	log.Printf("[m68k] address error: %s %s odd addr=%06x val=%08x PC=%06x prevPC=%06x IR=%04x",
		kind, sz, addr&0xFFFFFF, val&sz.Mask(), c.reg.PC, c.prevPC, c.ir)
	if c.inException {
		c.setHalted(true)
		return
	}
	c.exception(vecAddressError)
}

// SignalBusError lets a host bus raise a BERR condition for an access the
// core itself considered well-formed (e.g. an unmapped region, a timeout).
// Like address errors, a bus error raised while already stacking a frame
// is a double fault and halts the CPU.
func (c *CPU) SignalBusError() {
	if c.inException {
		c.setHalted(true)
		return
	}
	c.exception(vecBusError)
}

// readBus reads from the bus with 24-bit address masking.
// Word and long accesses to odd addresses raise an address-error exception.
func (c *CPU) readBus(sz Size, addr uint32) uint32 {
	return c.readBusFC(sz, addr, c.dataFC())
}

// readBusFC is readBus with an explicit function code, used by instruction
// fetch (program space) to distinguish itself from data accesses.
func (c *CPU) readBusFC(sz Size, addr uint32, fc FunctionCode) uint32 {
	if c.halted {
		return 0
	}
	if sz != Byte && addr&1 != 0 {
		if c.maskAddressErrors {
			addr &^= 1
		} else {
			c.addressError("read", sz, addr, 0)
			return 0
		}
	}
	addr &= 0xFFFFFF
	if c.cb.FunctionCode != nil {
		c.cb.FunctionCode(fc)
	}
	if c.cycleBus != nil {
		return c.cycleBus.ReadCycle(c.cycles, sz, addr)
	}
	return c.bus.Read(sz, addr)
}

// writeBus writes to the bus with 24-bit address masking.
// Word and long accesses to odd addresses raise an address-error exception.
func (c *CPU) writeBus(sz Size, addr uint32, val uint32) {
	if c.halted {
		return
	}
	if sz != Byte && addr&1 != 0 {
		if c.maskAddressErrors {
			addr &^= 1
		} else {
			c.addressError("write", sz, addr, val)
			return
		}
	}
	addr &= 0xFFFFFF
	val &= sz.Mask()
	if c.cb.FunctionCode != nil {
		c.cb.FunctionCode(c.dataFC())
	}
	if c.cycleBus != nil {
		c.cycleBus.WriteCycle(c.cycles, sz, addr, val)
		return
	}
	c.bus.Write(sz, addr, val)
}

// fetchPC reads a 16-bit word at the current PC and advances PC by 2.
func (c *CPU) fetchPC() uint16 {
	val := c.readBusFC(Word, c.reg.PC, c.progFC())
	c.reg.PC += 2
	return uint16(val)
}

// fetchPCLong reads a 32-bit long at the current PC and advances PC by 4.
func (c *CPU) fetchPCLong() uint32 {
	hi := c.fetchPC()
	lo := c.fetchPC()
	return uint32(hi)<<16 | uint32(lo)
}

// pushWord pushes a 16-bit word onto the active stack (A7).
func (c *CPU) pushWord(val uint16) {
	c.reg.A[7] -= 2
	c.writeBus(Word, c.reg.A[7], uint32(val))
}

// pushLong pushes a 32-bit long onto the active stack (A7).
func (c *CPU) pushLong(val uint32) {
	c.reg.A[7] -= 4
	c.writeBus(Long, c.reg.A[7], val)
}

// popWord pops a 16-bit word from the active stack (A7).
func (c *CPU) popWord() uint16 {
	val := c.readBus(Word, c.reg.A[7])
	c.reg.A[7] += 2
	return uint16(val)
}

// popLong pops a 32-bit long from the active stack (A7).
func (c *CPU) popLong() uint32 {
	val := c.readBus(Long, c.reg.A[7])
	c.reg.A[7] += 4
	return val
}

// supervisor returns true if the CPU is in supervisor mode.
func (c *CPU) supervisor() bool {
	return c.reg.SR&flagS != 0
}

// setSR sets the status register, handling stack pointer swaps
// when transitioning between supervisor and user mode.
func (c *CPU) setSR(sr uint16) {
	oldS := c.reg.SR & flagS
	newS := sr & flagS

	if oldS != 0 && newS == 0 {
		// Leaving supervisor mode: save SSP, restore USP
		c.reg.SSP = c.reg.A[7]
		c.reg.A[7] = c.reg.USP
	} else if oldS == 0 && newS != 0 {
		// Entering supervisor mode: save USP, restore SSP
		c.reg.USP = c.reg.A[7]
		c.reg.A[7] = c.reg.SSP
	}

	// Mask to valid 68000 SR bits: T__S__III___XNZVC (0xA71F)
	c.reg.SR = sr & 0xA71F
}

// setCCR sets only the condition code register (low byte of SR).
// Only bits 0-4 (XNZVC) are valid on the 68000; bits 5-7 are always 0.
func (c *CPU) setCCR(ccr uint8) {
	c.reg.SR = (c.reg.SR & 0xFF00) | uint16(ccr&0x1F)
}

// SetState sets all programmer-visible registers directly without
// performing a hardware reset. This is intended for testing, where
// exact CPU state must be established before executing an instruction.
func (c *CPU) SetState(regs Registers) {
	buildTables()
	c.cycleBus, _ = c.bus.(CycleBus)
	c.reg.D = regs.D
	c.reg.SR = regs.SR
	c.reg.USP = regs.USP
	c.reg.SSP = regs.SSP
	c.reg.PC = regs.PC
	c.stopped = false
	c.halted = false
	c.inException = false
	c.cycles = 0
	c.deficit = 0
	c.pendingIPL = 0
	c.pendingVec = nil

	// A7 is the active stack pointer: SSP in supervisor mode, USP in user mode
	for i := 0; i < 7; i++ {
		c.reg.A[i] = regs.A[i]
	}
	if regs.SR&flagS != 0 {
		c.reg.A[7] = regs.SSP
	} else {
		c.reg.A[7] = regs.USP
	}
}
