package m68k

import "testing"

// TestBusErrorExceptionFrameShape exercises SignalBusError directly: a
// 6-byte frame (PC long + SR word) pushed onto the current supervisor
// stack, vector 2, S=1 on return.
func TestBusErrorExceptionFrameShape(t *testing.T) {
	bus := &testBus{}
	const handler = 0x00004000
	writeWord(bus, 8, uint16(handler>>16))
	writeWord(bus, 10, uint16(handler))

	const ssp = 0x00008000
	const startPC = 0x00001234
	const startSR = 0x2000 // supervisor, all flags clear

	cpu := &CPU{bus: bus}
	cpu.SetState(Registers{PC: startPC, SR: startSR, SSP: ssp})

	cpu.SignalBusError()

	reg := cpu.Registers()

	if cpu.Halted() {
		t.Fatalf("CPU halted on a single bus error; want a normal exception")
	}
	if reg.PC != handler {
		t.Errorf("PC after exception = 0x%08X, want 0x%08X (vector 2 handler)", reg.PC, handler)
	}
	if reg.SR&flagS == 0 {
		t.Errorf("SR supervisor bit not set after exception: SR=0x%04X", reg.SR)
	}

	wantSP := uint32(ssp - 6)
	if reg.A[7] != wantSP {
		t.Errorf("A7/SSP after exception = 0x%08X, want 0x%08X (6-byte frame)", reg.A[7], wantSP)
	}

	gotSR := bus.Read(Word, wantSP)
	if gotSR != startSR {
		t.Errorf("pushed SR = 0x%04X, want 0x%04X", gotSR, startSR)
	}
	gotPC := bus.Read(Long, wantSP+2)
	if gotPC != startPC {
		t.Errorf("pushed PC = 0x%08X, want 0x%08X", gotPC, startPC)
	}
}

// TestAddressErrorExceptionFrameShape drives the same frame-shape check
// through a real odd-address operand access (vector 3) rather than calling
// the signal directly.
func TestAddressErrorExceptionFrameShape(t *testing.T) {
	bus := &testBus{}
	const handler = 0x00003000
	writeWord(bus, 12, uint16(handler>>16))
	writeWord(bus, 14, uint16(handler))

	const ssp = 0x00008000
	const pc = 0x00001000
	writeWord(bus, pc, 0x3010) // MOVE.W (A0),D0 — no extension word

	var a [8]uint32
	a[0] = 0x2001 // A0 = odd address
	cpu := &CPU{bus: bus}
	cpu.SetState(Registers{A: a, PC: pc, SR: 0x2700, SSP: ssp})

	cpu.Step()

	reg := cpu.Registers()

	if cpu.Halted() {
		t.Fatalf("CPU halted on a single address error with an initialized vector table")
	}
	if reg.PC != handler {
		t.Errorf("PC after exception = 0x%08X, want 0x%08X (vector 3 handler)", reg.PC, handler)
	}
	if reg.SR&flagS == 0 {
		t.Errorf("SR supervisor bit not set after exception: SR=0x%04X", reg.SR)
	}

	wantSP := uint32(ssp - 6)
	if reg.A[7] != wantSP {
		t.Errorf("A7/SSP after exception = 0x%08X, want 0x%08X (6-byte frame)", reg.A[7], wantSP)
	}

	gotSR := bus.Read(Word, wantSP)
	if gotSR != 0x2700 {
		t.Errorf("pushed SR = 0x%04X, want 0x%04X", gotSR, 0x2700)
	}
	wantPushedPC := uint32(pc + 2) // opcode fetched, no extension word, fault during EA read
	gotPC := bus.Read(Long, wantSP+2)
	if gotPC != wantPushedPC {
		t.Errorf("pushed PC = 0x%08X, want 0x%08X", gotPC, wantPushedPC)
	}
}
