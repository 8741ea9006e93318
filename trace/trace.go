// Package trace provides a structured execution tracer for the m68k core.
// It wraps a Bus to log every access and builds the Callbacks a host passes
// to m68k.New to log instruction boundaries, the function code of every bus
// access, and halt transitions, all through log/slog so a caller can route, filter, or
// capture a trace the same way it routes any other structured log output.
package trace

import (
	"context"
	"log/slog"

	"github.com/merlinvale/m68k"
	"github.com/merlinvale/m68k/disasm"
)

// Bus wraps an m68k.Bus (or m68k.CycleBus) and logs every Read/Write at the
// given level, delegating to the underlying bus. ReadCycle/WriteCycle are
// logged the same way, with the cycle timestamp added. Reset passes through
// unlogged: a reset isn't a bus cycle.
type Bus struct {
	m68k.Bus
	log   *slog.Logger
	level slog.Level
}

// NewBus returns a Bus that logs to logger at level (slog.LevelDebug is a
// reasonable default — bus traces are voluminous) and delegates every access
// to underlying.
func NewBus(underlying m68k.Bus, logger *slog.Logger, level slog.Level) *Bus {
	return &Bus{Bus: underlying, log: logger, level: level}
}

func (b *Bus) Read(op m68k.Size, addr uint32) uint32 {
	val := b.Bus.Read(op, addr)
	b.log.Log(context.Background(), b.level, "bus read", "size", op, "addr", addr, "val", val)
	return val
}

func (b *Bus) Write(op m68k.Size, addr uint32, val uint32) {
	b.log.Log(context.Background(), b.level, "bus write", "size", op, "addr", addr, "val", val)
	b.Bus.Write(op, addr, val)
}

// ReadCycle and WriteCycle implement m68k.CycleBus when the wrapped Bus
// does, forwarding the cycle timestamp into the log record as well.
func (b *Bus) ReadCycle(cycle uint64, op m68k.Size, addr uint32) uint32 {
	cb, ok := b.Bus.(m68k.CycleBus)
	if !ok {
		return b.Read(op, addr)
	}
	val := cb.ReadCycle(cycle, op, addr)
	b.log.Log(context.Background(), b.level, "bus read", "cycle", cycle, "size", op, "addr", addr, "val", val)
	return val
}

func (b *Bus) WriteCycle(cycle uint64, op m68k.Size, addr uint32, val uint32) {
	cb, ok := b.Bus.(m68k.CycleBus)
	if !ok {
		b.Write(op, addr, val)
		return
	}
	b.log.Log(context.Background(), b.level, "bus write", "cycle", cycle, "size", op, "addr", addr, "val", val)
	cb.WriteCycle(cycle, op, addr, val)
}

// Tracer logs instruction boundaries as disassembled text, one record per
// instruction executed, plus the function code of every bus access and
// halt-state transitions. It
// produces the m68k.Callbacks a host wires into m68k.New; it does not run a
// CPU itself.
type Tracer struct {
	log  *slog.Logger
	bus  m68k.Bus // the bus instructions are decoded from, for InstructionHook
	next m68k.Callbacks
}

// New returns a Tracer that decodes instructions from bus (which should be
// the same bus, or the same underlying memory, the traced CPU reads from)
// and logs to logger. next, if non-nil, receives every callback after the
// trace log line is emitted, so a host can compose tracing with its own
// hooks instead of choosing one or the other.
func New(bus m68k.Bus, logger *slog.Logger, next m68k.Callbacks) *Tracer {
	return &Tracer{log: logger, bus: bus, next: next}
}

// Callbacks returns the m68k.Callbacks to pass to m68k.New.
func (t *Tracer) Callbacks() m68k.Callbacks {
	return m68k.Callbacks{
		InterruptAck:    t.next.InterruptAck,
		FunctionCode:    t.functionCode,
		InstructionHook: t.instructionHook,
		ResetPulse:      t.resetPulse,
		StopSignal:      t.stopSignal,
	}
}

func (t *Tracer) instructionHook(pc uint32) {
	in, _ := disasm.Decode(pc, t.bus)
	t.log.Info("step", "pc", pc, "instr", in.String())
	if t.next.InstructionHook != nil {
		t.next.InstructionHook(pc)
	}
}

func (t *Tracer) functionCode(fc m68k.FunctionCode) {
	t.log.Debug("function code", "fc", fc.String())
	if t.next.FunctionCode != nil {
		t.next.FunctionCode(fc)
	}
}

func (t *Tracer) resetPulse() {
	t.log.Info("reset pulse")
	if t.next.ResetPulse != nil {
		t.next.ResetPulse()
	}
}

func (t *Tracer) stopSignal(halted bool) {
	t.log.Info("stop signal", "halted", halted)
	if t.next.StopSignal != nil {
		t.next.StopSignal(halted)
	}
}
