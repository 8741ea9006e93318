package trace

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/merlinvale/m68k"
	"github.com/merlinvale/m68k/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestBusLogsReadsAndWrites(t *testing.T) {
	var buf bytes.Buffer
	ram := bus.NewRAM()
	tb := NewBus(ram, newLogger(&buf), slog.LevelDebug)

	tb.Write(m68k.Word, 0x2000, 0x1234)
	got := tb.Read(m68k.Word, 0x2000)
	require.Equal(t, uint32(0x1234), got)

	out := buf.String()
	assert.Contains(t, out, "bus write")
	assert.Contains(t, out, "bus read")
	assert.Contains(t, out, "addr=8192")
}

func TestBusImplementsCycleBus(t *testing.T) {
	var buf bytes.Buffer
	ram := bus.NewRAM()
	tb := NewBus(ram, newLogger(&buf), slog.LevelDebug)
	var _ m68k.CycleBus = tb

	tb.WriteCycle(7, m68k.Byte, 0x10, 0x99)
	got := tb.ReadCycle(7, m68k.Byte, 0x10)
	assert.Equal(t, uint32(0x99), got)
	assert.Contains(t, buf.String(), "cycle=7")
}

func TestTracerLogsInstructionBoundaries(t *testing.T) {
	var buf bytes.Buffer
	ram := bus.NewRAM()
	ram.Write(m68k.Word, 0x1000, 0x4E71) // NOP

	tracer := New(ram, newLogger(&buf), m68k.Callbacks{})
	cpu := m68k.New(ram, tracer.Callbacks())
	cpu.SetState(m68k.Registers{PC: 0x1000, SR: 0x2700, SSP: 0x10000})
	cpu.Step()

	out := buf.String()
	assert.True(t, strings.Contains(out, "step"))
	assert.True(t, strings.Contains(out, "NOP"))
}

func TestTracerComposesWithHostCallbacks(t *testing.T) {
	var buf bytes.Buffer
	ram := bus.NewRAM()
	ram.Write(m68k.Word, 0x1000, 0x4E71) // NOP

	var hostSawPC uint32
	host := m68k.Callbacks{InstructionHook: func(pc uint32) { hostSawPC = pc }}
	tracer := New(ram, newLogger(&buf), host)
	cpu := m68k.New(ram, tracer.Callbacks())
	cpu.SetState(m68k.Registers{PC: 0x1000, SR: 0x2700, SSP: 0x10000})
	cpu.Step()

	assert.Equal(t, uint32(0x1000), hostSawPC)
}
