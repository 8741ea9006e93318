package config

import (
	"testing"

	"github.com/merlinvale/m68k"
	"github.com/merlinvale/m68k/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesHardwareBehavior(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.EmulateAddressError)
	assert.False(t, cfg.PredecrementLowWordFirst)
}

func TestApplyMaskingDisablesAddressError(t *testing.T) {
	r := bus.NewRAM()
	r.Write(m68k.Word, 0x1000, 0x3010) // MOVE.W (A0),D0
	cpu := m68k.New(r, m68k.Callbacks{})

	cfg := Default()
	cfg.EmulateAddressError = false
	cfg.Apply(cpu)

	cpu.SetState(m68k.Registers{A: [8]uint32{0x2001}, PC: 0x1000, SR: 0x2700, SSP: 0x10000})
	cpu.Step()

	require.False(t, cpu.Halted())
}

func TestApplyDefaultTrapsAddressError(t *testing.T) {
	r := bus.NewRAM()
	r.Write(m68k.Word, 0x1000, 0x3010) // MOVE.W (A0),D0
	cpu := m68k.New(r, m68k.Callbacks{})

	Default().Apply(cpu)

	cpu.SetState(m68k.Registers{A: [8]uint32{0x2001}, PC: 0x1000, SR: 0x2700, SSP: 0x10000})
	cpu.Step()

	require.True(t, cpu.Halted())
}
