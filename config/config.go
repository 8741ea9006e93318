// Package config holds the construction-time toggles a host picks once,
// before running any instructions, and applies to a *m68k.CPU after
// construction. It deliberately has no notion of runtime state: every field
// here corresponds to a hardware strap or implementation choice that's fixed
// for the lifetime of a CPU instance, not something that changes step to
// step.
package config

import "github.com/merlinvale/m68k"

// Config collects the construction-time behavior toggles this project
// exposes beyond the MC68000's architectural behavior.
type Config struct {
	// EmulateAddressError controls whether an odd-address instruction
	// fetch or word/long operand access raises the architectural address
	// error exception (vector 3, the real 68000 behavior) or is instead
	// silently masked to an even address. Real hardware always traps;
	// some emulated targets (and some buggy ROMs that rely on 68020+'s
	// relaxed alignment) expect the latter. Default true.
	EmulateAddressError bool

	// PredecrementLowWordFirst selects which word of a Long write through
	// a -(An) effective address hits the bus first. The real MC68000
	// always writes the high word to the lower address first; setting
	// this true reproduces a documented alternate order some 68000
	// clones and software workarounds assume. Default false (hardware
	// order).
	PredecrementLowWordFirst bool

	// MemorySize is the size in bytes of the RAM a host should allocate
	// to back the address space, when the host defers to this config
	// rather than sizing its own Bus. Does not affect bus.RAM itself,
	// which is page-sparse and unsized; this is purely advisory for a
	// front-end that wants a concrete upper bound (e.g. to validate a
	// load address plus image length fits).
	MemorySize uint32

	// LoadBase is the address a front-end should load a raw binary image
	// at, absent an explicit override.
	LoadBase uint32
}

// Default returns the configuration matching real MC68000 hardware
// behavior: address errors trap, predecrement writes go high-word-first,
// and a 1 MiB address space is assumed for front-end sizing.
func Default() Config {
	return Config{
		EmulateAddressError:      true,
		PredecrementLowWordFirst: false,
		MemorySize:               1 << 20,
		LoadBase:                 0,
	}
}

// Apply wires the toggles this package owns into cpu.
func (c Config) Apply(cpu *m68k.CPU) {
	cpu.SetPredecrementWordOrder(c.PredecrementLowWordFirst)
	cpu.SetEmulateAddressError(c.EmulateAddressError)
}
