// Command m68kctl loads a raw binary image into RAM, runs the m68k core
// against it for a bounded number of instructions, and prints the final
// register state (and, with -trace, a structured log of every instruction
// executed along the way). It contains no CPU semantics of its own; it is
// wiring over the m68k, m68k/bus, m68k/config, and m68k/trace packages.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/grimdork/climate"

	"github.com/merlinvale/m68k"
	"github.com/merlinvale/m68k/bus"
	"github.com/merlinvale/m68k/config"
	"github.com/merlinvale/m68k/trace"
)

// options is the command's flag set, parsed by climate.
type options struct {
	Image string `name:"image" help:"Path to a raw binary image to load." required:"true"`
	Base  uint32 `name:"base" help:"Load address for the image." default:"0"`
	PC    uint32 `name:"pc" help:"Initial program counter; defaults to the load address."`
	Steps int    `name:"steps" help:"Maximum number of instructions to execute." default:"1000000"`

	Trace                    bool `name:"trace" help:"Log a structured instruction trace to stderr."`
	MaskAddressErrors        bool `name:"mask-address-errors" help:"Round odd-address accesses down instead of trapping."`
	PredecrementLowWordFirst bool `name:"predec-low-word-first" help:"Write the low word first on a predecrement Long store."`
}

func main() {
	log.SetFlags(0)

	var opts options
	if err := climate.Parse(&opts); err != nil {
		log.Fatalf("m68kctl: %v", err)
	}

	image, err := os.ReadFile(opts.Image)
	if err != nil {
		log.Fatalf("m68kctl: reading image: %v", err)
	}

	ram := bus.NewRAM()
	ram.Load(opts.Base, image)

	cfg := config.Default()
	cfg.EmulateAddressError = !opts.MaskAddressErrors
	cfg.PredecrementLowWordFirst = opts.PredecrementLowWordFirst
	cfg.LoadBase = opts.Base

	var cpu *m68k.CPU
	if opts.Trace {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tracer := trace.New(ram, logger, m68k.Callbacks{})
		cpu = m68k.New(ram, tracer.Callbacks())
	} else {
		cpu = m68k.New(ram, m68k.Callbacks{})
	}
	cfg.Apply(cpu)

	pc := opts.PC
	if pc == 0 {
		pc = opts.Base
	}
	reg := cpu.Registers()
	reg.PC = pc
	cpu.SetState(reg)

	executed := 0
	for ; executed < opts.Steps; executed++ {
		if cpu.Halted() {
			break
		}
		cpu.Step()
	}

	dumpRegisters(cpu.Registers())
	if cpu.Halted() {
		fmt.Fprintf(os.Stderr, "m68kctl: halted after %d instructions (double bus fault)\n", executed)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "m68kctl: stopped after %d instructions\n", executed)
}

func dumpRegisters(r m68k.Registers) {
	for i := 0; i < 8; i++ {
		fmt.Printf("D%d=%08X  A%d=%08X\n", i, r.D[i], i, r.A[i])
	}
	fmt.Printf("PC=%06X  SR=%04X  USP=%08X  SSP=%08X\n", r.PC, r.SR, r.USP, r.SSP)
}
