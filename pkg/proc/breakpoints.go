package proc

import "fmt"

// breakpointInstruction is INT 3, the one-byte software breakpoint trap
// instruction on x86.
const breakpointInstruction = 0xCC

// Breakpoint represents a single patched address in the inferior.
// OriginalByte holds the instruction byte the trap opcode replaced. It
// is captured once, when the breakpoint is first enabled, and is never
// overwritten by a later capture: re-reading it while the trap byte is
// resident would destroy the only copy of the original instruction.
type Breakpoint struct {
	Addr         uint64
	OriginalByte byte
	Enabled      bool
}

func (bp *Breakpoint) String() string {
	state := "disabled"
	if bp.Enabled {
		state = "enabled"
	}
	return fmt.Sprintf("Breakpoint at %#x (%s)", bp.Addr, state)
}

// createBreakpoint allocates a breakpoint at addr and immediately
// enables it.
func createBreakpoint(mem memoryReadWriter, addr uint64) (*Breakpoint, error) {
	bp := &Breakpoint{Addr: addr}
	if err := bp.Enable(mem); err != nil {
		return nil, err
	}
	return bp, nil
}

// Enable reads the machine word at bp.Addr, saves its low byte and
// writes the word back with the low byte replaced by the trap opcode.
// Only the low byte changes; the rest of the word the word-sized
// memory primitive touches is preserved exactly.
func (bp *Breakpoint) Enable(mem memoryReadWriter) error {
	word, err := readMemoryWord(mem, uintptr(bp.Addr))
	if err != nil {
		return err
	}
	if !bp.Enabled {
		bp.OriginalByte = byte(word & 0xff)
	}
	if err := writeMemoryWord(mem, uintptr(bp.Addr), (word &^ 0xff)|breakpointInstruction); err != nil {
		return err
	}
	bp.Enabled = true
	return nil
}

// Disable restores the saved original byte at bp.Addr, leaving the rest
// of the word untouched.
func (bp *Breakpoint) Disable(mem memoryReadWriter) error {
	word, err := readMemoryWord(mem, uintptr(bp.Addr))
	if err != nil {
		return err
	}
	if err := writeMemoryWord(mem, uintptr(bp.Addr), (word &^ 0xff)|uint64(bp.OriginalByte)); err != nil {
		return err
	}
	bp.Enabled = false
	return nil
}

// Toggle disables the breakpoint if it is enabled, and enables it
// otherwise.
func (bp *Breakpoint) Toggle(mem memoryReadWriter) error {
	if bp.Enabled {
		return bp.Disable(mem)
	}
	return bp.Enable(mem)
}

// ToggleBreakpoint flips the breakpoint at addr, creating an enabled one
// if none exists yet. The second return value reports whether a
// breakpoint already existed at addr before the call. Entries are never
// removed from the table; a disabled breakpoint stays present but inert.
func (dbp *Inferior) ToggleBreakpoint(addr uint64) (*Breakpoint, bool, error) {
	if dbp.exited {
		return nil, false, ProcessExitedError{Pid: dbp.Pid}
	}
	if bp, ok := dbp.BreakPoints[addr]; ok {
		if err := bp.Toggle(dbp.mem); err != nil {
			return nil, true, err
		}
		return bp, true, nil
	}
	bp, err := createBreakpoint(dbp.mem, addr)
	if err != nil {
		return nil, false, err
	}
	dbp.BreakPoints[addr] = bp
	return bp, false, nil
}

// BreakpointExists returns whether a breakpoint has been set for the
// given address.
func (dbp *Inferior) BreakpointExists(addr uint64) bool {
	_, ok := dbp.BreakPoints[addr]
	return ok
}
