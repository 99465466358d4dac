// Package debugger composes the traced process and its breakpoint
// table behind the operations the terminal dispatches to.
package debugger

import (
	"fmt"

	sys "golang.org/x/sys/unix"

	"github.com/mindbg/mindbg/pkg/logflags"
	"github.com/mindbg/mindbg/pkg/proc"
)

// Config holds the configuration of the debugging session.
type Config struct {
	// ProcessArgs is the target program followed by its arguments.
	ProcessArgs []string
}

// Debugger owns the inferior for the lifetime of the session. Every
// tracing operation flows through it; nothing else touches the
// inferior's memory or process state.
type Debugger struct {
	config *Config
	inf    *proc.Inferior
}

// New launches the target described by config and returns a debugger
// bound to the new inferior.
func New(config *Config) (*Debugger, error) {
	d := &Debugger{config: config}
	inf, err := proc.Launch(config.ProcessArgs)
	if err != nil {
		return nil, fmt.Errorf("could not launch process: %s", err)
	}
	d.inf = inf
	logflags.DebuggerLogger().Debugf("launched process with args: %v", config.ProcessArgs)
	return d, nil
}

// Pid returns the process id of the current inferior.
func (d *Debugger) Pid() int {
	return d.inf.Pid
}

// ToggleBreakpoint flips the breakpoint at addr, creating an enabled
// one first if needed. Reports whether a breakpoint already existed at
// that address.
func (d *Debugger) ToggleBreakpoint(addr uint64) (*proc.Breakpoint, bool, error) {
	bp, existed, err := d.inf.ToggleBreakpoint(addr)
	if err != nil {
		return nil, existed, err
	}
	logflags.DebuggerLogger().Debugf("toggled %s (existed %t)", bp, existed)
	return bp, existed, nil
}

// Continue resumes the inferior and blocks until it stops or exits.
func (d *Debugger) Continue() error {
	return d.inf.Continue()
}

// StopSignal reports the signal that stopped the inferior last, if it
// is currently in a signal stop.
func (d *Debugger) StopSignal() (sys.Signal, bool) {
	status := d.inf.Status()
	if status == nil || !status.Stopped() {
		return 0, false
	}
	return status.StopSignal(), true
}

// Restart kills the current inferior and relaunches the target,
// reinstalling every breakpoint that was enabled. Addresses recorded in
// the table stay valid because the launcher disables address space
// layout randomization. If newArgs is non-empty it replaces the
// arguments passed to the target.
func (d *Debugger) Restart(newArgs []string) error {
	if len(newArgs) > 0 {
		d.config.ProcessArgs = append([]string{d.config.ProcessArgs[0]}, newArgs...)
	}
	if !d.inf.Exited() {
		if err := d.inf.Kill(); err != nil {
			return fmt.Errorf("could not kill process %d: %s", d.inf.Pid, err)
		}
	}
	inf, err := proc.Launch(d.config.ProcessArgs)
	if err != nil {
		return fmt.Errorf("could not launch process: %s", err)
	}
	for addr, bp := range d.inf.BreakPoints {
		if !bp.Enabled {
			continue
		}
		if _, _, err := inf.ToggleBreakpoint(addr); err != nil {
			return err
		}
	}
	d.inf = inf
	logflags.DebuggerLogger().Debugf("restarted as pid %d", inf.Pid)
	return nil
}

// RequestManualStop suspends a running inferior so a blocked Continue
// returns.
func (d *Debugger) RequestManualStop() {
	d.inf.RequestManualStop()
}

// Interrupt signals the inferior to stop on session shutdown. Best
// effort: a dead inferior is ignored.
func (d *Debugger) Interrupt() {
	d.inf.Interrupt()
}
