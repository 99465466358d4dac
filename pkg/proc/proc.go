package proc

import (
	"fmt"
	"os"
	"runtime"

	sys "golang.org/x/sys/unix"

	"github.com/mindbg/mindbg/pkg/logflags"
)

// Inferior represents the traced process. Holds onto the pid, process
// handle, breakpoint table and run state.
type Inferior struct {
	Pid         int
	Process     *os.Process
	BreakPoints map[uint64]*Breakpoint

	mem     memoryReadWriter
	status  *sys.WaitStatus
	exited  bool
	running bool

	ptraceChan     chan func()
	ptraceDoneChan chan interface{}
}

// New returns an initialized Inferior struct. It also starts the
// goroutine that services ptrace requests for this inferior; see
// handlePtraceFuncs.
func New(pid int) *Inferior {
	dbp := &Inferior{
		Pid:            pid,
		BreakPoints:    make(map[uint64]*Breakpoint),
		ptraceChan:     make(chan func()),
		ptraceDoneChan: make(chan interface{}),
	}
	dbp.mem = dbp
	go dbp.handlePtraceFuncs()
	return dbp
}

// ProcessExitedError indicates that the process has exited and contains both
// process id and exit status.
type ProcessExitedError struct {
	Pid    int
	Status int
}

func (pe ProcessExitedError) Error() string {
	return fmt.Sprintf("process %d has exited with status %d", pe.Pid, pe.Status)
}

// Exited returns whether the traced process has exited.
func (dbp *Inferior) Exited() bool {
	return dbp.exited
}

// Running returns whether the traced process is currently executing.
func (dbp *Inferior) Running() bool {
	return dbp.running
}

// Status returns the wait status recorded at the last stop or exit of
// the inferior. Nil before the first stop has been observed.
func (dbp *Inferior) Status() *sys.WaitStatus {
	return dbp.status
}

// Continue resumes the inferior from its current stop and blocks until
// it next stops or exits. If the inferior was stopped at an enabled
// breakpoint the trap byte is still in place when it resumes:
// breakpoints are single-shot traps, there is no step-over.
func (dbp *Inferior) Continue() error {
	if dbp.exited {
		return ProcessExitedError{Pid: dbp.Pid}
	}
	dbp.running = true
	defer func() { dbp.running = false }()
	if err := PtraceCont(dbp, 0); err != nil {
		return fmt.Errorf("could not resume pid %d: %s", dbp.Pid, err)
	}
	status, err := dbp.wait(dbp.Pid, 0)
	if err != nil {
		return err
	}
	if status.Exited() {
		dbp.postExit()
		return ProcessExitedError{Pid: dbp.Pid, Status: status.ExitStatus()}
	}
	logflags.InferiorLogger().Debugf("pid %d stopped, signal %d", dbp.Pid, status.StopSignal())
	return nil
}

// Kill kills the inferior's process group and reaps the inferior.
func (dbp *Inferior) Kill() error {
	if dbp.exited {
		return nil
	}
	if err := sys.Kill(-dbp.Pid, sys.SIGKILL); err != nil {
		return fmt.Errorf("could not deliver signal: %s", err)
	}
	if _, err := dbp.wait(dbp.Pid, 0); err != nil {
		return err
	}
	dbp.postExit()
	return nil
}

// Interrupt delivers SIGINT to the inferior. Failing to signal an
// already dead process is not an error: stopping the inferior at
// shutdown is best effort.
func (dbp *Inferior) Interrupt() {
	if dbp.exited {
		return
	}
	_ = sys.Kill(dbp.Pid, sys.SIGINT)
}

// RequestManualStop suspends the inferior with SIGSTOP, forcing a
// blocked Continue to observe a stop and return.
func (dbp *Inferior) RequestManualStop() {
	if dbp.exited {
		return
	}
	_ = sys.Kill(dbp.Pid, sys.SIGSTOP)
}

func (dbp *Inferior) postExit() {
	dbp.exited = true
	logflags.InferiorLogger().Debugf("pid %d exited", dbp.Pid)
}

func (dbp *Inferior) handlePtraceFuncs() {
	// We must ensure here that we are running on the same thread while
	// invoking the ptrace(2) syscall. This is due to the fact that ptrace(2)
	// expects all commands after PTRACE_ATTACH to come from the same thread.
	runtime.LockOSThread()

	for fn := range dbp.ptraceChan {
		fn()
		dbp.ptraceDoneChan <- nil
	}
}

func (dbp *Inferior) execPtraceFunc(fn func()) {
	dbp.ptraceChan <- fn
	<-dbp.ptraceDoneChan
}
