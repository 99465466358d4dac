package proc

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	isatty "github.com/mattn/go-isatty"
	sys "golang.org/x/sys/unix"

	"github.com/mindbg/mindbg/pkg/logflags"
)

const (
	personalityGetPersonality = 0xffffffff // argument to pass to personality syscall to get the current personality
	_ADDR_NO_RANDOMIZE        = 0x0040000  // ADDR_NO_RANDOMIZE linux constant
)

// Launch creates and begins tracing a new process. First entry in `cmd`
// is the program to run, and the rest are the arguments to be supplied
// to that process. The child requests tracing by its parent and replaces
// its image with the target; address space layout randomization is
// disabled for it so breakpoint addresses stay stable across relaunches
// of the same binary. Launch returns once the child's initial trace-stop
// at execve has been observed; no other ptrace request may be issued
// before that stop.
func Launch(cmd []string) (*Inferior, error) {
	var (
		process *exec.Cmd
		err     error
	)
	foreground := isatty.IsTerminal(os.Stdin.Fd())
	dbp := New(0)
	dbp.execPtraceFunc(func() {
		// The personality change is inherited across the fork and
		// reverted on the tracer side once the child is running.
		oldPersonality, _, perr := syscall.Syscall(sys.SYS_PERSONALITY, personalityGetPersonality, 0, 0)
		if perr == syscall.Errno(0) {
			syscall.Syscall(sys.SYS_PERSONALITY, oldPersonality|_ADDR_NO_RANDOMIZE, 0, 0)
			defer syscall.Syscall(sys.SYS_PERSONALITY, oldPersonality, 0, 0)
		}

		process = exec.Command(cmd[0])
		process.Args = cmd
		process.Stdin = os.Stdin
		process.Stdout = os.Stdout
		process.Stderr = os.Stderr
		process.SysProcAttr = &syscall.SysProcAttr{Ptrace: true, Setpgid: true, Foreground: foreground}
		if foreground {
			signal.Ignore(syscall.SIGTTOU, syscall.SIGTTIN)
		}
		err = process.Start()
	})
	if err != nil {
		return nil, err
	}
	dbp.Pid = process.Process.Pid
	dbp.Process = process.Process
	_, err = dbp.wait(dbp.Pid, 0)
	if err != nil {
		return nil, fmt.Errorf("waiting for target execve failed: %s", err)
	}
	logflags.InferiorLogger().Debugf("launched %s, pid %d", cmd[0], dbp.Pid)
	return dbp, nil
}

func (dbp *Inferior) wait(pid, options int) (*sys.WaitStatus, error) {
	var status sys.WaitStatus
	_, err := sys.Wait4(pid, &status, options, nil)
	if err != nil {
		return nil, err
	}
	dbp.status = &status
	return &status, nil
}
