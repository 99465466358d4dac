package proc

import (
	"debug/elf"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	sys "golang.org/x/sys/unix"
)

var testBinary string

func TestMain(m *testing.M) {
	if runtime.GOOS != "linux" || runtime.GOARCH != "amd64" {
		fmt.Println("live inferior tests only run on linux/amd64")
		os.Exit(0)
	}
	dir, err := ioutil.TempDir("", "mindbg-proc-test")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	testBinary = filepath.Join(dir, "loopprog")
	out, err := exec.Command("go", "build", "-o", testBinary, "../../_fixtures/loopprog.go").CombinedOutput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build test binary: %v\n%s", err, out)
		os.Exit(1)
	}
	status := m.Run()
	os.RemoveAll(dir)
	os.Exit(status)
}

func launchTestProcess(t *testing.T) *Inferior {
	dbp, err := Launch([]string{testBinary})
	require.NoError(t, err)
	t.Cleanup(func() { dbp.Kill() })
	return dbp
}

func entryPoint(t *testing.T, path string) uint64 {
	f, err := elf.Open(path)
	require.NoError(t, err)
	defer f.Close()
	return f.Entry
}

func currentPC(dbp *Inferior) (uint64, error) {
	var (
		regs sys.PtraceRegs
		err  error
	)
	dbp.execPtraceFunc(func() { err = sys.PtraceGetRegs(dbp.Pid, &regs) })
	return regs.PC(), err
}

func TestLaunch(t *testing.T) {
	dbp := launchTestProcess(t)

	require.NotZero(t, dbp.Pid)
	require.False(t, dbp.Exited())
	// The initial trace-stop at execve must already have been observed.
	status := dbp.Status()
	require.NotNil(t, status)
	require.True(t, status.Stopped())
	require.Equal(t, sys.SIGTRAP, status.StopSignal())
}

func TestBreakpointLifecycle(t *testing.T) {
	dbp := launchTestProcess(t)
	entry := entryPoint(t, testBinary)

	bp, existed, err := dbp.ToggleBreakpoint(entry)
	require.NoError(t, err)
	require.False(t, existed)
	require.True(t, bp.Enabled)

	require.NoError(t, dbp.Continue())
	status := dbp.Status()
	require.True(t, status.Stopped())
	require.Equal(t, sys.SIGTRAP, status.StopSignal())

	// The trap byte sits on the first byte of the entry instruction, so
	// the inferior stops before executing anything past it.
	pc, err := currentPC(dbp)
	require.NoError(t, err)
	require.Equal(t, entry+1, pc)

	// Toggling off restores the exact original byte.
	bp, existed, err = dbp.ToggleBreakpoint(entry)
	require.NoError(t, err)
	require.True(t, existed)
	require.False(t, bp.Enabled)

	data, err := dbp.readMemory(uintptr(entry), 1)
	require.NoError(t, err)
	require.Equal(t, bp.OriginalByte, data[0])
}

func TestContinueAfterExit(t *testing.T) {
	dbp, err := Launch([]string{"/bin/true"})
	require.NoError(t, err)

	err = dbp.Continue()
	require.IsType(t, ProcessExitedError{}, err)
	require.True(t, dbp.Exited())

	// A second resume must fail the same way instead of touching the
	// dead process.
	err = dbp.Continue()
	require.IsType(t, ProcessExitedError{}, err)
}

func TestInterruptIgnoredAfterExit(t *testing.T) {
	dbp, err := Launch([]string{"/bin/true"})
	require.NoError(t, err)
	require.IsType(t, ProcessExitedError{}, dbp.Continue())

	// Must not panic or error; signalling a dead inferior is best effort.
	dbp.Interrupt()
}

func TestRequestManualStop(t *testing.T) {
	dbp := launchTestProcess(t)

	done := make(chan error, 1)
	go func() {
		// No breakpoints installed: only the manual stop can end this.
		done <- dbp.Continue()
	}()
	dbp.RequestManualStop()
	require.NoError(t, <-done)
	require.True(t, dbp.Status().Stopped())
	require.Equal(t, sys.SIGSTOP, dbp.Status().StopSignal())
}
