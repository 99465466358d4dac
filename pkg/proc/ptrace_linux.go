package proc

import (
	sys "golang.org/x/sys/unix"
)

// PtraceCont executes ptrace PTRACE_CONT on the pinned tracer thread.
func PtraceCont(dbp *Inferior, sig int) (err error) {
	dbp.execPtraceFunc(func() { err = sys.PtraceCont(dbp.Pid, sig) })
	return
}

func (dbp *Inferior) readMemory(addr uintptr, size int) ([]byte, error) {
	var (
		n   int
		err error
	)
	data := make([]byte, size)
	dbp.execPtraceFunc(func() { n, err = sys.PtracePeekData(dbp.Pid, addr, data) })
	if err != nil {
		return nil, memoryError(addr, err)
	}
	return data[:n], nil
}

func (dbp *Inferior) writeMemory(addr uintptr, data []byte) (int, error) {
	var (
		n   int
		err error
	)
	dbp.execPtraceFunc(func() { n, err = sys.PtracePokeData(dbp.Pid, addr, data) })
	if err != nil {
		return 0, memoryError(addr, err)
	}
	return n, nil
}
