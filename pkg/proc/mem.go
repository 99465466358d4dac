package proc

import (
	"encoding/binary"
	"fmt"

	sys "golang.org/x/sys/unix"
)

// wordSize is the unit the underlying memory access primitive operates
// on. Breakpoint patching reads and writes whole words so neighboring
// bytes are carried through unchanged.
const wordSize = 8

type memoryReadWriter interface {
	readMemory(addr uintptr, size int) (data []byte, err error)
	writeMemory(addr uintptr, data []byte) (written int, err error)
}

func readMemoryWord(mem memoryReadWriter, addr uintptr) (uint64, error) {
	data, err := mem.readMemory(addr, wordSize)
	if err != nil {
		return 0, err
	}
	if len(data) < wordSize {
		return 0, memoryError(addr, sys.EIO)
	}
	return binary.LittleEndian.Uint64(data), nil
}

func writeMemoryWord(mem memoryReadWriter, addr uintptr, word uint64) error {
	data := make([]byte, wordSize)
	binary.LittleEndian.PutUint64(data, word)
	_, err := mem.writeMemory(addr, data)
	return err
}

// MemoryErrorKind classifies failures of the inferior memory primitives.
type MemoryErrorKind int

const (
	// ProcessGone means the inferior process no longer exists.
	ProcessGone MemoryErrorKind = iota
	// AddressNotMapped means the address is not mapped in the
	// inferior's address space.
	AddressNotMapped
	// PermissionDenied means the tracer may not access the address.
	PermissionDenied
	// UnknownMemoryError covers every other errno.
	UnknownMemoryError
)

func (k MemoryErrorKind) String() string {
	switch k {
	case ProcessGone:
		return "process gone"
	case AddressNotMapped:
		return "address not mapped"
	case PermissionDenied:
		return "permission denied"
	}
	return "unknown"
}

// MemoryError is returned when a peek or poke on the inferior fails.
type MemoryError struct {
	Addr uintptr
	Kind MemoryErrorKind
	Err  error
}

func (me MemoryError) Error() string {
	return fmt.Sprintf("could not access memory at %#x: %s (%s)", me.Addr, me.Kind, me.Err)
}

func (me MemoryError) Unwrap() error {
	return me.Err
}

func memoryError(addr uintptr, err error) error {
	kind := UnknownMemoryError
	switch err {
	case sys.ESRCH:
		kind = ProcessGone
	case sys.EIO, sys.EFAULT:
		kind = AddressNotMapped
	case sys.EPERM, sys.EACCES:
		kind = PermissionDenied
	}
	return MemoryError{Addr: addr, Kind: kind, Err: err}
}
