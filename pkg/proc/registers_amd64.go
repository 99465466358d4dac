package proc

// Register identifies a machine register of the target. Values follow
// the order registers appear in the amd64 user_regs_struct.
type Register int

const (
	R15 Register = iota
	R14
	R13
	R12
	Rbp
	Rbx
	R11
	R10
	R9
	R8
	Rax
	Rcx
	Rdx
	Rsi
	Rdi
	OrigRax
	Rip
	Cs
	Rflags
	Rsp
	Ss
	FsBase
	GsBase
	Ds
	Es
	Fs
	Gs
)

// DwarfNumNone marks registers that have no DWARF register number
// assigned by the ABI.
const DwarfNumNone = -1

// RegisterDescriptor ties a machine register to the DWARF register
// number debug information uses to describe register locations, along
// with its display name.
type RegisterDescriptor struct {
	Reg      Register
	DwarfNum int
	Name     string
}

// The mapping between hardware registers and DWARF registers is
// specified in the System V ABI AMD64 Architecture Processor
// Supplement, figure 3.36. Built once at program start, never mutated.
var amd64Registers = [...]RegisterDescriptor{
	{R15, 15, "r15"},
	{R14, 14, "r14"},
	{R13, 13, "r13"},
	{R12, 12, "r12"},
	{Rbp, 6, "rbp"},
	{Rbx, 3, "rbx"},
	{R11, 11, "r11"},
	{R10, 10, "r10"},
	{R9, 9, "r9"},
	{R8, 8, "r8"},
	{Rax, 0, "rax"},
	{Rcx, 2, "rcx"},
	{Rdx, 1, "rdx"},
	{Rsi, 4, "rsi"},
	{Rdi, 5, "rdi"},
	{OrigRax, DwarfNumNone, "orig_rax"},
	{Rip, DwarfNumNone, "rip"},
	{Cs, 51, "cs"},
	{Rflags, 49, "eflags"},
	{Rsp, 7, "rsp"},
	{Ss, 52, "ss"},
	{FsBase, 58, "fs_base"},
	{GsBase, 59, "gs_base"},
	{Ds, 53, "ds"},
	{Es, 50, "es"},
	{Fs, 54, "fs"},
	{Gs, 55, "gs"},
}

// AMD64Registers returns the full descriptor table in user_regs_struct
// order.
func AMD64Registers() []RegisterDescriptor {
	return amd64Registers[:]
}

// LookupRegister returns the descriptor for reg.
func LookupRegister(reg Register) (RegisterDescriptor, bool) {
	for _, d := range amd64Registers {
		if d.Reg == reg {
			return d, true
		}
	}
	return RegisterDescriptor{}, false
}

// RegisterByDwarfNum returns the descriptor carrying the given DWARF
// register number. Passing DwarfNumNone never matches.
func RegisterByDwarfNum(num int) (RegisterDescriptor, bool) {
	if num == DwarfNumNone {
		return RegisterDescriptor{}, false
	}
	for _, d := range amd64Registers {
		if d.DwarfNum == num {
			return d, true
		}
	}
	return RegisterDescriptor{}, false
}

// RegisterByName returns the descriptor with the given display name.
func RegisterByName(name string) (RegisterDescriptor, bool) {
	for _, d := range amd64Registers {
		if d.Name == name {
			return d, true
		}
	}
	return RegisterDescriptor{}, false
}
