package proc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterTableShape(t *testing.T) {
	regs := AMD64Registers()
	require.Len(t, regs, 27)

	// user_regs_struct order: r15 first, gs last.
	require.Equal(t, "r15", regs[0].Name)
	require.Equal(t, "gs", regs[len(regs)-1].Name)

	// DWARF numbers are unique apart from the sentinel.
	seen := make(map[int]string)
	for _, d := range regs {
		if d.DwarfNum == DwarfNumNone {
			continue
		}
		prev, dup := seen[d.DwarfNum]
		require.False(t, dup, "dwarf number %d assigned to both %s and %s", d.DwarfNum, prev, d.Name)
		seen[d.DwarfNum] = d.Name
	}
}

func TestLookupRegister(t *testing.T) {
	d, ok := LookupRegister(Rax)
	require.True(t, ok)
	require.Equal(t, 0, d.DwarfNum)
	require.Equal(t, "rax", d.Name)

	d, ok = LookupRegister(Rip)
	require.True(t, ok)
	require.Equal(t, DwarfNumNone, d.DwarfNum)

	_, ok = LookupRegister(Register(100))
	require.False(t, ok)
}

func TestRegisterByDwarfNum(t *testing.T) {
	d, ok := RegisterByDwarfNum(0)
	require.True(t, ok)
	require.Equal(t, Rax, d.Reg)

	d, ok = RegisterByDwarfNum(49)
	require.True(t, ok)
	require.Equal(t, Rflags, d.Reg)
	require.Equal(t, "eflags", d.Name)

	// The sentinel is not a real DWARF number and never matches.
	_, ok = RegisterByDwarfNum(DwarfNumNone)
	require.False(t, ok)

	_, ok = RegisterByDwarfNum(1000)
	require.False(t, ok)
}

func TestRegisterByName(t *testing.T) {
	d, ok := RegisterByName("fs_base")
	require.True(t, ok)
	require.Equal(t, FsBase, d.Reg)
	require.Equal(t, 58, d.DwarfNum)

	_, ok = RegisterByName("xmm0")
	require.False(t, ok)
}
