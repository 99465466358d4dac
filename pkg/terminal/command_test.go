package terminal

import (
	"testing"

	"github.com/stretchr/testify/require"
	sys "golang.org/x/sys/unix"

	"github.com/mindbg/mindbg/pkg/proc"
)

type fakeClient struct {
	bps         map[uint64]*proc.Breakpoint
	toggles     []uint64
	continues   int
	restarts    [][]string
	manualStops int
	interrupts  int
}

func (f *fakeClient) ToggleBreakpoint(addr uint64) (*proc.Breakpoint, bool, error) {
	f.toggles = append(f.toggles, addr)
	if f.bps == nil {
		f.bps = make(map[uint64]*proc.Breakpoint)
	}
	if bp, ok := f.bps[addr]; ok {
		bp.Enabled = !bp.Enabled
		return bp, true, nil
	}
	bp := &proc.Breakpoint{Addr: addr, Enabled: true}
	f.bps[addr] = bp
	return bp, false, nil
}

func (f *fakeClient) Continue() error { f.continues++; return nil }

func (f *fakeClient) Restart(newArgs []string) error {
	f.restarts = append(f.restarts, newArgs)
	return nil
}

func (f *fakeClient) StopSignal() (sys.Signal, bool) { return sys.SIGTRAP, true }
func (f *fakeClient) RequestManualStop()             { f.manualStops++ }
func (f *fakeClient) Interrupt()                     { f.interrupts++ }
func (f *fakeClient) Pid() int                       { return 1 }

func newTestTerm() (*Term, *fakeClient) {
	client := &fakeClient{}
	return &Term{client: client, cmds: DebugCommands(client)}, client
}

func TestBreakCommandArity(t *testing.T) {
	term, client := newTestTerm()
	cmd := term.cmds.Find("break")

	for _, args := range []string{"", "0x1000 0x2000", "a b c"} {
		err := cmd(term, args)
		require.Error(t, err, "args %q", args)
		require.Contains(t, err.Error(), "usage: break")
	}
	require.Empty(t, client.toggles)
}

func TestContinueCommandArity(t *testing.T) {
	term, client := newTestTerm()
	cmd := term.cmds.Find("continue")

	err := cmd(term, "now")
	require.Error(t, err)
	require.Contains(t, err.Error(), "usage: continue")
	require.Zero(t, client.continues)
}

func TestExitCommandArity(t *testing.T) {
	term, client := newTestTerm()
	cmd := term.cmds.Find("quit")

	err := cmd(term, "0")
	require.Error(t, err)
	_, isExit := err.(ExitRequestError)
	require.False(t, isExit)
	require.Zero(t, client.interrupts)
}

func TestExitCommand(t *testing.T) {
	term, _ := newTestTerm()
	for _, alias := range []string{"exit", "quit", "q"} {
		err := term.cmds.Find(alias)(term, "")
		require.IsType(t, ExitRequestError{}, err)
	}
}

func TestUnknownCommand(t *testing.T) {
	term, client := newTestTerm()
	err := term.cmds.Find("foobar")(term, "")
	require.EqualError(t, err, "unknown command")
	require.Empty(t, client.toggles)
	require.Zero(t, client.continues)
}

func TestEmptyCommandIsNoop(t *testing.T) {
	term, client := newTestTerm()
	require.NoError(t, term.cmds.Find("")(term, ""))
	require.Empty(t, client.toggles)
}

func TestBreakAddressNormalization(t *testing.T) {
	term, client := newTestTerm()
	cmd := term.cmds.Find("break")

	require.NoError(t, cmd(term, "0x1000"))
	require.NoError(t, cmd(term, "1000"))

	require.Len(t, client.toggles, 2)
	require.Equal(t, client.toggles[0], client.toggles[1])
	require.Equal(t, uint64(0x1000), client.toggles[0])
	// Both spellings resolve to one table entry.
	require.Len(t, client.bps, 1)
}

func TestBreakInvalidAddress(t *testing.T) {
	term, client := newTestTerm()
	err := term.cmds.Find("break")(term, "zzz")
	require.Error(t, err)
	require.Empty(t, client.toggles)
}

func TestContinueCommand(t *testing.T) {
	term, client := newTestTerm()
	require.NoError(t, term.cmds.Find("c")(term, ""))
	require.Equal(t, 1, client.continues)
}

func TestRestartCommandArgs(t *testing.T) {
	term, client := newTestTerm()
	cmd := term.cmds.Find("restart")

	require.NoError(t, cmd(term, ""))
	require.NoError(t, cmd(term, `foo "bar baz"`))

	require.Len(t, client.restarts, 2)
	require.Nil(t, client.restarts[0])
	require.Equal(t, []string{"foo", "bar baz"}, client.restarts[1])
}

func TestMergeAliases(t *testing.T) {
	term, client := newTestTerm()
	term.cmds.Merge(map[string][]string{"break": {"bp"}})

	require.NoError(t, term.cmds.Find("bp")(term, "400000"))
	require.Equal(t, []uint64{0x400000}, client.toggles)
}

func TestParseCommand(t *testing.T) {
	for _, tc := range []struct {
		line string
		cmd  string
		args string
	}{
		{"break 0x1000", "break", "0x1000"},
		{"  continue  ", "continue", ""},
		{"restart foo bar", "restart", "foo bar"},
		{"", "", ""},
	} {
		cmd, args := parseCommand(tc.line)
		require.Equal(t, tc.cmd, cmd)
		require.Equal(t, tc.args, args)
	}
}

func TestParseAddress(t *testing.T) {
	a, err := parseAddress("0xdeadbeef")
	require.NoError(t, err)
	b, err2 := parseAddress("deadbeef")
	require.NoError(t, err2)
	require.Equal(t, a, b)

	_, err = parseAddress("0x")
	require.Error(t, err)
	_, err = parseAddress("ghij")
	require.Error(t, err)
}
