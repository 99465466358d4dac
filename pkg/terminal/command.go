// Package terminal implements functions for responding to user input
// and dispatching to appropriate backend commands.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cosiner/argv"
	sys "golang.org/x/sys/unix"

	"github.com/mindbg/mindbg/pkg/proc"
)

// Client is the surface of the debugging session the terminal commands
// drive. The terminal performs no tracing I/O itself.
type Client interface {
	ToggleBreakpoint(addr uint64) (*proc.Breakpoint, bool, error)
	Continue() error
	Restart(newArgs []string) error
	StopSignal() (sys.Signal, bool)
	RequestManualStop()
	Interrupt()
	Pid() int
}

type cmdfunc func(t *Term, args string) error

type command struct {
	aliases []string
	helpMsg string
	cmdFn   cmdfunc
}

// Returns true if the command string matches one of the aliases for
// this command.
func (c command) match(cmdstr string) bool {
	for _, v := range c.aliases {
		if v == cmdstr {
			return true
		}
	}
	return false
}

// Commands represents the commands for the mindbg terminal process.
type Commands struct {
	cmds   []command
	client Client
}

// DebugCommands returns a Commands struct with default commands defined.
func DebugCommands(client Client) *Commands {
	c := &Commands{client: client}

	c.cmds = []command{
		{aliases: []string{"help", "h"}, cmdFn: c.help, helpMsg: "Prints the help message."},
		{aliases: []string{"break", "b"}, cmdFn: breakpoint, helpMsg: "break <address>. Toggles a breakpoint at the given hex address, creating an enabled one on first use."},
		{aliases: []string{"continue", "c"}, cmdFn: cont, helpMsg: "Run until breakpoint or program termination."},
		{aliases: []string{"restart", "r"}, cmdFn: restart, helpMsg: "restart [newargs...]. Relaunches the target, reinstalling enabled breakpoints."},
		{aliases: []string{"exit", "quit", "q"}, cmdFn: exitCommand, helpMsg: "Exit the debugger."},
	}

	return c
}

// Merge takes aliases defined in the config struct and merges them with
// the default aliases.
func (c *Commands) Merge(allAliases map[string][]string) {
	for i := range c.cmds {
		if aliases, ok := allAliases[c.cmds[i].aliases[0]]; ok {
			c.cmds[i].aliases = append(c.cmds[i].aliases, aliases...)
		}
	}
}

// Find will look up the command function for the given command input.
// Returns a no-op for the empty string and an "unknown command"
// reporter for anything unrecognized.
func (c *Commands) Find(cmdstr string) cmdfunc {
	if cmdstr == "" {
		return nullCommand
	}
	for _, v := range c.cmds {
		if v.match(cmdstr) {
			return v.cmdFn
		}
	}
	return noCmdAvailable
}

// ExitRequestError is returned when the user exits the debugger.
type ExitRequestError struct{}

func (ere ExitRequestError) Error() string {
	return "exit"
}

func noCmdAvailable(t *Term, args string) error {
	return errors.New("unknown command")
}

func nullCommand(t *Term, args string) error {
	return nil
}

func (c *Commands) help(t *Term, args string) error {
	fmt.Println("The following commands are available:")
	w := new(tabwriter.Writer)
	w.Init(os.Stdout, 0, 8, 0, '-', 0)
	for _, cmd := range c.cmds {
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), cmd.helpMsg)
		} else {
			fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], cmd.helpMsg)
		}
	}
	return w.Flush()
}

// parseAddress converts a hex address argument, with or without the 0x
// prefix, to the key used by the breakpoint table. Both spellings of
// the same address resolve to the same key.
func parseAddress(s string) (uint64, error) {
	addr, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return addr, nil
}

func breakpoint(t *Term, args string) error {
	argsv := strings.Fields(args)
	if len(argsv) != 1 {
		return errors.New("usage: break <address>")
	}
	addr, err := parseAddress(argsv[0])
	if err != nil {
		return err
	}
	bp, existed, err := t.client.ToggleBreakpoint(addr)
	if err != nil {
		return err
	}
	if !existed {
		fmt.Printf("Breakpoint created at %#x\n", bp.Addr)
		return nil
	}
	fmt.Printf("%s\n", bp)
	return nil
}

func cont(t *Term, args string) error {
	if strings.TrimSpace(args) != "" {
		return errors.New("usage: continue")
	}
	if err := t.client.Continue(); err != nil {
		return err
	}
	if sig, ok := t.client.StopSignal(); ok {
		fmt.Printf("inferior %d stopped (signal: %s)\n", t.client.Pid(), sig)
	}
	return nil
}

func restart(t *Term, args string) error {
	newArgs, err := parseNewArgv(args)
	if err != nil {
		return err
	}
	if err := t.client.Restart(newArgs); err != nil {
		return err
	}
	fmt.Printf("Process restarted with PID %d\n", t.client.Pid())
	return nil
}

func parseNewArgv(args string) ([]string, error) {
	if args == "" {
		return nil, nil
	}
	v, err := argv.Argv([]rune(args), argv.ParseEnv(os.Environ()), nil)
	if err != nil {
		return nil, err
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("illegal commandline '%s'", args)
	}
	return v[0], nil
}

func exitCommand(t *Term, args string) error {
	if strings.TrimSpace(args) != "" {
		return errors.New("usage: quit")
	}
	return ExitRequestError{}
}
