package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/mindbg/mindbg/pkg/config"
	"github.com/mindbg/mindbg/pkg/proc"
)

const historyFile string = ".mindbg_history"

// Term represents the terminal running mindbg.
type Term struct {
	client Client
	conf   *config.Config
	prompt string
	line   *liner.State
	cmds   *Commands
}

// New returns a new Term.
func New(client Client, conf *config.Config) *Term {
	cmds := DebugCommands(client)
	if conf != nil && conf.Aliases != nil {
		cmds.Merge(conf.Aliases)
	}
	return &Term{
		client: client,
		conf:   conf,
		prompt: "(mindbg) ",
		line:   liner.NewLiner(),
		cmds:   cmds,
	}
}

// Run begins the interactive command loop. Returns the exit status of
// the whole tool: 0 on an explicit quit.
func (t *Term) Run() (int, error) {
	defer t.line.Close()

	// Suspend the inferior on SIGINT. A blocked `continue` only
	// returns once the inferior stops; this is the way to force that.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT)
	go func() {
		for range ch {
			fmt.Println("received SIGINT, stopping inferior")
			t.client.RequestManualStop()
		}
	}()

	t.line.SetCompleter(func(line string) (c []string) {
		for _, cmd := range t.cmds.cmds {
			for _, alias := range cmd.aliases {
				if strings.HasPrefix(alias, strings.ToLower(line)) {
					c = append(c, alias)
				}
			}
		}
		return
	})

	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Printf("Unable to load history file: %v.\n", err)
	}

	f, err := os.Open(fullHistoryFile)
	if err != nil {
		f, err = os.Create(fullHistoryFile)
		if err != nil {
			fmt.Printf("Unable to open history file: %v. History will not be saved for this session.\n", err)
		}
	}
	if f != nil {
		t.line.ReadHistory(f)
		f.Close()
	}

	fmt.Println("Type 'help' for list of commands.")

	for {
		cmdstr, err := t.promptForInput()
		if err != nil {
			if err == io.EOF {
				fmt.Println("exit")
				return t.handleExit()
			}
			return 1, fmt.Errorf("prompt for input failed: %v", err)
		}

		cmdstr, args := parseCommand(cmdstr)
		cmd := t.cmds.Find(cmdstr)
		if err := cmd(t, args); err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return t.handleExit()
			}
			var merr proc.MemoryError
			if errors.As(err, &merr) {
				// Failures touching the inferior's memory are not
				// recoverable mid-session.
				fmt.Fprintf(os.Stderr, "fatal: %s\n", err)
				return 1, nil
			}
			if _, ok := err.(proc.ProcessExitedError); ok {
				fmt.Fprintln(os.Stderr, err.Error())
				continue
			}
			fmt.Fprintf(os.Stderr, "Command failed: %s\n", err)
		}
	}
}

func (t *Term) handleExit() (int, error) {
	if f, err := os.OpenFile(historyPath(), os.O_RDWR|os.O_CREATE, 0600); err == nil {
		_, err = t.line.WriteHistory(f)
		if err != nil {
			fmt.Printf("readline history error: %v\n", err)
		}
		f.Close()
	}

	t.client.Interrupt()
	return 0, nil
}

func historyPath() string {
	p, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		return historyFile
	}
	return p
}

func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}
	l = strings.TrimSuffix(l, "\n")
	if l != "" {
		t.line.AppendHistory(l)
	}
	return l, nil
}

// parseCommand splits an input line into the command token and the
// remainder of the line.
func parseCommand(cmdstr string) (string, string) {
	vals := strings.SplitN(strings.TrimSpace(cmdstr), " ", 2)
	if len(vals) == 1 {
		return vals[0], ""
	}
	return vals[0], strings.TrimSpace(vals[1])
}
