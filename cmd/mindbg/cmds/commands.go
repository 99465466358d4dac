// Package cmds implements the command line interface of mindbg.
package cmds

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mindbg/mindbg/pkg/config"
	"github.com/mindbg/mindbg/pkg/debugger"
	"github.com/mindbg/mindbg/pkg/logflags"
	"github.com/mindbg/mindbg/pkg/terminal"
	"github.com/mindbg/mindbg/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should
	// produce debug output.
	logOutput string

	conf *config.Config
)

const mindbgCommandLongDesc = `mindbg is a minimal native-process debugger.

It launches the target executable as a traced child process with address
space layout randomization disabled, and drives it through software
breakpoints toggled at raw hex addresses.`

// New returns an initialized command tree.
func New() *cobra.Command {
	conf = config.LoadConfig()

	rootCommand := &cobra.Command{
		Use:   "mindbg <program> [args...]",
		Short: "mindbg is a minimal native-process debugger.",
		Long:  mindbgCommandLongDesc,
		Args:  cobra.ArbitraryArgs,
		Run:   rootCmd,
	}
	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable debug logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", "Comma separated list of components that should produce debug output (inferior,debugger).")

	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mindbg %s\n", version.MindbgVersion)
		},
	}
	rootCommand.AddCommand(versionCommand)

	return rootCommand
}

func rootCmd(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		// Nothing to debug; print usage and exit without launching.
		cmd.Usage()
		return
	}
	os.Exit(execute(args))
}

func execute(processArgs []string) int {
	if err := logflags.Setup(log, logOutput); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	dbg, err := debugger.New(&debugger.Config{ProcessArgs: processArgs})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	fmt.Printf("Process %d launched\n", dbg.Pid())

	term := terminal.New(dbg, conf)
	status, err := term.Run()
	if err != nil {
		fmt.Println(err)
	}
	return status
}
