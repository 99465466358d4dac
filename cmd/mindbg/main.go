package main

import (
	"github.com/mindbg/mindbg/cmd/mindbg/cmds"
)

func main() {
	cmds.New().Execute()
}
