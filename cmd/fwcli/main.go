package main

import (
	"github.com/robotalks/uartfw/pkg/cli/sh"
	"github.com/robotalks/uartfw/pkg/env"
	"github.com/robotalks/uartfw/pkg/firmware"

	_ "github.com/robotalks/uartfw/pkg/cli/cmds/calc"
	_ "github.com/robotalks/uartfw/pkg/cli/cmds/mnemonic"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
	firmware.SetupGrammarFlag()
}

func main() {
	sh.Main()
}
