package calc

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uartfw/pkg/cli/sh"
)

var (
	// CalcCmd evaluates a postfix expression.
	CalcCmd = ishell.Cmd{
		Name:    "calc",
		Aliases: []string{"="},
		Help:    "EXPR, e.g. 1 3 + 5 * Sx x x *",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("EXPR required"))
				return
			}
			sh.DoCalc(c, strings.Join(c.Args, " "))
		}),
	}
)

func init() {
	sh.AddCmds(&CalcCmd)
}
