package mnemonic

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uartfw/pkg/cli/sh"
	"github.com/robotalks/uartfw/pkg/mnemonic"
)

func valueCmd(name string, typ mnemonic.Type, help string) ishell.Cmd {
	return ishell.Cmd{
		Name: name,
		Help: help,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("VALUE required"))
				return
			}
			val, err := sh.ParseValue(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("Invalid VALUE: %v", err))
				return
			}
			sh.DoCommand(c, mnemonic.Command{Type: typ, Value: val})
		}),
	}
}

var (
	// GooCmd arms distance reports.
	GooCmd = valueCmd("goo", mnemonic.Goo, "TARGET")
	// SpeedCmd sets the rate.
	SpeedCmd = valueCmd("spd", mnemonic.Speed, "RATE")
	// AltitudeCmd sets the altitude sampling period.
	AltitudeCmd = valueCmd("alt", mnemonic.Altitude, "PERIOD(ms), 0 to stop")
	// ManualCmd toggles manual mode.
	ManualCmd = valueCmd("man", mnemonic.Manual, "0|1")
	// LEDCmd sets the LED code.
	LEDCmd = valueCmd("led", mnemonic.LED, "CODE(0-4)")

	// EndCmd terminates the device.
	EndCmd = ishell.Cmd{
		Name: "end",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, mnemonic.Command{Type: mnemonic.Terminate})
		}),
	}
)

func init() {
	sh.AddCmds(
		&GooCmd,
		&SpeedCmd,
		&AltitudeCmd,
		&ManualCmd,
		&LEDCmd,
		&EndCmd,
	)
}
