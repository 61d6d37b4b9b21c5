package sh

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uartfw/pkg/mnemonic"
	"github.com/robotalks/uartfw/pkg/telemetry/msgs"
	"github.com/robotalks/uartfw/pkg/uart"
)

var listPorts = uart.SerialPorts

// ParseValue parses a command value in decimal, or hex with 0x prefix.
func ParseValue(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// DoCommand sends a mnemonic command. Reports arrive asynchronously.
func DoCommand(c *ishell.Context, cmd mnemonic.Command) error {
	s := ShellFrom(c)
	if err := s.Conn.Link.Send(cmd); err != nil {
		c.Err(err)
		return err
	}
	if !s.OutputJSON {
		c.Println("OK")
	}
	return nil
}

// DoCalc evaluates expr and prints the reply.
func DoCalc(c *ishell.Context, expr string) error {
	s := ShellFrom(c)
	ctx, cancel := context.WithTimeout(s.Conn.Ctx, s.Timeout)
	defer cancel()
	resp, err := s.Conn.Link.Calc(ctx, expr)
	if err != nil {
		c.Err(err)
		return err
	}
	if s.OutputJSON {
		out, err := json.Marshal(&msgs.CalcResult{
			PacketID: uint32(resp.ID),
			Stack:    resp.Stack,
			Failure:  resp.Failure,
			Echo:     resp.Echo,
		})
		if err != nil {
			c.Err(err)
			return err
		}
		c.Println(string(out))
		return nil
	}
	c.Print(resp.String())
	return nil
}
