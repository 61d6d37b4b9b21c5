package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uartfw/pkg/env"
	"github.com/robotalks/uartfw/pkg/firmware"
	"github.com/robotalks/uartfw/pkg/host"
	"github.com/robotalks/uartfw/pkg/telemetry/mqtt"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Grammar     string
	Timeout     time.Duration

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Conn
}

// Conn is a line with a running Link.
type Conn struct {
	Ctx    context.Context
	Cancel func()
	Port   string
	Line   io.ReadWriteCloser
	Link   *host.Link
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config, grammar string) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Grammar:     grammar,
		Timeout:     time.Second,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// FormatReport formats a report for display.
func (s *Shell) FormatReport(r *host.Report) string {
	if s.OutputJSON {
		out, err := json.Marshal(mqtt.ReportMessage(s.Config.ID(), r))
		if err != nil {
			return err.Error()
		}
		return string(out)
	}
	return strings.TrimSuffix(r.String(), "\n")
}

// HandleReport implements host.ReportHandler.
func (s *Shell) HandleReport(ctx context.Context, r *host.Report) {
	s.Shell.Println(s.FormatReport(r))
}

// Connect opens the line on port and starts a Link.
func (s *Shell) Connect(port string) error {
	conf := *s.Config
	conf.Port = port
	line, err := conf.OpenLine()
	if err != nil {
		return err
	}
	link, err := host.NewLink(line, s.Grammar)
	if err != nil {
		line.Close()
		return err
	}
	link.Handler = s
	conn := &Conn{Port: port, Line: line, Link: link}
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	s.Disconnect()
	s.Conn = conn
	go func() {
		if err := link.Run(conn.Ctx); err != nil && err != context.Canceled {
			s.Shell.Printf("line %s: %v\n", port, err)
		}
	}()
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", port))
	return nil
}

// Disconnect closes current line.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Cancel()
		s.Conn.Line.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if err := s.Connect(s.Config.Port); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Port, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ports, err := listPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// ConnectCmd connects a line.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "PORT|ws://HOST:PORT/PATH",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			port := s.Config.Port
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if port == "" {
				c.Err(fmt.Errorf("PORT required"))
				return
			}
			if err := s.Connect(port); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current line.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig(), firmware.Default().Grammar).WithAutoConnect(true).Run(flag.Args()...)
}
