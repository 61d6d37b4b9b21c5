package firmware

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robotalks/uartfw/pkg/fault"
	"github.com/robotalks/uartfw/pkg/mnemonic"
	"github.com/robotalks/uartfw/pkg/uart"
)

// Grammar names.
const (
	GrammarMnemonic = "mnemonic"
	GrammarCalc     = "calc"
)

// Config selects the protocol version and timing of the firmware.
type Config struct {
	Grammar      string
	TickInterval time.Duration
	// Altitude is the fixed ADC reading reported by ALT, -1 leaves
	// sampling without a source.
	Altitude int
}

var defaultConfig = Config{
	Grammar:      GrammarMnemonic,
	TickInterval: 100 * time.Millisecond,
	Altitude:     -1,
}

func init() {
	if val := os.Getenv("UARTFW_GRAMMAR"); val != "" {
		defaultConfig.Grammar = val
	}
}

// SetupGrammarFlag sets the grammar flag only, for host tools.
func SetupGrammarFlag() {
	flag.StringVar(&defaultConfig.Grammar, "grammar", defaultConfig.Grammar, "Packet grammar: mnemonic or calc")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	SetupGrammarFlag()
	flag.DurationVar(&defaultConfig.TickInterval, "tick", defaultConfig.TickInterval, "Timer interrupt period, 0 to disable")
	flag.IntVar(&defaultConfig.Altitude, "adc", defaultConfig.Altitude, "Simulated 10 bit altitude ADC reading")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewGrammar creates the configured grammar.
func (c *Config) NewGrammar() (PacketGrammar, error) {
	switch c.Grammar {
	case GrammarMnemonic:
		g := NewMnemonicGrammar(mnemonic.LogOutputs{})
		if raw := c.Altitude; raw >= 0 {
			g.Sampler = SamplerFunc(func() int { return raw })
		}
		return g, nil
	case GrammarCalc:
		return NewCalcGrammar(), nil
	}
	return nil, fmt.Errorf("unknown grammar %q", c.Grammar)
}

// NewFirmware creates a Firmware on hw.
func (c *Config) NewFirmware(hw uart.Hardware) (*Firmware, error) {
	g, err := c.NewGrammar()
	if err != nil {
		return nil, err
	}
	fw := New(hw, g, fault.LogIndicator{})
	fw.TickInterval = c.TickInterval
	return fw, nil
}

// MustNewFirmware creates a Firmware and fails on error.
func (c *Config) MustNewFirmware(hw uart.Hardware) *Firmware {
	fw, err := c.NewFirmware(hw)
	if err != nil {
		log.Fatalln(err)
	}
	return fw
}
