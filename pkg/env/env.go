// Package env configures the line and broker used by the host tools.
package env

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/robotalks/uartfw/pkg/telemetry/mqtt"
	"github.com/robotalks/uartfw/pkg/uart"
)

// Config provides common options of the line and the broker.
type Config struct {
	// Port is a serial device, or a ws:// URL of a line served by fwsim.
	Port string
	Baud int

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	DeviceID      string
}

var defaultConfig = Config{
	Baud:          uart.DefaultBaudRate,
	MQTTBrokerURL: "mqtt://localhost:1883/uartfw/",
}

func init() {
	if val := os.Getenv("UARTFW_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("UARTFW_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
	if val := os.Getenv("UARTFW_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	defaultConfig.DeviceID = os.Getenv("UARTFW_ID")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port or ws:// line URL")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID, defaults to one derived from the machine ID")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// IsWebsocket tells if Port refers to a websocket line.
func (c *Config) IsWebsocket() bool {
	return strings.HasPrefix(c.Port, "ws://") || strings.HasPrefix(c.Port, "wss://")
}

// OpenLine opens the configured line.
func (c *Config) OpenLine() (io.ReadWriteCloser, error) {
	if c.Port == "" {
		ports, _ := uart.SerialPorts()
		return nil, fmt.Errorf("port must be specified, available: %s", strings.Join(ports, ", "))
	}
	if c.IsWebsocket() {
		return uart.DialWebsocket(c.Port)
	}
	return uart.OpenSerial(c.Port, c.Baud)
}

// MustOpenLine opens the line and fails on error.
func (c *Config) MustOpenLine() io.ReadWriteCloser {
	line, err := c.OpenLine()
	if err != nil {
		log.Fatalln(err)
	}
	return line
}

// ID returns the configured device ID or the derived one.
func (c *Config) ID() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	return MachineID()
}

// NewQueue creates the MQTT queue from MQTTBrokerURL. configure funcs
// adjust the client options before the client is created.
func (c *Config) NewQueue(configure ...func(*paho.ClientOptions, string)) (*mqtt.Queue, error) {
	opts, prefix, err := mqtt.ClientOptionsFromURL(c.MQTTBrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT broker URL: %v", err)
	}
	for _, fn := range configure {
		fn(opts, prefix)
	}
	return mqtt.NewQueue(opts, prefix), nil
}
