package env

import (
	"testing"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

func TestConfigID(t *testing.T) {
	conf := NewConfig()
	conf.DeviceID = "dev1"
	require.Equal(t, "dev1", conf.ID())
	conf.DeviceID = ""
	require.NotEmpty(t, conf.ID())
	require.Equal(t, conf.ID(), MachineID())
}

func TestConfigOpenLine(t *testing.T) {
	conf := NewConfig()
	conf.Port = ""
	_, err := conf.OpenLine()
	require.Error(t, err)

	conf.Port = "ws://localhost:8080/line"
	require.True(t, conf.IsWebsocket())
	conf.Port = "/dev/ttyUSB0"
	require.False(t, conf.IsWebsocket())
}

func TestConfigNewQueue(t *testing.T) {
	conf := NewConfig()
	conf.MQTTBrokerURL = "mqtt://localhost:1883/fw/"
	var prefix string
	q, err := conf.NewQueue(func(opts *paho.ClientOptions, p string) {
		prefix = p
		opts.SetClientID("test")
	})
	require.NoError(t, err)
	require.Equal(t, "fw/", prefix)
	require.Equal(t, "fw/", q.TopicPrefix)
	require.NotNil(t, q.Client)
}
