package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// DeviceIDLen is the length of the derived device ID.
const DeviceIDLen = 12

// MachineID derives a stable device ID from the machine ID, falling
// back to the host name.
func MachineID() string {
	id, err := machineid.ProtectedID("uartfw")
	if err == nil {
		if len(id) > DeviceIDLen {
			id = id[:DeviceIDLen]
		}
		return id
	}
	glog.Warningf("machine id: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "uartfw"
}
