// pkg/device/errors.go
package device

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSessionClosed is returned when an operation is attempted on a closed
// session. A closed session is terminal; open a new one to reconnect.
var ErrSessionClosed = errors.New("device session is closed")

// UnknownMethodError means the caller invoked a name absent from the live
// method registry reported by the device.
type UnknownMethodError struct {
	Name string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown device method %q", e.Name)
}

// NoDeviceFoundError means discovery matched no device. It lists the
// candidate ports that were tried for diagnosis.
type NoDeviceFoundError struct {
	TriedPorts []string
}

func (e *NoDeviceFoundError) Error() string {
	return fmt.Sprintf("no remote device found, check connections and permissions (tried ports: %s)",
		strings.Join(e.TriedPorts, ", "))
}

// AmbiguousDeviceError means discovery matched more than one device. The
// caller must narrow the filters with an explicit port, model number or
// serial number.
type AmbiguousDeviceError struct {
	Matches map[string]Identity
}

func (e *AmbiguousDeviceError) Error() string {
	ports := make([]string, 0, len(e.Matches))
	for port := range e.Matches {
		ports = append(ports, port)
	}
	sort.Strings(ports)

	parts := make([]string, len(ports))
	for i, port := range ports {
		ident := e.Matches[port]
		parts[i] = fmt.Sprintf("%s (model %d, serial %d)", port, ident.ModelNumber, ident.SerialNumber)
	}
	return fmt.Sprintf("found more than one remote device, specify port, model number or serial number (matching ports: %s)",
		strings.Join(parts, ", "))
}
