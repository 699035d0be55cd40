// internal/link/list.go
package link

import (
	"runtime"
	"sort"
	"strings"

	"go.bug.st/serial"
)

// ListCandidatePorts returns the OS serial ports a device could be
// attached to, sorted for deterministic scan order. Explicit hints
// short-circuit enumeration.
func ListCandidatePorts(hints []string) ([]string, error) {
	if len(hints) > 0 {
		out := append([]string(nil), hints...)
		sort.Strings(out)
		return out, nil
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, &TransportError{Op: "enumerate", Err: err}
	}

	ports = filterPlatformPorts(ports, runtime.GOOS)
	sort.Strings(ports)
	return ports, nil
}

// filterPlatformPorts drops ports a device cannot be behind. On macOS the
// enumeration includes Bluetooth and console ttys; only the USB modem and
// USB serial naming conventions are considered.
func filterPlatformPorts(ports []string, goos string) []string {
	if goos != "darwin" {
		return ports
	}

	out := make([]string, 0, len(ports))
	for _, p := range ports {
		if strings.Contains(p, "usbmodem") || strings.Contains(p, "usbserial") {
			out = append(out, p)
		}
	}
	return out
}
