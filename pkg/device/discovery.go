// pkg/device/discovery.go
package device

import (
	"slices"

	"go.uber.org/zap"

	"remote-client/internal/link"
)

// Filter narrows discovery to devices matching any of the listed model
// and serial numbers. An empty slice leaves that dimension unconstrained,
// though the device must still report the field at all. TryPorts replaces
// OS enumeration with an explicit candidate list.
type Filter struct {
	ModelNumbers  []int64
	SerialNumbers []int64
	TryPorts      []string
}

// Seams for tests; production code never overrides these.
var (
	listCandidatePorts = link.ListCandidatePorts
	openForScan        = openPort
)

// FindDevicePorts opens a transient session on every candidate port and
// reports the identity of each device that matches the filter. Ports that
// fail to open or to complete the handshake are skipped; every session
// opened here is closed again before returning.
func FindDevicePorts(filter Filter, opts ...Option) (map[string]Identity, error) {
	o := applyOptions(opts)

	ports, err := listCandidatePorts(filter.TryPorts)
	if err != nil {
		return nil, err
	}

	found := make(map[string]Identity)
	for _, port := range ports {
		dev, err := openForScan(port, o)
		if err != nil {
			// Not every candidate port has a device behind it.
			o.logger.Debug("skipping candidate port",
				zap.String("port", port), zap.Error(err))
			continue
		}

		ident := dev.Identity()
		if matchNumber(filter.ModelNumbers, ident.ModelNumber) &&
			matchNumber(filter.SerialNumbers, ident.SerialNumber) {
			found[port] = ident
		}
		_ = dev.Close()
	}
	return found, nil
}

// FindDevicePort resolves the filter to exactly one port. Zero matches
// yield NoDeviceFoundError with the ports that were tried; more than one
// yields AmbiguousDeviceError with the matches.
func FindDevicePort(filter Filter, opts ...Option) (string, error) {
	found, err := FindDevicePorts(filter, opts...)
	if err != nil {
		return "", err
	}

	switch len(found) {
	case 1:
		for port := range found {
			return port, nil
		}
	case 0:
		tried, err := listCandidatePorts(filter.TryPorts)
		if err != nil {
			tried = nil
		}
		return "", &NoDeviceFoundError{TriedPorts: tried}
	}
	return "", &AmbiguousDeviceError{Matches: found}
}

func matchNumber(want []int64, got int64) bool {
	if len(want) == 0 {
		return got != UnknownNumber
	}
	return slices.Contains(want, got)
}
