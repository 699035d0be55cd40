// pkg/device/collection.go
package device

import (
	"errors"
	"sort"
)

// Collection aggregates device sessions, sorted by (model number, serial
// number). That ordering is the canonical iteration order after
// construction.
type Collection []*Session

// OpenAll discovers every device matching the filter and opens a
// persistent session on each.
func OpenAll(filter Filter, opts ...Option) (Collection, error) {
	found, err := FindDevicePorts(filter, opts...)
	if err != nil {
		return nil, err
	}

	ports := make([]string, 0, len(found))
	for port := range found {
		ports = append(ports, port)
	}
	sort.Strings(ports)

	return OpenPorts(ports, opts...)
}

// OpenPorts opens a session on each of the given ports. If any port
// fails, the sessions opened so far are closed and the error returned.
func OpenPorts(ports []string, opts ...Option) (Collection, error) {
	o := applyOptions(opts)

	var devices Collection
	for _, port := range ports {
		dev, err := openForScan(port, o)
		if err != nil {
			_ = devices.CloseAll()
			return nil, err
		}
		devices = append(devices, dev)
	}

	devices.Sort()
	return devices, nil
}

// Sort restores the canonical (model number, serial number) ordering.
func (c Collection) Sort() {
	sort.SliceStable(c, func(i, j int) bool {
		a, b := c[i].Identity(), c[j].Identity()
		if a.ModelNumber != b.ModelNumber {
			return a.ModelNumber < b.ModelNumber
		}
		return a.SerialNumber < b.SerialNumber
	})
}

// FindByModelNumber returns the sessions reporting the given model
// number. Callers must check the arity of the result.
func (c Collection) FindByModelNumber(n int64) []*Session {
	var matches []*Session
	for _, dev := range c {
		if dev.ModelNumber() == n {
			matches = append(matches, dev)
		}
	}
	return matches
}

// FindBySerialNumber returns the sessions reporting the given serial
// number. Callers must check the arity of the result.
func (c Collection) FindBySerialNumber(n int64) []*Session {
	var matches []*Session
	for _, dev := range c {
		if dev.SerialNumber() == n {
			matches = append(matches, dev)
		}
	}
	return matches
}

// DevicesInfo returns the device info mapping of every session, in
// collection order.
func (c Collection) DevicesInfo() []map[string]any {
	infos := make([]map[string]any, len(c))
	for i, dev := range c {
		infos[i] = dev.DeviceInfo()
	}
	return infos
}

// CloseAll closes every session in the collection.
func (c Collection) CloseAll() error {
	var errs []error
	for _, dev := range c {
		if err := dev.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
