package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remote-client/internal/link"
)

// scanBench wires the discovery seams to a set of fake devices. Ports
// with a nil firmware behave like dead transports.
type scanBench struct {
	ports    []string
	firmware map[string]*firmware
	links    map[string]*fakeLink
}

func newScanBench(t *testing.T, firmware map[string]*firmware, ports ...string) *scanBench {
	t.Helper()
	bench := &scanBench{
		ports:    ports,
		firmware: firmware,
		links:    make(map[string]*fakeLink),
	}

	oldList, oldOpen := listCandidatePorts, openForScan
	listCandidatePorts = func(hints []string) ([]string, error) {
		if len(hints) > 0 {
			return hints, nil
		}
		return bench.ports, nil
	}
	openForScan = func(port string, o *options) (*Session, error) {
		fw, ok := bench.firmware[port]
		if !ok {
			return nil, &link.TransportError{Port: port, Op: "open", Err: errors.New("no such device")}
		}
		lk := fw.link(port)
		bench.links[port] = lk
		return OpenLink(lk, WithResetDelay(0))
	}
	t.Cleanup(func() {
		listCandidatePorts, openForScan = oldList, oldOpen
	})

	return bench
}

func deviceFirmware(model, serial int64) *firmware {
	fw := testFirmware()
	fw.model = model
	fw.serial = serial
	return fw
}

// Three candidates: two devices with model 7 and serials 1 and 2, plus a
// port whose transport fails to open.
func ambiguousBench(t *testing.T) *scanBench {
	return newScanBench(t, map[string]*firmware{
		"/dev/ttyACM0": deviceFirmware(7, 1),
		"/dev/ttyACM1": deviceFirmware(7, 2),
	}, "/dev/ttyACM0", "/dev/ttyACM1", "/dev/ttyUSB0")
}

func TestFindDevicePorts(t *testing.T) {
	t.Run("skips failing transports, closes every session", func(t *testing.T) {
		bench := ambiguousBench(t)

		found, err := FindDevicePorts(Filter{})
		require.NoError(t, err)
		assert.Equal(t, map[string]Identity{
			"/dev/ttyACM0": {ModelNumber: 7, SerialNumber: 1},
			"/dev/ttyACM1": {ModelNumber: 7, SerialNumber: 2},
		}, found)

		for port, lk := range bench.links {
			assert.Equal(t, 1, lk.closed, "session on %s must be closed", port)
		}
	})

	t.Run("filters by model and serial", func(t *testing.T) {
		ambiguousBench(t)

		found, err := FindDevicePorts(Filter{ModelNumbers: []int64{7}, SerialNumbers: []int64{2}})
		require.NoError(t, err)
		assert.Equal(t, map[string]Identity{
			"/dev/ttyACM1": {ModelNumber: 7, SerialNumber: 2},
		}, found)
	})

	t.Run("unconstrained filter still requires a reported identity", func(t *testing.T) {
		newScanBench(t, map[string]*firmware{
			"/dev/ttyACM0": {methods: map[string]int64{}}, // no model/serial
		}, "/dev/ttyACM0")

		found, err := FindDevicePorts(Filter{})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("try ports replace enumeration", func(t *testing.T) {
		bench := ambiguousBench(t)

		found, err := FindDevicePorts(Filter{TryPorts: []string{"/dev/ttyACM1"}})
		require.NoError(t, err)
		assert.Len(t, found, 1)
		assert.NotContains(t, bench.links, "/dev/ttyACM0")
	})
}

func TestFindDevicePort(t *testing.T) {
	t.Run("ambiguous match lists the candidates", func(t *testing.T) {
		ambiguousBench(t)

		_, err := FindDevicePort(Filter{ModelNumbers: []int64{7}})

		var ambiguous *AmbiguousDeviceError
		require.True(t, errors.As(err, &ambiguous))
		assert.Len(t, ambiguous.Matches, 2)
		assert.Contains(t, ambiguous.Matches, "/dev/ttyACM0")
		assert.Contains(t, ambiguous.Matches, "/dev/ttyACM1")
	})

	t.Run("serial filter disambiguates", func(t *testing.T) {
		ambiguousBench(t)

		port, err := FindDevicePort(Filter{ModelNumbers: []int64{7}, SerialNumbers: []int64{2}})
		require.NoError(t, err)
		assert.Equal(t, "/dev/ttyACM1", port)
	})

	t.Run("no match lists the tried ports", func(t *testing.T) {
		ambiguousBench(t)

		_, err := FindDevicePort(Filter{ModelNumbers: []int64{9}})

		var notFound *NoDeviceFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, []string{"/dev/ttyACM0", "/dev/ttyACM1", "/dev/ttyUSB0"}, notFound.TriedPorts)
	})
}
