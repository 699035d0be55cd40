package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCollection(t *testing.T) Collection {
	t.Helper()
	newScanBench(t, map[string]*firmware{
		"/dev/ttyACM0": deviceFirmware(7, 2),
		"/dev/ttyACM1": deviceFirmware(3, 9),
		"/dev/ttyACM2": deviceFirmware(7, 1),
	}, "/dev/ttyACM0", "/dev/ttyACM1", "/dev/ttyACM2")

	devices, err := OpenAll(Filter{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = devices.CloseAll() })
	return devices
}

func identities(c Collection) []Identity {
	out := make([]Identity, len(c))
	for i, dev := range c {
		out[i] = dev.Identity()
	}
	return out
}

func TestCollectionOrdering(t *testing.T) {
	devices := openTestCollection(t)

	assert.Equal(t, []Identity{
		{ModelNumber: 3, SerialNumber: 9},
		{ModelNumber: 7, SerialNumber: 1},
		{ModelNumber: 7, SerialNumber: 2},
	}, identities(devices))
}

func TestCollectionFind(t *testing.T) {
	devices := openTestCollection(t)

	t.Run("by model number", func(t *testing.T) {
		matches := devices.FindByModelNumber(7)
		require.Len(t, matches, 2)
		assert.Equal(t, int64(1), matches[0].SerialNumber())
		assert.Equal(t, int64(2), matches[1].SerialNumber())

		assert.Len(t, devices.FindByModelNumber(3), 1)
		assert.Empty(t, devices.FindByModelNumber(42))
	})

	t.Run("by serial number", func(t *testing.T) {
		matches := devices.FindBySerialNumber(9)
		require.Len(t, matches, 1)
		assert.Equal(t, int64(3), matches[0].ModelNumber())

		assert.Empty(t, devices.FindBySerialNumber(42))
	})
}

func TestCollectionDevicesInfo(t *testing.T) {
	devices := openTestCollection(t)

	infos := devices.DevicesInfo()
	require.Len(t, infos, 3)
	assert.Equal(t, int64(3), infos[0]["model_number"])
	assert.Equal(t, int64(7), infos[1]["model_number"])
}

func TestOpenPortsFailureClosesOpened(t *testing.T) {
	bench := newScanBench(t, map[string]*firmware{
		"/dev/ttyACM0": deviceFirmware(7, 2),
	}, "/dev/ttyACM0", "/dev/ttyACM1")

	_, err := OpenPorts([]string{"/dev/ttyACM0", "/dev/ttyACM1"})
	require.Error(t, err)
	assert.Equal(t, 1, bench.links["/dev/ttyACM0"].closed)
}
