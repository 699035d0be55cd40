package link

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort scripts the device side of a serial.Port.
type fakePort struct {
	response []byte
	written  []byte
	flushes  int
	closed   bool
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.response) == 0 {
		return 0, nil // read timeout
	}
	n := copy(p, f.response)
	f.response = f.response[n:]
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakePort) ResetInputBuffer() error {
	f.flushes++
	return nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func (f *fakePort) SetMode(mode *serial.Mode) error                 { return nil }
func (f *fakePort) Drain() error                                    { return nil }
func (f *fakePort) ResetOutputBuffer() error                        { return nil }
func (f *fakePort) SetDTR(dtr bool) error                           { return nil }
func (f *fakePort) SetRTS(rts bool) error                           { return nil }
func (f *fakePort) GetModemStatusBits() (*serial.ModemStatusBits, error) { return nil, nil }
func (f *fakePort) SetReadTimeout(t time.Duration) error            { return nil }
func (f *fakePort) Break(d time.Duration) error                     { return nil }

func newTestLink(port serial.Port, cfg Config) *SerialLink {
	return newSerialLink(port, "/dev/ttyTEST0", cfg, nil)
}

func TestWriteReadLine(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		fake := &fakePort{response: []byte(`{"status":1,"cmd_id":0}` + "\n")}
		l := newTestLink(fake, Config{BaudRate: 9600})

		line, err := l.WriteReadLine("[0]\n")
		require.NoError(t, err)
		assert.Equal(t, `{"status":1,"cmd_id":0}`, line)
		assert.Equal(t, "[0]\n", string(fake.written))
		assert.Equal(t, 1, fake.flushes, "stale input must be flushed before the write")
	})

	t.Run("timeout yields empty line", func(t *testing.T) {
		l := newTestLink(&fakePort{}, Config{BaudRate: 9600})

		line, err := l.WriteReadLine("[0]\n")
		require.NoError(t, err)
		assert.Empty(t, line)
	})

	t.Run("partial line on timeout", func(t *testing.T) {
		l := newTestLink(&fakePort{response: []byte(`{"sta`)}, Config{BaudRate: 9600})

		line, err := l.WriteReadLine("[0]\n")
		require.NoError(t, err)
		assert.Equal(t, `{"sta`, line)
	})
}

func TestWriteLine(t *testing.T) {
	fake := &fakePort{}
	l := newTestLink(fake, Config{BaudRate: 9600})

	n, err := l.WriteLine("[5,1]\n")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "[5,1]\n", string(fake.written))
}

func TestWriteSpacing(t *testing.T) {
	const spacing = 40 * time.Millisecond
	l := newTestLink(&fakePort{}, Config{BaudRate: 9600, WriteSpacing: spacing})

	_, err := l.WriteLine("[1]\n")
	require.NoError(t, err)

	start := time.Now()
	_, err = l.WriteLine("[2]\n")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), spacing,
		"consecutive writes must honor the minimum spacing")
}

func TestClose(t *testing.T) {
	fake := &fakePort{}
	l := newTestLink(fake, Config{BaudRate: 9600})

	require.NoError(t, l.Close())
	assert.True(t, fake.closed)

	// Closing twice is a no-op.
	require.NoError(t, l.Close())

	_, err := l.WriteLine("[1]\n")
	assert.ErrorIs(t, err, ErrLinkClosed)
	_, err = l.WriteReadLine("[1]\n")
	assert.ErrorIs(t, err, ErrLinkClosed)
}

func TestFilterPlatformPorts(t *testing.T) {
	ports := []string{
		"/dev/cu.Bluetooth-Incoming-Port",
		"/dev/tty.usbmodem262471",
		"/dev/tty.usbserial-0001",
		"/dev/ttyACM0",
	}

	t.Run("darwin keeps usb ttys only", func(t *testing.T) {
		got := filterPlatformPorts(ports, "darwin")
		assert.Equal(t, []string{"/dev/tty.usbmodem262471", "/dev/tty.usbserial-0001"}, got)
	})

	t.Run("other platforms pass through", func(t *testing.T) {
		assert.Equal(t, ports, filterPlatformPorts(ports, "linux"))
	})
}
