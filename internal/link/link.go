// internal/link/link.go
package link

import (
	"errors"
	"fmt"
	"time"
)

// ErrLinkClosed is returned when an operation is attempted on a closed link.
var ErrLinkClosed = errors.New("serial link is closed")

// TransportError wraps a failure of the underlying serial transport.
type TransportError struct {
	Port string
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("serial %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("serial %s on %s: %v", e.Op, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Config holds the transport settings for one serial link.
type Config struct {
	BaudRate     int
	ReadTimeout  time.Duration
	WriteSpacing time.Duration
}

// DefaultConfig returns the firmware's stock UART settings: 9600 8N1 with
// a 50ms read timeout and 50ms between consecutive writes.
func DefaultConfig() Config {
	return Config{
		BaudRate:     9600,
		ReadTimeout:  50 * time.Millisecond,
		WriteSpacing: 50 * time.Millisecond,
	}
}

// Link is the transport a device session owns exclusively for its
// lifetime. Implementations enforce a minimum spacing between consecutive
// writes to protect slow firmware, and report a read timeout as an empty
// line rather than blocking forever.
type Link interface {
	// WriteReadLine writes one request line and blocks until a full
	// response line arrives or the read timeout elapses. An empty string
	// means no response; that is not an error.
	WriteReadLine(line string) (string, error)

	// WriteLine writes one request line without waiting for a response
	// and returns the number of bytes written.
	WriteLine(line string) (int, error)

	// Port identifies the underlying OS port.
	Port() string

	Close() error
}
