// internal/link/serial.go
package link

import (
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// SerialLink drives one OS serial port through go.bug.st/serial.
type SerialLink struct {
	mu        sync.Mutex
	port      serial.Port
	name      string
	cfg       Config
	logger    *zap.Logger
	lastWrite time.Time
	closed    bool
}

var _ Link = (*SerialLink)(nil)

// Open opens the named port with the given transport settings.
func Open(name string, cfg Config, logger *zap.Logger) (*SerialLink, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, &TransportError{Port: name, Op: "open", Err: err}
	}

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, &TransportError{Port: name, Op: "configure", Err: err}
	}

	return newSerialLink(port, name, cfg, logger), nil
}

func newSerialLink(port serial.Port, name string, cfg Config, logger *zap.Logger) *SerialLink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SerialLink{
		port:   port,
		name:   name,
		cfg:    cfg,
		logger: logger.With(zap.String("port", name)),
	}
}

// Port returns the OS port name the link is bound to.
func (l *SerialLink) Port() string { return l.name }

// WriteLine writes one request line without reading a response.
func (l *SerialLink) WriteLine(line string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, ErrLinkClosed
	}
	return l.write(line)
}

// WriteReadLine writes one request line, then reads the response line.
// Stale input is discarded before the write so the next line read belongs
// to this request. An empty return means the read timeout elapsed.
func (l *SerialLink) WriteReadLine(line string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return "", ErrLinkClosed
	}

	if err := l.port.ResetInputBuffer(); err != nil {
		return "", &TransportError{Port: l.name, Op: "flush", Err: err}
	}
	if _, err := l.write(line); err != nil {
		return "", err
	}
	return l.readLine()
}

// Close releases the port. Safe to call more than once.
func (l *SerialLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if err := l.port.Close(); err != nil {
		return &TransportError{Port: l.name, Op: "close", Err: err}
	}
	return nil
}

// write enforces the minimum spacing since the previous write before
// putting the line on the wire. Callers hold l.mu.
func (l *SerialLink) write(line string) (int, error) {
	if l.cfg.WriteSpacing > 0 && !l.lastWrite.IsZero() {
		if since := time.Since(l.lastWrite); since < l.cfg.WriteSpacing {
			time.Sleep(l.cfg.WriteSpacing - since)
		}
	}

	n, err := l.port.Write([]byte(line))
	l.lastWrite = time.Now()
	if err != nil {
		return n, &TransportError{Port: l.name, Op: "write", Err: err}
	}

	l.logger.Debug("wrote request line", zap.String("line", strings.TrimRight(line, "\n")))
	return n, nil
}

// readLine assembles bytes up to a newline. A zero-byte read means the
// configured read timeout expired; whatever arrived so far is returned.
func (l *SerialLink) readLine() (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)

	for {
		n, err := l.port.Read(buf)
		if err != nil {
			return "", &TransportError{Port: l.name, Op: "read", Err: err}
		}
		if n == 0 {
			break
		}
		if buf[0] == '\n' {
			break
		}
		sb.WriteByte(buf[0])
	}

	line := sb.String()
	if line != "" {
		l.logger.Debug("read response line", zap.String("line", strings.TrimRight(line, "\r")))
	}
	return line, nil
}
