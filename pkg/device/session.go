// pkg/device/session.go
package device

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"go.uber.org/zap"

	"remote-client/internal/link"
	"remote-client/internal/protocol"
	"remote-client/internal/utils"
)

// Reserved command ids every firmware understands before the command
// catalog is known. They drive the three-phase handshake.
const (
	cmdGetDeviceInfo    int64 = 0
	cmdGetMethodIDs     int64 = 1
	cmdGetResponseCodes int64 = 2
)

// UnknownNumber marks a device info field the firmware did not report.
const UnknownNumber int64 = -1

// Identity is the (model number, serial number) pair a device reports.
type Identity struct {
	ModelNumber  int64
	SerialNumber int64
}

// Session is one live connection to a remote device. It owns its link
// exclusively; concurrent calls are serialized by an internal mutex.
// A session becomes usable only after the handshake completed, so every
// Session value exposes the device's full method registry.
type Session struct {
	mu     sync.Mutex
	link   link.Link
	logger *utils.SessionLogger
	id     string

	codes    *protocol.StatusCodes
	ids      map[string]int64 // exposed method name -> command id
	names    []string         // exposed method names in ascending id order
	argOrder map[int64][]string

	info   map[string]any
	model  int64
	serial int64

	closed bool
}

// Open dials a port and runs the device handshake. The link is closed
// again if the handshake fails.
func Open(port string, opts ...Option) (*Session, error) {
	return openPort(port, applyOptions(opts))
}

// OpenMatching discovers the single attached device matching the filter
// and opens a session on it.
func OpenMatching(filter Filter, opts ...Option) (*Session, error) {
	port, err := FindDevicePort(filter, opts...)
	if err != nil {
		return nil, err
	}
	return Open(port, opts...)
}

// OpenLink runs the device handshake on an already-open link. On failure
// the link is left open; closing it remains the caller's responsibility.
func OpenLink(lk link.Link, opts ...Option) (*Session, error) {
	return openSession(lk, applyOptions(opts))
}

func openPort(port string, o *options) (*Session, error) {
	lk, err := link.Open(port, o.serial, o.logger)
	if err != nil {
		return nil, err
	}

	s, err := openSession(lk, o)
	if err != nil {
		lk.Close()
		return nil, err
	}
	return s, nil
}

func openSession(lk link.Link, o *options) (*Session, error) {
	s := &Session{
		link:   lk,
		id:     uuid.NewString(),
		model:  UnknownNumber,
		serial: UnknownNumber,
	}
	s.logger = utils.NewSessionLogger(o.logger, lk.Port(), s.id)

	// The board may reboot when the port opens; give the firmware time to
	// come back before talking to it.
	if o.resetDelay > 0 {
		time.Sleep(o.resetDelay)
	}

	start := time.Now()
	if err := s.handshake(); err != nil {
		s.logger.Debug("handshake failed", zap.Error(err))
		return nil, err
	}
	trackSession(s)

	s.logger.Info("session established",
		zap.Int64("model_number", s.model),
		zap.Int64("serial_number", s.serial),
		zap.Int("methods", len(s.names)),
		zap.Duration("handshake_duration", time.Since(start)),
	)
	return s, nil
}

// handshake runs the three fixed calls in order: response-status catalog,
// command catalog, device info. Any failure aborts session construction.
func (s *Session) handshake() error {
	codesResult, err := s.call(cmdGetResponseCodes)
	if err != nil {
		return fmt.Errorf("response code handshake: %w", err)
	}
	codes, err := protocol.ParseStatusCodes(codesResult)
	if err != nil {
		return fmt.Errorf("response code handshake: %w", err)
	}
	s.codes = codes

	catalog, err := s.call(cmdGetMethodIDs)
	if err != nil {
		return fmt.Errorf("command catalog handshake: %w", err)
	}
	if err := s.buildRegistry(catalog); err != nil {
		return fmt.Errorf("command catalog handshake: %w", err)
	}

	info, err := s.call(cmdGetDeviceInfo)
	if err != nil {
		return fmt.Errorf("device info handshake: %w", err)
	}
	s.setDeviceInfo(info)

	return nil
}

// buildRegistry turns the device-reported command catalog into the
// session's dispatch surface. Names are exposed in snake_case; ids must
// be unique. Iteration order is ascending id so the registry is
// reproducible across runs on the same firmware.
func (s *Session) buildRegistry(catalog protocol.Result) error {
	type entry struct {
		id   int64
		name string
	}

	entries := make([]entry, 0, len(catalog))
	byID := make(map[int64]string, len(catalog))
	for name, v := range catalog {
		id, ok := protocol.Int64(v)
		if !ok {
			return fmt.Errorf("command %q has non-integer id %v", name, v)
		}
		if other, dup := byID[id]; dup {
			return fmt.Errorf("command id %d reported for both %q and %q", id, other, name)
		}
		byID[id] = name
		entries = append(entries, entry{id: id, name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	s.ids = make(map[string]int64, len(entries))
	s.names = make([]string, 0, len(entries))
	s.argOrder = make(map[int64][]string)
	for _, e := range entries {
		exposed := strcase.ToSnake(e.name)
		s.ids[exposed] = e.id
		s.names = append(s.names, exposed)
	}
	return nil
}

func (s *Session) setDeviceInfo(info protocol.Result) {
	s.info = info
	// Firmware builds that omit model or serial number still get a valid
	// session; the field stays at the unknown sentinel.
	if n, ok := protocol.Int64(info["model_number"]); ok {
		s.model = n
	}
	if n, ok := protocol.Int64(info["serial_number"]); ok {
		s.serial = n
	}
}

// call performs one request/response exchange for the given command id.
// A nil result with nil error means the device sent no data before the
// link timeout.
func (s *Session) call(id int64, args ...any) (protocol.Result, error) {
	request := protocol.EncodeRequest(append([]any{id}, args...)...)

	line, err := s.link.WriteReadLine(request)
	if err != nil {
		return nil, err
	}

	reply, err := protocol.DecodeResponse(line)
	if err != nil {
		return nil, err
	}
	if len(reply) == 0 {
		return nil, nil
	}
	return protocol.Correlate(reply, id, s.codes)
}

// Call invokes a device method by its exposed name. A single
// map[string]any argument is resolved into the device's positional
// argument order (see SetArgumentOrder). A nil result means the device
// sent no data.
func (s *Session) Call(name string, args ...any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	id, ok := s.ids[name]
	if !ok {
		return nil, &UnknownMethodError{Name: name}
	}

	if len(args) == 1 {
		if named, ok := args[0].(map[string]any); ok {
			resolved, err := s.resolveNamedArgs(id, name, named)
			if err != nil {
				return nil, err
			}
			args = resolved
		}
	}

	start := time.Now()
	result, err := s.call(id, args...)
	s.logger.LogCall(name, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return protocol.NormalizeResult(result), nil
}

// Send writes a request for the named method without waiting for a
// response and returns the number of bytes written.
func (s *Session) Send(name string, args ...any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSessionClosed
	}

	id, ok := s.ids[name]
	if !ok {
		return 0, &UnknownMethodError{Name: name}
	}
	return s.link.WriteLine(protocol.EncodeRequest(append([]any{id}, args...)...))
}

// SetArgumentOrder declares the positional parameter names of a method so
// it can be invoked with a named-argument map. The declared order must
// match the firmware's parameter order.
func (s *Session) SetArgumentOrder(name string, argNames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.ids[name]
	if !ok {
		return &UnknownMethodError{Name: name}
	}
	s.argOrder[id] = append([]string(nil), argNames...)
	return nil
}

func (s *Session) resolveNamedArgs(id int64, name string, named map[string]any) ([]any, error) {
	order, ok := s.argOrder[id]
	if !ok {
		return nil, fmt.Errorf("argument order for %q not declared, call SetArgumentOrder first", name)
	}
	if len(named) != len(order) {
		return nil, fmt.Errorf("method %q takes %d named arguments, got %d", name, len(order), len(named))
	}

	args := make([]any, len(order))
	for i, argName := range order {
		v, ok := named[argName]
		if !ok {
			return nil, fmt.Errorf("method %q is missing named argument %q (order: %s)",
				name, argName, strings.Join(order, ", "))
		}
		args[i] = v
	}
	return args, nil
}

// Methods returns the exposed capability set in ascending command id
// order, the order the registry was synthesized in.
func (s *Session) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

// DeviceInfo returns the device info mapping reported at handshake time.
func (s *Session) DeviceInfo() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := make(map[string]any, len(s.info))
	for k, v := range s.info {
		info[k] = v
	}
	return info
}

// ModelNumber returns the reported model number, or UnknownNumber.
func (s *Session) ModelNumber() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SerialNumber returns the reported serial number, or UnknownNumber.
func (s *Session) SerialNumber() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serial
}

// Identity returns the session's (model, serial) pair.
func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Identity{ModelNumber: s.model, SerialNumber: s.serial}
}

// Port returns the OS port the session is bound to.
func (s *Session) Port() string {
	return s.link.Port()
}

// Close releases the underlying link. Safe to call more than once; a
// closed session is terminal.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	untrackSession(s)

	s.logger.Debug("session closed")
	return s.link.Close()
}
