// pkg/device/tracker.go
package device

import "sync"

// Open sessions are tracked so a shutdown path can close their links
// best-effort. Go has no atexit; command entry points install a signal
// handler that calls CloseAll before the process exits.
var (
	trackMu sync.Mutex
	tracked = make(map[*Session]struct{})
)

func trackSession(s *Session) {
	trackMu.Lock()
	defer trackMu.Unlock()
	tracked[s] = struct{}{}
}

func untrackSession(s *Session) {
	trackMu.Lock()
	defer trackMu.Unlock()
	delete(tracked, s)
}

// CloseAll closes every session still open. Errors are ignored; this is a
// best-effort cleanup so an abnormal exit does not leave a port half-open.
func CloseAll() {
	trackMu.Lock()
	sessions := make([]*Session, 0, len(tracked))
	for s := range tracked {
		sessions = append(sessions, s)
	}
	trackMu.Unlock()

	for _, s := range sessions {
		_ = s.Close()
	}
}
