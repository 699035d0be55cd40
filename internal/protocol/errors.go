// internal/protocol/errors.go
package protocol

import "fmt"

// MalformedResponseError reports a response line that could not be parsed
// as JSON. It carries the parser diagnostic and the offending line.
type MalformedResponseError struct {
	Line string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("unable to parse device response %q: %v", e.Line, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Reasons a ProtocolError is raised with.
const (
	ReasonMissingStatus = "missing status"
	ReasonMissingCmdID  = "missing cmd_id"
	ReasonIDMismatch    = "id mismatch"
)

// ProtocolError reports a parseable reply that violated the structural
// contract: status or cmd_id absent, or a cmd_id echo that does not match
// the request that elicited the reply.
type ProtocolError struct {
	Reason     string
	ExpectedID int64
	ActualID   int64
}

func (e *ProtocolError) Error() string {
	if e.Reason == ReasonIDMismatch {
		return fmt.Sprintf("device response %s: expected cmd_id %d, got %d",
			e.Reason, e.ExpectedID, e.ActualID)
	}
	return fmt.Sprintf("device response %s", e.Reason)
}

// DeviceError means the device understood a request but reported an error
// status for it. ErrMsg is the device-supplied diagnostic.
type DeviceError struct {
	ErrMsg string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error: %s", e.ErrMsg)
}
