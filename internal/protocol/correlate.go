// internal/protocol/correlate.go
package protocol

// StatusCodes is the response-status catalog the device reports during the
// handshake. Every reply embeds one of the two codes in its status field.
type StatusCodes struct {
	Success int64
	Error   int64
}

// Wire keys of the response-status catalog.
const (
	statusKeySuccess = "rsp_success"
	statusKeyError   = "rsp_error"
)

// ParseStatusCodes builds the status catalog from the response-code
// command's result. Both rsp_success and rsp_error must be present or the
// session cannot initialize.
func ParseStatusCodes(result Result) (*StatusCodes, error) {
	codes := &StatusCodes{}
	for _, entry := range []struct {
		key  string
		dest *int64
	}{
		{statusKeySuccess, &codes.Success},
		{statusKeyError, &codes.Error},
	} {
		v, ok := result[entry.key]
		if !ok {
			return nil, &ProtocolError{Reason: "missing " + entry.key}
		}
		n, ok := Int64(v)
		if !ok {
			return nil, &ProtocolError{Reason: "non-integer " + entry.key}
		}
		*entry.dest = n
	}
	return codes, nil
}

// Correlate validates a decoded reply against the request that elicited
// it and strips the protocol envelope. A nil codes catalog is tolerated
// only while the handshake has not yet supplied one; the device-error
// check is skipped in that case.
//
// Check order matters: missing status, missing cmd_id, id mismatch,
// device-reported error, then the residual result payload.
func Correlate(reply Reply, expectedID int64, codes *StatusCodes) (Result, error) {
	status, ok := reply["status"]
	if !ok {
		return nil, &ProtocolError{Reason: ReasonMissingStatus}
	}

	rawID, ok := reply["cmd_id"]
	if !ok {
		return nil, &ProtocolError{Reason: ReasonMissingCmdID}
	}
	id, ok := Int64(rawID)
	if !ok || id != expectedID {
		return nil, &ProtocolError{Reason: ReasonIDMismatch, ExpectedID: expectedID, ActualID: id}
	}

	if codes != nil {
		if st, ok := Int64(status); ok && st == codes.Error {
			msg, _ := reply["err_msg"].(string)
			if msg == "" {
				msg = "error message missing"
			}
			return nil, &DeviceError{ErrMsg: msg}
		}
	}

	result := make(Result, len(reply)-2)
	for k, v := range reply {
		if k == "status" || k == "cmd_id" {
			continue
		}
		result[k] = v
	}
	return result, nil
}
