package internal

import (
	"encoding/json"
	"errors"
)

// ErrMalformedEnvelope is returned when a response body does not decode as
// the backend's {data, message|error} convention.
var ErrMalformedEnvelope = errors.New("malformed response envelope")

// Envelope is the backend response convention: payload under "data", a
// human-readable "message" on success, "message" or "error" on failure.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// DecodeEnvelope parses body into an Envelope. An empty body yields an
// empty envelope (some mutations return no content beyond the status).
func DecodeEnvelope(body []byte) (Envelope, error) {
	if len(body) == 0 {
		return Envelope{}, nil
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, ErrMalformedEnvelope
	}
	return env, nil
}

// FailureMessage returns the backend-supplied failure text, preferring
// "message" over "error", or "" when neither is present.
func (e Envelope) FailureMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// DecodeData unmarshals the envelope payload into out. A missing or null
// data field with a non-nil out is a malformed response: per-endpoint
// payloads are validated at this boundary so a shape drift fails fast
// instead of producing zero values deep in caller state.
func (e Envelope) DecodeData(out any) error {
	if out == nil {
		return nil
	}
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return ErrMalformedEnvelope
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return ErrMalformedEnvelope
	}
	return nil
}
