// Package network serves environments to remote training loops over a
// websocket and provides the matching client.
//
// Every frame is a JSON Envelope. The client sends make, reset, step,
// spaces and close requests; the server answers each with exactly one
// frame carrying the same ID.
package network

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/engine"
	"github.com/opd-ai/go-maritime/pkg/env"
)

// MessageType names the kind of an Envelope.
type MessageType string

// Requests.
const (
	MsgMake   MessageType = "make"
	MsgReset  MessageType = "reset"
	MsgStep   MessageType = "step"
	MsgSpaces MessageType = "spaces"
	MsgClose  MessageType = "close"
)

// Responses. A spaces request is answered with a MsgSpaces frame.
const (
	MsgObservation MessageType = "observation"
	MsgStepResult  MessageType = "step_result"
	MsgClosed      MessageType = "closed"
	MsgError       MessageType = "error"
)

// Error codes carried by MsgError frames.
const (
	CodeBadRequest       = "bad_request"
	CodeUnknownType      = "unknown_type"
	CodeMessageTooLarge  = "message_too_large"
	CodeRateLimited      = "rate_limited"
	CodeServerFull       = "server_full"
	CodeInvalidState     = "invalid_state"
	CodeInvalidAction    = "invalid_action"
	CodeInvalidConfig    = "invalid_config"
	CodeGenerationFailed = "generation_failed"
	CodeInternal         = "internal"
)

// Envelope is one websocket frame.
type Envelope struct {
	Type    MessageType     `json:"type"`
	ID      uint64          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MakeRequest creates the session's environment. Rewards, when present,
// must name every reward option; otherwise the server's configured rewards
// apply.
type MakeRequest struct {
	Seed           *int64             `json:"seed,omitempty"`
	CollisionModel string             `json:"collision_model,omitempty"`
	Rewards        map[string]float64 `json:"rewards,omitempty"`
}

// StepRequest carries one action.
type StepRequest struct {
	Action float64 `json:"action"`
}

// Spaces answers make and spaces requests.
type Spaces struct {
	Action      env.Box `json:"action"`
	Observation env.Box `json:"observation"`
	Seed        int64   `json:"seed"`
}

// ResetResult answers a reset request.
type ResetResult struct {
	Observation env.Observation `json:"observation"`
	EpisodeID   string          `json:"episode_id"`
}

// ErrorPayload answers a request the server could not serve.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RemoteError is an error reported by the server. It matches the local
// sentinel for its code under errors.Is.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (%s): %s", e.Code, e.Message)
}

// Is maps wire codes back to the sentinels of the packages that raise them.
func (e *RemoteError) Is(target error) bool {
	switch e.Code {
	case CodeInvalidState:
		return target == env.ErrInvalidState
	case CodeInvalidAction:
		return target == env.ErrInvalidAction
	case CodeInvalidConfig:
		return target == config.ErrInvalidConfig
	case CodeGenerationFailed:
		return target == engine.ErrGeneration
	}
	return false
}

func newEnvelope(t MessageType, id uint64, payload interface{}) (Envelope, error) {
	e := Envelope{Type: t, ID: id}
	if payload == nil {
		return e, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	e.Payload = data
	return e, nil
}

func decodePayload(e Envelope, v interface{}) error {
	if len(e.Payload) == 0 {
		return errors.New("missing payload")
	}
	return json.Unmarshal(e.Payload, v)
}
