// Package validation checks untrusted input arriving at the remote
// environment server: raw message frames, actions and reward options.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/opd-ai/go-maritime/pkg/env"
)

var (
	// ErrMessageTooLarge is returned for frames over the size limit.
	ErrMessageTooLarge = errors.New("message too large")
	// ErrMalformed is returned for frames that are not valid JSON.
	ErrMalformed = errors.New("malformed message")
	// ErrRateLimited is returned when a client sends too fast.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// MessageValidator applies size, format and rate checks to raw frames.
type MessageValidator struct {
	maxBytes    int
	maxPerSec   int
	rateLimiter *RateLimiter
}

// NewMessageValidator limits frames to maxBytes and each client to
// perSecond messages per second.
func NewMessageValidator(maxBytes, perSecond int) *MessageValidator {
	return &MessageValidator{
		maxBytes:    maxBytes,
		maxPerSec:   perSecond,
		rateLimiter: NewRateLimiter(perSecond, time.Second),
	}
}

// Close releases resources used by the message validator
func (v *MessageValidator) Close() {
	if v.rateLimiter != nil {
		v.rateLimiter.Close()
	}
}

// Forget releases rate limit state for a finished client.
func (v *MessageValidator) Forget(clientID string) {
	v.rateLimiter.Forget(clientID)
}

// ValidateMessage checks a raw frame from clientID.
func (v *MessageValidator) ValidateMessage(data []byte, clientID string) error {
	if len(data) > v.maxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrMessageTooLarge, len(data), v.maxBytes)
	}
	if !json.Valid(data) {
		return ErrMalformed
	}
	if !v.rateLimiter.Allow(clientID) {
		return fmt.Errorf("%w: max %d messages per second", ErrRateLimited, v.maxPerSec)
	}
	return nil
}

// ValidateAction rejects actions that are not finite or fall outside space.
// Finite out-of-range actions are reported, not clipped; the caller decides.
func ValidateAction(action float64, space env.Box) error {
	if math.IsNaN(action) || math.IsInf(action, 0) {
		return fmt.Errorf("%w: %v", env.ErrInvalidAction, action)
	}
	if !space.Contains([]float64{action}) {
		return fmt.Errorf("%w: %v outside [%v, %v]", env.ErrInvalidAction, action, space.Low[0], space.High[0])
	}
	return nil
}

// ValidateRewardOptions checks that every key is a known reward option and
// every value is finite. Presence and range are checked by
// env.RewardsFromOptions.
func ValidateRewardOptions(options map[string]float64) error {
	known := make(map[string]bool, len(env.RewardOptionKeys))
	for _, k := range env.RewardOptionKeys {
		known[k] = true
	}
	for k, v := range options {
		if !known[k] {
			return fmt.Errorf("unknown reward option %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("reward option %q must be finite", k)
		}
	}
	return nil
}
