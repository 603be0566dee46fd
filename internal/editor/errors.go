package editor

import (
	"errors"
	"fmt"
)

// ErrIdentityRequired indicates no user identity could be resolved for an
// operation that needs one. Fatal for the session; the host application must
// prompt a login.
var ErrIdentityRequired = errors.New("editor: identity required")

// ErrReadOnlyMode indicates a save was attempted in a mode with no write
// target (viewing a version by id, or freeform without an identity).
var ErrReadOnlyMode = errors.New("editor: no save target in this mode")

// ErrCardNotFound indicates the referenced suggestion card does not exist in
// the session.
var ErrCardNotFound = errors.New("editor: suggestion card not found")

// ErrCardBusy indicates a card is mid-transition (generating or applying)
// and cannot accept another operation until the in-flight call resolves.
var ErrCardBusy = errors.New("editor: suggestion card is busy")

// LoadError represents a failed required load. 404 on an optional lookup is
// not a LoadError; it triggers fallback instead.
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load failed: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// SaveError represents a failed save, keeping the raw server message where
// one was available.
type SaveError struct {
	Message string
	Cause   error
}

func (e *SaveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("save failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("save failed: %s", e.Message)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}

// CardStateError indicates an operation was attempted on a card in the
// wrong lifecycle state.
type CardStateError struct {
	CardID string
	State  CardState
	Op     string
}

func (e *CardStateError) Error() string {
	return fmt.Sprintf("cannot %s suggestion card %s in state %q", e.Op, e.CardID, e.State)
}
