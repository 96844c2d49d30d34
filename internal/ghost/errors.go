package ghost

import "errors"

var (
	// ErrNotRunning is returned when a command requires the actor to be
	// started but it is not.
	ErrNotRunning = errors.New("ghost: actor not running")
	// ErrAlreadyRunning is returned from a second Start call while the
	// actor is already running.
	ErrAlreadyRunning = errors.New("ghost: actor already running")
	// ErrInvalidRecipient is returned for a malformed target public key.
	ErrInvalidRecipient = errors.New("ghost: invalid recipient")
	// ErrPublishFailed is returned when the swarm rejects a publish.
	ErrPublishFailed = errors.New("ghost: publish failed")
)
