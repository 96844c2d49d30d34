package vault

import "errors"

var (
	// ErrWrongPassword is returned when the stored identity file fails to
	// decrypt under the supplied password.
	ErrWrongPassword = errors.New("vault: wrong password")
	// ErrAuthFailure is returned when a message envelope fails AEAD
	// tag verification.
	ErrAuthFailure = errors.New("vault: authentication failure")
	// ErrNotUnsealed is returned when an operation requiring the unsealed
	// keypair is attempted before Init/Unseal has succeeded.
	ErrNotUnsealed = errors.New("vault: identity not unsealed")
	// ErrInvalidRecipient is returned for malformed public keys.
	ErrInvalidRecipient = errors.New("vault: invalid recipient public key")
	// ErrInvalidEnvelope is returned when an envelope is too short to parse.
	ErrInvalidEnvelope = errors.New("vault: malformed envelope")
)
