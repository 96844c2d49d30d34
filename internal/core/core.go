package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ghostdrop/internal/config"
	"ghostdrop/internal/deaddrop"
	"ghostdrop/internal/ghost"
	"ghostdrop/internal/metrics"
	"ghostdrop/internal/storage"
	"ghostdrop/internal/vault"
)

// Core implements the host command surface described in the external
// interfaces: one method per command, plus an event channel standing in
// for the host's event sink.
type Core struct {
	cfg     config.Config
	paths   *config.Paths
	log     *zap.Logger
	metrics *metrics.Registry

	v       *vault.Vault
	store   *storage.Client
	actor   *ghost.Actor
	started bool
}

// New constructs a Core bound to the given paths and configuration.
func New(paths *config.Paths, cfg config.Config, log *zap.Logger, reg *metrics.Registry) *Core {
	return &Core{
		cfg:     cfg,
		paths:   paths,
		log:     log,
		metrics: reg,
		v:       vault.New(paths.IdentityEnc, log),
		store:   storage.New(cfg.StorageBaseURL, log),
	}
}

// InitIdentity implements the init_identity command.
func (c *Core) InitIdentity(password string) (string, error) {
	id, err := c.v.Init(password)
	if err != nil {
		if errors.Is(err, vault.ErrWrongPassword) {
			return "", ErrWrongPassword
		}
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	return id, nil
}

// StartGhostMode implements the start_ghost_mode command.
func (c *Core) StartGhostMode(ctx context.Context) error {
	if c.started {
		return ErrAlreadyRunning
	}
	h, err := ghost.NewHost(c.cfg.ListenAddrs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	actor, err := ghost.NewActor(h, c.v, c.cfg.MDNSTag, c.log, c.metrics)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := actor.Start(ctx); err != nil {
		if errors.Is(err, ghost.ErrAlreadyRunning) {
			return ErrAlreadyRunning
		}
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	c.actor = actor
	c.started = true
	return nil
}

// SendGhostMessage implements the send_ghost_message command.
func (c *Core) SendGhostMessage(ctx context.Context, targetPublicKey, content string) (string, error) {
	if !c.started || c.actor == nil {
		return "", ErrNotRunning
	}
	id, err := c.actor.Send(ctx, targetPublicKey, content)
	if err != nil {
		switch {
		case errors.Is(err, ghost.ErrNotRunning):
			return "", ErrNotRunning
		case errors.Is(err, ghost.ErrInvalidRecipient):
			return "", ErrInvalidRecipient
		case errors.Is(err, ghost.ErrPublishFailed):
			return "", ErrPublishFailed
		default:
			return "", fmt.Errorf("%w: %v", ErrPublishFailed, err)
		}
	}
	return id, nil
}

// DropResult is the result of create_drop.
type DropResult struct {
	CID    string
	Shards []string
}

// CreateDrop implements the create_drop command.
func (c *Core) CreateDrop(ctx context.Context, filePath string, threshold, totalShards int) (DropResult, error) {
	drop, err := deaddrop.CreateDrop(ctx, c.store, filePath, threshold, totalShards, c.log, c.metrics)
	if err != nil {
		switch {
		case errors.Is(err, deaddrop.ErrInvalidPolicy):
			return DropResult{}, ErrInvalidPolicy
		case errors.Is(err, deaddrop.ErrIO):
			return DropResult{}, fmt.Errorf("%w: %v", ErrIO, err)
		case errors.Is(err, storage.ErrUploadFailed):
			return DropResult{}, ErrUploadFailed
		default:
			return DropResult{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
	}
	return DropResult{CID: drop.CID, Shards: drop.Shares}, nil
}

// TestIPFS implements the test_ipfs command.
func (c *Core) TestIPFS(ctx context.Context) (string, error) {
	v, err := c.store.Version(ctx)
	if err != nil {
		return "", ErrStorageUnavailable
	}
	return v, nil
}

// Events returns the channel ghost_msg/msg_delivered events arrive on.
// Valid only once Ghost Mode has been started.
func (c *Core) Events() <-chan ghost.Event {
	if c.actor == nil {
		return nil
	}
	return c.actor.Events()
}

// Shutdown stops Ghost Mode (if running) and releases the identity.
func (c *Core) Shutdown(ctx context.Context) {
	if c.started && c.actor != nil {
		c.actor.Shutdown(ctx)
		c.started = false
	}
	c.v.Close()
}
