// Package ghost implements the gossip messaging actor: a single-writer
// event loop owning a libp2p swarm, gossipsub topics, mDNS discovery, and
// the delivery-acknowledgement table.
package ghost

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ghostdrop/internal/metrics"
	"ghostdrop/internal/vault"
)

// Actor owns the swarm and serializes every mutation through one goroutine.
type Actor struct {
	h       host.Host
	ps      *pubsub.PubSub
	mdnsTag string
	v       *vault.Vault
	log     *zap.Logger
	metrics *metrics.Registry

	cmdCh   chan any
	eventCh chan Event

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	loopDone chan struct{}
}

// NewActor constructs an Actor bound to an already-built libp2p host.
func NewActor(h host.Host, v *vault.Vault, mdnsTag string, log *zap.Logger, reg *metrics.Registry) (*Actor, error) {
	ps, err := pubsub.NewGossipSub(context.Background(), h)
	if err != nil {
		return nil, fmt.Errorf("ghost: build gossipsub: %w", err)
	}
	return &Actor{
		h:       h,
		ps:      ps,
		mdnsTag: mdnsTag,
		v:       v,
		log:     log,
		metrics: reg,
		cmdCh:   make(chan any, 32),
		eventCh: make(chan Event, 64),
	}, nil
}

// Events returns the channel the host reads ghost_msg/msg_delivered events from.
func (a *Actor) Events() <-chan Event { return a.eventCh }

// Start subscribes to the local identity's inbox topic, begins mDNS
// discovery, and spawns the event loop. Idempotent: a second call while
// already running returns ErrAlreadyRunning.
func (a *Actor) Start(ctx context.Context) error {
	a.stateMu.Lock()
	if a.running {
		a.stateMu.Unlock()
		return ErrAlreadyRunning
	}
	a.running = true
	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.loopDone = make(chan struct{})
	a.stateMu.Unlock()

	pk, err := a.v.PublicKey()
	if err != nil {
		a.stateMu.Lock()
		a.running = false
		a.stateMu.Unlock()
		return err
	}
	id, _ := a.v.PublicID()

	topic, err := a.ps.Join(inboxTopic(id))
	if err != nil {
		a.stateMu.Lock()
		a.running = false
		a.stateMu.Unlock()
		return fmt.Errorf("ghost: join own inbox topic: %w", err)
	}
	sub, err := topic.Subscribe()
	if err != nil {
		a.stateMu.Lock()
		a.running = false
		a.stateMu.Unlock()
		return fmt.Errorf("ghost: subscribe own inbox topic: %w", err)
	}

	if _, err := startMDNS(a.h, a.mdnsTag, a.log, a.metrics); err != nil && a.log != nil {
		a.log.Warn("mdns discovery unavailable", zap.Error(err))
	}

	joined := map[string]*pubsub.Topic{inboxTopic(id): topic}
	msgCh := make(chan *pubsub.Message, 16)
	go a.pumpSubscription(loopCtx, sub, msgCh)

	go a.loop(loopCtx, pk, topic, joined, msgCh)
	return nil
}

func (a *Actor) pumpSubscription(ctx context.Context, sub *pubsub.Subscription, out chan<- *pubsub.Message) {
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			return
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

type sendCmd struct {
	targetPK string
	content  string
	result   chan sendResult
}

type sendResult struct {
	id  string
	err error
}

type shutdownCmd struct {
	done chan struct{}
}

// Send encrypts content for targetPKBase58 and publishes it on that peer's
// inbox topic, recording the new message id in the ack table.
func (a *Actor) Send(ctx context.Context, targetPKBase58, content string) (string, error) {
	a.stateMu.Lock()
	running := a.running
	a.stateMu.Unlock()
	if !running {
		return "", ErrNotRunning
	}

	result := make(chan sendResult, 1)
	select {
	case a.cmdCh <- sendCmd{targetPK: targetPKBase58, content: content, result: result}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-result:
		return r.id, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown stops the event loop, allowing in-flight publishes a bounded
// grace window to complete.
func (a *Actor) Shutdown(ctx context.Context) {
	a.stateMu.Lock()
	if !a.running {
		a.stateMu.Unlock()
		return
	}
	done := make(chan struct{})
	a.stateMu.Unlock()

	grace, cancelGrace := context.WithTimeout(ctx, 2*time.Second)
	defer cancelGrace()

	select {
	case a.cmdCh <- shutdownCmd{done: done}:
	case <-grace.Done():
		a.cancel()
		return
	}

	select {
	case <-done:
	case <-grace.Done():
		a.cancel()
	}
}

func (a *Actor) loop(ctx context.Context, selfPK [32]byte, ownTopic *pubsub.Topic, joined map[string]*pubsub.Topic, msgCh chan *pubsub.Message) {
	defer func() {
		a.stateMu.Lock()
		a.running = false
		loopDone := a.loopDone
		a.stateMu.Unlock()
		if loopDone != nil {
			close(loopDone)
		}
	}()

	acks := newAckTable()
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-msgCh:
			if !ok {
				continue
			}
			a.handleInbound(msg, acks, joined, ownTopic)

		case cmd := <-a.cmdCh:
			switch c := cmd.(type) {
			case sendCmd:
				id, err := a.handleSend(ctx, c.targetPK, c.content, acks, joined)
				c.result <- sendResult{id: id, err: err}
			case shutdownCmd:
				close(c.done)
				return
			}

		case now := <-ticker.C:
			expired := acks.prune(now)
			if a.metrics != nil {
				if expired > 0 {
					for i := 0; i < expired; i++ {
						a.metrics.MessagesExpired.Inc()
					}
				}
				a.metrics.MeshPeers.Set(float64(len(a.h.Network().Peers())))
			}
		}
	}
}

func (a *Actor) joinTopic(name string, joined map[string]*pubsub.Topic) (*pubsub.Topic, error) {
	if t, ok := joined[name]; ok {
		return t, nil
	}
	t, err := a.ps.Join(name)
	if err != nil {
		return nil, err
	}
	joined[name] = t
	return t, nil
}

func (a *Actor) handleSend(ctx context.Context, targetPKBase58, content string, acks ackTable, joined map[string]*pubsub.Topic) (string, error) {
	targetPK, err := vault.DecodePublicID(targetPKBase58)
	if err != nil {
		return "", ErrInvalidRecipient
	}

	payload := envelopePayload{Kind: "msg", ID: uuid.NewString(), Content: content, TS: time.Now().Unix()}
	plain, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ghost: marshal message: %w", err)
	}
	envelope, err := a.v.EncryptTo(targetPK, plain)
	if err != nil {
		return "", fmt.Errorf("ghost: encrypt message: %w", err)
	}

	topic, err := a.joinTopic(inboxTopic(targetPKBase58), joined)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	if err := topic.Publish(ctx, envelope); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	acks.record(payload.ID, time.Now())
	if a.metrics != nil {
		a.metrics.MessagesSent.Inc()
	}
	return payload.ID, nil
}

func (a *Actor) handleInbound(msg *pubsub.Message, acks ackTable, joined map[string]*pubsub.Topic, ownTopic *pubsub.Topic) {
	senderPK, plain, err := a.v.DecryptFrom(msg.Data)
	if err != nil {
		if a.log != nil {
			a.log.Debug("dropping undecryptable gossip message", zap.Error(err))
		}
		return
	}

	var payload envelopePayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		if a.log != nil {
			a.log.Debug("dropping malformed message payload", zap.Error(err))
		}
		return
	}

	senderID := vault.EncodePublicID(senderPK)

	switch payload.Kind {
	case "msg":
		if a.metrics != nil {
			a.metrics.MessagesReceived.Inc()
		}
		a.eventCh <- GhostMsg{ID: payload.ID, From: senderID, Content: payload.Content, Timestamp: payload.TS}
		a.sendAck(senderID, payload.ID, joined)

	case "ack":
		if acks.markAcked(payload.ID) {
			if a.metrics != nil {
				a.metrics.MessagesAcked.Inc()
			}
			a.eventCh <- MsgDelivered{ID: payload.ID}
		}
	}
}

func (a *Actor) sendAck(toPKBase58, messageID string, joined map[string]*pubsub.Topic) {
	targetPK, err := vault.DecodePublicID(toPKBase58)
	if err != nil {
		return
	}
	ack := envelopePayload{Kind: "ack", ID: messageID, TS: time.Now().Unix()}
	plain, err := json.Marshal(ack)
	if err != nil {
		return
	}
	envelope, err := a.v.EncryptTo(targetPK, plain)
	if err != nil {
		return
	}
	topic, err := a.joinTopic(inboxTopic(toPKBase58), joined)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = topic.Publish(ctx, envelope)
}
