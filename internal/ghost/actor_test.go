package ghost

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"

	"ghostdrop/internal/vault"
)

func newTestVault(t *testing.T, password string) *vault.Vault {
	t.Helper()
	v := vault.New(filepath.Join(t.TempDir(), "identity.enc"), nil)
	_, err := v.Init(password)
	require.NoError(t, err)
	return v
}

// TestActorSendReceiveAck builds two actors on loopback TCP, connects them
// directly (bypassing mDNS, which does not function in test sandboxes),
// and verifies a message sent from one is decrypted and acked by the other.
func TestActorSendReceiveAck(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	hostA, err := NewHost([]string{"/ip4/127.0.0.1/tcp/0"})
	require.NoError(t, err)
	defer hostA.Close()
	hostB, err := NewHost([]string{"/ip4/127.0.0.1/tcp/0"})
	require.NoError(t, err)
	defer hostB.Close()

	err = hostA.Connect(ctx, peer.AddrInfo{ID: hostB.ID(), Addrs: hostB.Addrs()})
	require.NoError(t, err)

	vA := newTestVault(t, "alice-pass")
	vB := newTestVault(t, "bob-pass")

	actorA, err := NewActor(hostA, vA, "ghostdrop-test", nil, nil)
	require.NoError(t, err)
	actorB, err := NewActor(hostB, vB, "ghostdrop-test", nil, nil)
	require.NoError(t, err)

	require.NoError(t, actorA.Start(ctx))
	require.NoError(t, actorB.Start(ctx))
	defer actorA.Shutdown(context.Background())
	defer actorB.Shutdown(context.Background())

	// Gossipsub needs a moment to mesh the two directly-connected peers
	// on each other's subscribed topics before a publish will propagate.
	time.Sleep(2 * time.Second)

	bIDStr, err := vB.PublicID()
	require.NoError(t, err)

	msgID, err := actorA.Send(ctx, bIDStr, "hello bob")
	require.NoError(t, err)
	require.NotEmpty(t, msgID)

	select {
	case ev := <-actorB.Events():
		gm, ok := ev.(GhostMsg)
		require.True(t, ok)
		require.Equal(t, "hello bob", gm.Content)
		require.Equal(t, msgID, gm.ID)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for ghost_msg event on B")
	}

	select {
	case ev := <-actorA.Events():
		md, ok := ev.(MsgDelivered)
		require.True(t, ok)
		require.Equal(t, msgID, md.ID)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for msg_delivered event on A")
	}
}

func TestSendBeforeStartFails(t *testing.T) {
	ctx := context.Background()
	h, err := NewHost([]string{"/ip4/127.0.0.1/tcp/0"})
	require.NoError(t, err)
	defer h.Close()

	v := newTestVault(t, "pass")
	a, err := NewActor(h, v, "ghostdrop-test", nil, nil)
	require.NoError(t, err)

	_, err = a.Send(ctx, "anything", "hi")
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestStartTwiceFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h, err := NewHost([]string{"/ip4/127.0.0.1/tcp/0"})
	require.NoError(t, err)
	defer h.Close()

	v := newTestVault(t, "pass")
	a, err := NewActor(h, v, "ghostdrop-test", nil, nil)
	require.NoError(t, err)

	require.NoError(t, a.Start(ctx))
	defer a.Shutdown(context.Background())

	err = a.Start(ctx)
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestSendToInvalidRecipientFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h, err := NewHost([]string{"/ip4/127.0.0.1/tcp/0"})
	require.NoError(t, err)
	defer h.Close()

	v := newTestVault(t, "pass")
	a, err := NewActor(h, v, "ghostdrop-test", nil, nil)
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	defer a.Shutdown(context.Background())

	_, err = a.Send(ctx, "not-a-valid-key!!", "hi")
	require.ErrorIs(t, err, ErrInvalidRecipient)
}
