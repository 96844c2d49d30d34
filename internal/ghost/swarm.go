package ghost

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	libp2p "github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
)

// NewHost builds the libp2p transport host: Noise security, yamux muxing,
// TCP and QUIC-v1 listeners, and (build-tag gated) circuit-relay/DCUtR NAT
// traversal. The host's own peer identity is an Ed25519 keypair distinct
// from the application-level X25519 identity in internal/vault — one
// authenticates transport, the other authenticates application messages.
func NewHost(listenAddrs []string) (host.Host, error) {
	_, edPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("ghost: generate transport identity: %w", err)
	}
	libPriv, _, err := crypto.KeyPairFromStdKey(&edPriv)
	if err != nil {
		return nil, fmt.Errorf("ghost: convert transport identity: %w", err)
	}

	opts := []libp2p.Option{
		libp2p.Identity(libPriv),
		libp2p.DefaultSecurity,
		libp2p.DefaultMuxers,
		libp2p.DefaultTransports,
		libp2p.ListenAddrStrings(listenAddrs...),
	}
	opts = append(opts, relayOptions()...)

	h, err := libp2p.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ghost: build libp2p host: %w", err)
	}
	return h, nil
}
