//go:build relay

package ghost

import libp2p "github.com/libp2p/go-libp2p"

// relayOptions enables circuit-relay v2 client support and DCUtR hole
// punching for peers behind NATs, per the optional NAT-traversal design.
func relayOptions() []libp2p.Option {
	return []libp2p.Option{
		libp2p.EnableRelay(),
		libp2p.EnableHolePunching(),
	}
}
