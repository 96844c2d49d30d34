//go:build !relay

package ghost

import libp2p "github.com/libp2p/go-libp2p"

// relayOptions is a no-op in the default build; pass -tags relay to enable
// circuit-relay/DCUtR NAT traversal.
func relayOptions() []libp2p.Option {
	return nil
}
