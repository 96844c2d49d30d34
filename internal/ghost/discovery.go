package ghost

import (
	"context"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	mdns "github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"go.uber.org/zap"

	"ghostdrop/internal/metrics"
)

// mdnsNotifee connects to every peer the local-network discovery service
// finds; gossipsub meshes peers it is directly connected to and shares a
// subscription with. Each successful connect refreshes the mesh-peer gauge
// from the host's live connection count rather than a local counter, since
// mDNS-found peers aren't the only way the swarm gains connections.
type mdnsNotifee struct {
	h       host.Host
	log     *zap.Logger
	metrics *metrics.Registry
}

func (n *mdnsNotifee) HandlePeerFound(info peer.AddrInfo) {
	if err := n.h.Connect(context.Background(), info); err != nil {
		if n.log != nil {
			n.log.Debug("mdns peer connect failed", zap.String("peer", info.ID.String()), zap.Error(err))
		}
		return
	}
	if n.metrics != nil {
		n.metrics.MeshPeers.Set(float64(len(n.h.Network().Peers())))
	}
}

// startMDNS registers the mDNS discovery service under tag on h.
func startMDNS(h host.Host, tag string, log *zap.Logger, reg *metrics.Registry) (mdns.Service, error) {
	svc := mdns.NewMdnsService(h, tag, &mdnsNotifee{h: h, log: log, metrics: reg})
	if err := svc.Start(); err != nil {
		return nil, err
	}
	return svc, nil
}

// inboxTopic builds the gossip topic string a peer subscribes to for its
// own incoming mail: "/deaddrop/inbox/<base58(pk)>".
func inboxTopic(pkBase58 string) string {
	return "/deaddrop/inbox/" + pkBase58
}
