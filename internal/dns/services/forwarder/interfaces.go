package forwarder

import (
	"context"
	"net"

	"github.com/relaydns/relay-dns/internal/dns/domain"
)

// Exchanger performs one upstream round trip: send a single-question query,
// block for its reply. Implemented by the upstream gateway.
type Exchanger interface {
	Exchange(ctx context.Context, query domain.Packet) (domain.Packet, error)
}

// PacketHandler processes one inbound DNS packet and produces the response
// packet. The transport handles all network protocol details - the handler
// only sees domain objects.
type PacketHandler interface {
	HandlePacket(ctx context.Context, req domain.Packet, clientAddr net.Addr) (domain.Packet, error)
}

// ServerTransport defines the interface for DNS server transport
// implementations. Different transport types (UDP, DoH, DoT, DoQ) can
// implement this interface while providing the same handling contract.
type ServerTransport interface {
	// Start begins listening for requests and handling them via the provided handler.
	Start(ctx context.Context, handler PacketHandler) error

	// Stop gracefully shuts down the transport, closing connections and cleaning up resources.
	Stop() error

	// Address returns the network address the transport is bound to.
	Address() string
}
