package transport

import (
	"fmt"

	"github.com/relaydns/relay-dns/internal/dns/common/log"
	"github.com/relaydns/relay-dns/internal/dns/gateways/wire"
	"github.com/relaydns/relay-dns/internal/dns/services/forwarder"
)

// TransportType represents the DNS transport protocols this server knows
// about. Only plain UDP is implemented today.
type TransportType string

const (
	// TransportUDP represents standard DNS over UDP (RFC 1035)
	TransportUDP TransportType = "udp"

	// TransportDoH represents DNS over HTTPS (RFC 8484) - future implementation
	TransportDoH TransportType = "doh"

	// TransportDoT represents DNS over TLS (RFC 7858) - future implementation
	TransportDoT TransportType = "dot"
)

// NewTransport creates a transport instance for the given type, keeping a
// single construction point as more protocols are added.
func NewTransport(transportType TransportType, addr string, codec wire.Codec, logger log.Logger) (forwarder.ServerTransport, error) {
	switch transportType {
	case TransportUDP:
		return NewUDPTransport(addr, codec, logger), nil

	case TransportDoH:
		return nil, fmt.Errorf("DNS over HTTPS transport not yet implemented")

	case TransportDoT:
		return nil, fmt.Errorf("DNS over TLS transport not yet implemented")

	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}

// IsTransportSupported checks if a given transport type is currently supported.
func IsTransportSupported(transportType TransportType) bool {
	return transportType == TransportUDP
}
