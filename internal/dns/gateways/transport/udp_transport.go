// Package transport provides the server-side network boundary. It converts
// between raw datagrams and domain packets, so the service layer never
// touches wire bytes or sockets.
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/relaydns/relay-dns/internal/dns/common/log"
	"github.com/relaydns/relay-dns/internal/dns/gateways/wire"
	"github.com/relaydns/relay-dns/internal/dns/services/forwarder"
)

// maxDatagramSize is the standard DNS over UDP packet size limit; every
// inbound datagram is read into a buffer of this size.
const maxDatagramSize = 512

// UDPTransport implements ServerTransport for standard DNS over UDP
// (RFC 1035). It owns socket management and wire conversion, delegating
// the DNS semantics to the packet handler.
type UDPTransport struct {
	addr   string
	conn   *net.UDPConn
	codec  wire.Codec
	logger log.Logger

	// Synchronization for graceful shutdown
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
}

// NewUDPTransport creates a new UDP transport instance.
func NewUDPTransport(addr string, codec wire.Codec, logger log.Logger) *UDPTransport {
	return &UDPTransport{
		addr:   addr,
		codec:  codec,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start binds the UDP socket and launches the receive loop.
func (t *UDPTransport) Start(ctx context.Context, handler forwarder.PacketHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("UDP transport already running")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", t.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address %s: %w", t.addr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind UDP socket on %s: %w", t.addr, err)
	}

	t.conn = conn
	t.running = true

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   conn.LocalAddr().String(),
	}, "DNS transport started")

	go t.listenLoop(ctx, handler)

	return nil
}

// Stop gracefully shuts down the UDP transport.
func (t *UDPTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}

	close(t.stopCh)

	var closeErr error
	if t.conn != nil {
		closeErr = t.conn.Close()
		if closeErr != nil {
			t.logger.Warn(map[string]any{
				"error": closeErr.Error(),
			}, "Error closing UDP connection")
		}
	}

	t.running = false

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   t.addr,
	}, "DNS transport stopped")

	return closeErr
}

// Address returns the bound socket address while running, and the
// configured address otherwise. With a ":0" configuration this is how the
// caller learns the actual port.
func (t *UDPTransport) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.running && t.conn != nil {
		return t.conn.LocalAddr().String()
	}
	return t.addr
}

// listenLoop receives datagrams until the transport stops.
func (t *UDPTransport) listenLoop(ctx context.Context, handler forwarder.PacketHandler) {
	buffer := make([]byte, maxDatagramSize)

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug(nil, "UDP transport stopping due to context cancellation")
			return
		case <-t.stopCh:
			t.logger.Debug(nil, "UDP transport stopping due to stop signal")
			return
		default:
			n, clientAddr, err := t.conn.ReadFromUDP(buffer)
			if err != nil {
				t.mu.RLock()
				running := t.running
				t.mu.RUnlock()

				if !running {
					return // Normal shutdown
				}

				t.logger.Warn(map[string]any{
					"error": err.Error(),
				}, "Failed to read UDP packet")
				continue
			}

			packet := make([]byte, n)
			copy(packet, buffer[:n])
			go t.handleDatagram(ctx, packet, clientAddr, handler)
		}
	}
}

// handleDatagram processes a single inbound datagram: decode, resolve,
// encode, send. Any failure drops the exchange with a log line; malformed
// input never produces a crafted DNS error reply.
func (t *UDPTransport) handleDatagram(ctx context.Context, data []byte, clientAddr *net.UDPAddr, handler forwarder.PacketHandler) {
	t.logger.Debug(map[string]any{
		"client": clientAddr.String(),
		"size":   len(data),
		"raw":    fmt.Sprintf("%x", data),
	}, "Received raw DNS datagram")

	req, err := t.codec.Decode(data)
	if err != nil {
		t.logger.Warn(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
			"size":   len(data),
		}, "Failed to decode DNS packet")
		return
	}

	resp, err := handler.HandlePacket(ctx, req, clientAddr)
	if err != nil {
		t.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"id":     req.Header.ID,
			"error":  err.Error(),
		}, "Failed to handle DNS packet")
		return
	}

	respData, err := t.codec.Encode(resp)
	if err != nil {
		t.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"id":     resp.Header.ID,
			"error":  err.Error(),
		}, "Failed to encode DNS response")
		return
	}

	if _, err := t.conn.WriteToUDP(respData, clientAddr); err != nil {
		t.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"id":     resp.Header.ID,
			"error":  err.Error(),
		}, "Failed to send DNS response")
		return
	}

	t.logger.Debug(map[string]any{
		"client":  clientAddr.String(),
		"id":      resp.Header.ID,
		"rcode":   resp.Header.RCode.String(),
		"answers": len(resp.Answers),
		"size":    len(respData),
	}, "Sent DNS response")
}

var _ forwarder.ServerTransport = (*UDPTransport)(nil)
