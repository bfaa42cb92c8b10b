// Package upstream implements the client side of forwarding: one UDP
// datagram out to the configured resolver, one datagram back.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/relaydns/relay-dns/internal/dns/common/log"
	"github.com/relaydns/relay-dns/internal/dns/domain"
	"github.com/relaydns/relay-dns/internal/dns/gateways/wire"
)

// Error message constants for consistent error handling
const (
	errNoServerProvided = "no upstream resolver address provided"
	errCodecRequired    = "DNS codec is required"
	errFailedToConnect  = "failed to connect: %w"
	errEncodeFailed     = "encode failed: %w"
	errWriteFailed      = "write failed: %w"
	errReadFailed       = "read failed: %w"
	errIDMismatch       = "transaction id mismatch: sent %d, got %d"
)

// maxDatagramSize bounds one reply read; standard DNS over UDP.
const maxDatagramSize = 512

// DialFunc defines a function type for establishing a network connection.
// It exists so tests can substitute an in-memory pipe for a real socket.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Client exchanges single-question queries with one upstream resolver.
// It owns the low-level socket concerns; matching replies to questions is
// done here by transaction id, and a mismatch is fatal for the exchange.
type Client struct {
	server  string        // upstream resolver address, e.g. "1.1.1.1:53"
	timeout time.Duration // per-exchange deadline
	codec   wire.Codec
	dial    DialFunc
	logger  log.Logger
}

// Options defines configuration parameters for the upstream client.
type Options struct {
	// required parameters
	Server  string
	Timeout time.Duration
	Codec   wire.Codec
	// options to inject for testing purposes
	Dial   DialFunc
	Logger log.Logger
}

// NewClient creates an upstream client. The server address and codec are
// required; the timeout defaults to 5 seconds and the dialer to net.Dialer.
func NewClient(opts Options) (*Client, error) {
	if opts.Server == "" {
		return nil, errors.New(errNoServerProvided)
	}
	if opts.Codec == nil {
		return nil, errors.New(errCodecRequired)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Dial == nil {
		opts.Dial = (&net.Dialer{}).DialContext
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Client{
		server:  opts.Server,
		timeout: opts.Timeout,
		codec:   opts.Codec,
		dial:    opts.Dial,
		logger:  opts.Logger,
	}, nil
}

// ensureContextDeadline adds the client's default timeout when the caller
// did not set a deadline of its own.
func (c *Client) ensureContextDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, nil
}

// Exchange sends one query packet upstream and blocks for its reply.
// The reply must carry the transaction id of the query it answers; any
// other id fails the exchange without a retry.
func (c *Client) Exchange(ctx context.Context, query domain.Packet) (domain.Packet, error) {
	ctx, cancel := c.ensureContextDeadline(ctx)
	if cancel != nil {
		defer cancel()
	}

	conn, err := c.dial(ctx, "udp", c.server)
	if err != nil {
		return domain.Packet{}, fmt.Errorf(errFailedToConnect, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	queryBytes, err := c.codec.Encode(query)
	if err != nil {
		return domain.Packet{}, fmt.Errorf(errEncodeFailed, err)
	}

	// Run the blocking write/read on a goroutine so the select below can
	// honor context cancellation.
	type result struct {
		reply domain.Packet
		err   error
	}
	resultChan := make(chan result, 1)

	go func() {
		if _, err := conn.Write(queryBytes); err != nil {
			resultChan <- result{err: fmt.Errorf(errWriteFailed, err)}
			return
		}

		buffer := make([]byte, maxDatagramSize)
		n, err := conn.Read(buffer)
		if err != nil {
			resultChan <- result{err: fmt.Errorf(errReadFailed, err)}
			return
		}

		reply, err := c.codec.Decode(buffer[:n])
		resultChan <- result{reply: reply, err: err}
	}()

	select {
	case res := <-resultChan:
		if res.err != nil {
			return domain.Packet{}, res.err
		}
		if res.reply.Header.ID != query.Header.ID {
			return domain.Packet{}, fmt.Errorf(errIDMismatch, query.Header.ID, res.reply.Header.ID)
		}
		c.logger.Debug(map[string]any{
			"server":  c.server,
			"id":      res.reply.Header.ID,
			"answers": len(res.reply.Answers),
			"rcode":   res.reply.Header.RCode.String(),
		}, "Upstream exchange completed")
		return res.reply, nil
	case <-ctx.Done():
		return domain.Packet{}, ctx.Err()
	}
}
