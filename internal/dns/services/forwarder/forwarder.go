// Package forwarder implements the request handling policy of the server:
// split a multi-question inbound packet into single-question upstream
// queries, merge the replies, and fall back to a fixed synthetic answer
// when no upstream resolver is configured.
package forwarder

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"net/netip"

	"github.com/relaydns/relay-dns/internal/dns/common/log"
	"github.com/relaydns/relay-dns/internal/dns/domain"
)

// syntheticTTL is the cache lifetime of fabricated answers.
const syntheticTTL = 60

// syntheticAddr is the fixed address every fabricated A record points at.
var syntheticAddr = netip.AddrFrom4([4]byte{8, 8, 8, 8})

// Forwarder is the service layer between transport and upstream. One
// instance serves all packets; it holds no per-request state.
type Forwarder struct {
	upstream Exchanger // nil when no resolver is configured
	logger   log.Logger
	nextID   func() uint16
}

// Options configures a Forwarder. Upstream may be nil, selecting the
// synthetic-answer policy. NextID exists for tests; it defaults to a random
// 16-bit generator, which is collision-resistant enough because forwarded
// questions are issued and awaited strictly sequentially.
type Options struct {
	Upstream Exchanger
	Logger   log.Logger
	NextID   func() uint16
}

// New constructs a Forwarder.
func New(opts Options) *Forwarder {
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.NextID == nil {
		opts.NextID = func() uint16 { return uint16(rand.Uint32()) }
	}
	return &Forwarder{
		upstream: opts.Upstream,
		logger:   opts.Logger,
		nextID:   opts.NextID,
	}
}

// HandlePacket resolves one inbound packet into its response packet.
//
// With an upstream configured, every question is forwarded as its own
// single-question query carrying a fresh transaction id, strictly in order,
// and the replies' answers are concatenated in question order. Any upstream
// failure (including a transaction id mismatch) fails the whole exchange;
// there is no partial-result policy.
func (f *Forwarder) HandlePacket(ctx context.Context, req domain.Packet, clientAddr net.Addr) (domain.Packet, error) {
	var resolved []domain.Record

	if f.upstream != nil {
		for i, q := range req.Questions {
			reply, err := f.forwardQuestion(ctx, req.Header, q)
			if err != nil {
				return domain.Packet{}, fmt.Errorf("forwarding question %d (%s): %w", i, q.Name, err)
			}
			resolved = append(resolved, reply.Answers...)
		}
	}

	resp := domain.Packet{
		Header: domain.Header{
			ID:               req.Header.ID,
			Response:         true,
			Opcode:           req.Header.Opcode,
			RecursionDesired: req.Header.RecursionDesired,
			RCode:            responseCode(req.Header.Opcode),
		},
		Questions: req.Questions,
	}
	resp.Header.QuestionCount = uint16(len(resp.Questions))

	if f.upstream == nil {
		// No resolver configured: fabricate one fixed-address A record
		// per question.
		for _, q := range req.Questions {
			resp.Answers = append(resp.Answers, domain.NewARecord(q.Name, syntheticTTL, syntheticAddr))
		}
	} else {
		resp.Answers = resolved
	}
	resp.Header.AnswerCount = uint16(len(resp.Answers))

	f.logger.Debug(map[string]any{
		"client":    addrString(clientAddr),
		"id":        resp.Header.ID,
		"rcode":     resp.Header.RCode.String(),
		"questions": len(resp.Questions),
		"answers":   len(resp.Answers),
		"forwarded": f.upstream != nil,
	}, "Resolved DNS packet")

	return resp, nil
}

// forwardQuestion sends one question upstream and blocks for its reply.
func (f *Forwarder) forwardQuestion(ctx context.Context, inbound domain.Header, q domain.Question) (domain.Packet, error) {
	query := domain.Packet{
		Header: domain.Header{
			ID:               f.nextID(),
			Opcode:           inbound.Opcode,
			RecursionDesired: inbound.RecursionDesired,
			QuestionCount:    1,
		},
		Questions: []domain.Question{q},
	}

	f.logger.Debug(map[string]any{
		"id":   query.Header.ID,
		"name": q.Name,
		"type": q.Type.String(),
	}, "Forwarding question upstream")

	return f.upstream.Exchange(ctx, query)
}

// responseCode selects the rescode for the outbound packet: only standard
// queries are implemented.
func responseCode(opcode uint8) domain.RCode {
	if opcode == 0 {
		return domain.RCodeNoError
	}
	return domain.RCodeNotImp
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}

var _ PacketHandler = (*Forwarder)(nil)
