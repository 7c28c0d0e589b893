// Package transport provides network transports for the DNS gateway.
// It converts between wire format and domain objects so the service
// layer only ever sees domain types. UDP is the only transport; the
// ServerTransport contract it satisfies lives in the service package.
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/llmdns/llm-dns/internal/dns/common/log"
	"github.com/llmdns/llm-dns/internal/dns/domain"
	"github.com/llmdns/llm-dns/internal/dns/gateways/wire"
	"github.com/llmdns/llm-dns/internal/dns/services/gateway"
)

// maxPacketSize is the standard DNS UDP message size limit for queries.
const maxPacketSize = 512

// UDPTransport implements gateway.ServerTransport for DNS over UDP
// (RFC 1035). It owns the socket and the read loop; each received
// datagram is handled on its own goroutine so a slow inference call for
// one query never blocks the others.
type UDPTransport struct {
	addr   string
	conn   *net.UDPConn
	codec  wire.DNSCodec
	logger log.Logger

	// Synchronization for graceful shutdown
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
}

// NewUDPTransport creates a new UDP transport instance.
func NewUDPTransport(addr string, codec wire.DNSCodec, logger log.Logger) *UDPTransport {
	return &UDPTransport{
		addr:   addr,
		codec:  codec,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start binds the UDP socket and starts the packet handling loop.
func (t *UDPTransport) Start(ctx context.Context, handler gateway.DNSResponder) error {
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
		"address":   t.addr,
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

// Address returns the network address the transport is bound to. After
// Start it reflects the actual bound address, so a ":0" listen address
// resolves to the assigned port.
func (t *UDPTransport) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.conn != nil {
		return t.conn.LocalAddr().String()
	}
	return t.addr
}

// listenLoop continuously receives UDP packets and dispatches them. A
// receive error is logged and the loop continues; nothing in the
// request path may stall or kill the loop.
func (t *UDPTransport) listenLoop(ctx context.Context, handler gateway.DNSResponder) {
	buffer := make([]byte, maxPacketSize)

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
			go t.handlePacket(ctx, packet, clientAddr, handler)
		}
	}
}

// handlePacket processes a single UDP DNS packet and sends exactly one
// reply, or none when not even a transaction ID could be recovered.
func (t *UDPTransport) handlePacket(ctx context.Context, data []byte, clientAddr *net.UDPAddr, handler gateway.DNSResponder) {
	query, err := t.codec.DecodeQuery(data)
	if err != nil {
		t.logger.Warn(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
			"size":   len(data),
		}, "Failed to decode DNS query")
		t.sendFormErr(data, clientAddr)
		return
	}

	t.logger.Debug(map[string]any{
		"client": clientAddr.String(),
		"id":     query.ID,
		"name":   query.Name,
		"type":   query.Type.String(),
	}, "Received DNS query")

	response, err := handler.HandleQuery(ctx, query, clientAddr)
	if err != nil {
		t.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"id":     query.ID,
			"error":  err.Error(),
		}, "Failed to handle DNS query")
		response = domain.NewDNSErrorResponse(query, domain.SERVFAIL)
	}

	t.send(response, clientAddr)
}

// sendFormErr replies with a header-only FORMERR when the inbound
// packet carried a readable transaction ID; otherwise the packet is
// dropped silently.
func (t *UDPTransport) sendFormErr(data []byte, clientAddr *net.UDPAddr) {
	id, ok := wire.MessageID(data)
	if !ok {
		return
	}
	t.send(domain.DNSResponse{ID: id, RCode: domain.FORMERR}, clientAddr)
}

// send encodes and transmits one response datagram.
func (t *UDPTransport) send(response domain.DNSResponse, clientAddr *net.UDPAddr) {
	responseData, err := t.codec.EncodeResponse(response)
	if err != nil {
		t.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"id":     response.ID,
			"error":  err.Error(),
		}, "Failed to encode DNS response")
		return
	}

	if _, err := t.conn.WriteToUDP(responseData, clientAddr); err != nil {
		t.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"id":     response.ID,
			"error":  err.Error(),
		}, "Failed to send DNS response")
		return
	}

	t.logger.Debug(map[string]any{
		"client":  clientAddr.String(),
		"id":      response.ID,
		"rcode":   response.RCode.String(),
		"answers": len(response.Answers),
		"size":    len(responseData),
	}, "Sent DNS response")
}

var _ gateway.ServerTransport = &UDPTransport{}
