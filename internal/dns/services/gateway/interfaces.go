package gateway

import (
	"context"
	"net"

	"github.com/llmdns/llm-dns/internal/dns/domain"
)

// CompletionClient produces a completion for a prompt, trying its
// configured models in order until one succeeds.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (domain.CompletionResult, error)
}

// Chunker splits completion text into DNS TXT sized chunks.
type Chunker interface {
	Chunk(text string) []string
}

// DNSResponder is how the transport layer hands queries to the service.
// The transport handles all network protocol details; the responder
// only sees domain objects and always produces a response.
type DNSResponder interface {
	HandleQuery(ctx context.Context, query domain.Question, clientAddr net.Addr) (domain.DNSResponse, error)
}

// ServerTransport defines the interface for DNS server transport
// implementations. The UDP transport is the only one today; the
// contract leaves room for DoH/DoT later without touching the service.
type ServerTransport interface {
	// Start begins listening for requests and handling them via the provided responder.
	Start(ctx context.Context, handler DNSResponder) error

	// Stop gracefully shuts down the transport.
	Stop() error

	// Address returns the network address the transport is bound to.
	Address() string
}
