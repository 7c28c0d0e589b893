// Package gateway orchestrates the query-to-completion pipeline: a
// decoded DNS question becomes a prompt, the prompt becomes a
// completion via the inference client's fallback chain, and the
// completion is chunked into a single TXT answer. Every failure maps to
// a DNS response code; the service never returns an error upward for a
// bad query, only for broken wiring.
package gateway

import (
	"context"
	"net"

	"github.com/llmdns/llm-dns/internal/dns/common/clock"
	"github.com/llmdns/llm-dns/internal/dns/common/log"
	"github.com/llmdns/llm-dns/internal/dns/domain"
)

// Gateway implements DNSResponder. It holds only read-only
// collaborators and is safe to share across concurrent requests.
type Gateway struct {
	completions CompletionClient
	chunker     Chunker
	clock       clock.Clock
	logger      log.Logger
}

// Options defines the collaborators for a Gateway.
type Options struct {
	Completions CompletionClient
	Chunker     Chunker
	Clock       clock.Clock
	Logger      log.Logger
}

// New constructs a Gateway from the given options. Clock and Logger
// default to the real clock and a noop logger.
func New(opts Options) *Gateway {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Gateway{
		completions: opts.Completions,
		chunker:     opts.Chunker,
		clock:       opts.Clock,
		logger:      opts.Logger,
	}
}

// HandleQuery processes one DNS question end to end and always returns
// a response to send. Response code mapping:
//
//	non-TXT/IN question  -> NOTIMP
//	empty prompt         -> REFUSED
//	inference exhausted  -> SERVFAIL
//	success              -> NOERROR with one TXT answer
func (g *Gateway) HandleQuery(ctx context.Context, query domain.Question, clientAddr net.Addr) (domain.DNSResponse, error) {
	client := ""
	if clientAddr != nil {
		client = clientAddr.String()
	}

	if !query.IsServiceable() {
		g.logger.Warn(map[string]any{
			"client": client,
			"id":     query.ID,
			"type":   query.Type.String(),
			"class":  query.Class.String(),
		}, "Refusing non-TXT/IN query")
		return domain.NewDNSErrorResponse(query, domain.NOTIMP), nil
	}

	prompt := domain.PromptFromName(query.Name)
	if prompt == "" {
		g.logger.Warn(map[string]any{
			"client": client,
			"id":     query.ID,
			"name":   query.Name,
		}, "Refusing query with empty prompt")
		return domain.NewDNSErrorResponse(query, domain.REFUSED), nil
	}

	start := g.clock.Now()
	result, err := g.completions.Complete(ctx, prompt)
	elapsed := g.clock.Now().Sub(start)
	if err != nil {
		g.logger.Error(map[string]any{
			"client":  client,
			"id":      query.ID,
			"prompt":  prompt,
			"elapsed": elapsed.String(),
			"error":   err.Error(),
		}, "Inference failed for query")
		return domain.NewDNSErrorResponse(query, domain.SERVFAIL), nil
	}

	chunks := g.chunker.Chunk(result.Text)
	answer, err := domain.NewTXTRecord(query.Name, chunks)
	if err != nil {
		// only reachable if the chunker is misconfigured beyond the
		// 255-byte character-string limit
		g.logger.Error(map[string]any{
			"client": client,
			"id":     query.ID,
			"error":  err.Error(),
		}, "Failed to build TXT answer")
		return domain.NewDNSErrorResponse(query, domain.SERVFAIL), nil
	}

	resp, err := domain.NewDNSResponse(query, domain.NOERROR, []domain.ResourceRecord{answer})
	if err != nil {
		return domain.NewDNSErrorResponse(query, domain.SERVFAIL), nil
	}

	g.logger.Info(map[string]any{
		"client":  client,
		"id":      query.ID,
		"prompt":  prompt,
		"model":   result.Model,
		"chunks":  len(chunks),
		"bytes":   len(result.Text),
		"elapsed": elapsed.String(),
	}, "Answered query")

	return resp, nil
}

var _ DNSResponder = &Gateway{}
