package wire

import (
	"encoding/binary"
	"errors"

	"github.com/llmdns/llm-dns/internal/dns/domain"
)

// ErrMalformed indicates input that is not a structurally valid DNS
// query message (truncated header, bad QDCOUNT, unterminated QNAME).
var ErrMalformed = errors.New("malformed DNS query")

// DNSCodec encodes and decodes DNS messages for the UDP transport. The
// gateway only ever decodes inbound queries and encodes its own
// responses; it is never an upstream DNS client.
type DNSCodec interface {
	DecodeQuery(data []byte) (domain.Question, error)
	EncodeResponse(resp domain.DNSResponse) ([]byte, error)
}

// MessageID extracts the transaction ID from a raw DNS message, if the
// input is long enough to carry one. It lets the transport send a
// FORMERR reply for packets that failed full decoding.
func MessageID(data []byte) (uint16, bool) {
	if len(data) < 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(data[0:2]), true
}
