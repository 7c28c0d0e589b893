// Package wire provides encoding and decoding of DNS messages for UDP
// transport. It handles the DNS wire format as specified in RFC 1035.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/llmdns/llm-dns/internal/dns/common/log"
	"github.com/llmdns/llm-dns/internal/dns/domain"
)

// Header flag bits (RFC 1035 §4.1.1).
const (
	flagQR = 0x8000 // query/response
	flagAA = 0x0400 // authoritative answer
	flagRD = 0x0100 // recursion desired
)

// udpCodec implements the DNSCodec interface for standard DNS over UDP messages.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec creates and returns a new instance of udpCodec using the provided logger.
func NewUDPCodec(logger log.Logger) *udpCodec {
	return &udpCodec{
		logger: logger,
	}
}

// DecodeQuery parses a DNS query message. It fails with ErrMalformed on
// truncated or structurally invalid input; semantic checks (QTYPE,
// QCLASS, empty prompt) are the service layer's concern.
func (c *udpCodec) DecodeQuery(data []byte) (domain.Question, error) {
	if len(data) < 12 {
		return domain.Question{}, fmt.Errorf("%w: message shorter than header", ErrMalformed)
	}
	id := binary.BigEndian.Uint16(data[0:2])
	flags := binary.BigEndian.Uint16(data[2:4])
	if flags&flagQR != 0 {
		return domain.Question{}, fmt.Errorf("%w: QR bit set on a query", ErrMalformed)
	}
	qdCount := binary.BigEndian.Uint16(data[4:6])
	if qdCount != 1 {
		return domain.Question{}, fmt.Errorf("%w: expected exactly one question, got %d", ErrMalformed, qdCount)
	}
	name, offset, err := decodeName(data, 12)
	if err != nil {
		return domain.Question{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if offset+4 > len(data) {
		return domain.Question{}, fmt.Errorf("%w: truncated question section", ErrMalformed)
	}
	qtype := binary.BigEndian.Uint16(data[offset : offset+2])
	qclass := binary.BigEndian.Uint16(data[offset+2 : offset+4])

	return domain.Question{
		ID:               id,
		Name:             name,
		Type:             domain.RRType(qtype),
		Class:            domain.RRClass(qclass),
		RecursionDesired: flags&flagRD != 0,
	}, nil
}

// EncodeResponse serializes a DNSResponse into a binary format suitable
// for sending via UDP. The question section echoes the original query;
// the RD flag mirrors what the client sent. When the response carries
// no question (a FORMERR built from an undecodable packet), QDCOUNT is
// zero and only the header is emitted.
func (c *udpCodec) EncodeResponse(resp domain.DNSResponse) ([]byte, error) {
	var buf bytes.Buffer

	flags := uint16(flagQR | flagAA)
	if resp.Question.RecursionDesired {
		flags |= flagRD
	}
	flags |= uint16(resp.RCode) & 0x000F

	qdCount := uint16(1)
	hasQuestion := resp.Question.Name != "" || resp.Question.Type != 0
	if !hasQuestion {
		qdCount = 0
	}

	answerCount := len(resp.Answers)
	if answerCount > 65535 {
		return nil, fmt.Errorf("too many answer records: %d (max 65535)", answerCount)
	}

	_ = binary.Write(&buf, binary.BigEndian, resp.ID)
	_ = binary.Write(&buf, binary.BigEndian, flags)
	_ = binary.Write(&buf, binary.BigEndian, qdCount)
	_ = binary.Write(&buf, binary.BigEndian, uint16(answerCount))
	_ = binary.Write(&buf, binary.BigEndian, uint16(0)) // NSCOUNT
	_ = binary.Write(&buf, binary.BigEndian, uint16(0)) // ARCOUNT

	if !hasQuestion {
		return buf.Bytes(), nil
	}

	qname, err := encodeDomainName(resp.Question.Name)
	if err != nil {
		return nil, err
	}
	buf.Write(qname)
	_ = binary.Write(&buf, binary.BigEndian, uint16(resp.Question.Type))
	_ = binary.Write(&buf, binary.BigEndian, uint16(resp.Question.Class))
	qnameOffset := 12 // QNAME always starts right after the 12-byte header

	for _, rr := range resp.Answers {
		if rr.Name == resp.Question.Name {
			// Compression pointer to the QNAME written above; the
			// answer owner name always matches the question here.
			buf.Write([]byte{0xC0 | byte(qnameOffset>>8), byte(qnameOffset & 0xFF)})
		} else {
			name, err := encodeDomainName(rr.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
		}
		_ = binary.Write(&buf, binary.BigEndian, uint16(rr.Type))
		_ = binary.Write(&buf, binary.BigEndian, uint16(rr.Class))
		_ = binary.Write(&buf, binary.BigEndian, rr.TTL)

		dataLen := len(rr.Data)
		if dataLen > 65535 {
			return nil, fmt.Errorf("resource record data too large: %d bytes (max 65535)", dataLen)
		}
		_ = binary.Write(&buf, binary.BigEndian, uint16(dataLen))
		buf.Write(rr.Data)
	}

	c.logger.Debug(map[string]any{
		"id":      resp.ID,
		"rcode":   resp.RCode.String(),
		"answers": answerCount,
		"size":    buf.Len(),
	}, "Encoded DNS response")

	return buf.Bytes(), nil
}

// decodeName decodes a domain name from a DNS message at the specified
// offset, handling label compression as defined in RFC 1035.
func decodeName(data []byte, offset int) (string, int, error) {
	var labels []string
	for {
		if offset >= len(data) {
			return "", 0, fmt.Errorf("name offset out of bounds")
		}
		length := int(data[offset])
		if length == 0 {
			offset++
			break
		}
		if length&0xC0 == 0xC0 {
			if offset+1 >= len(data) {
				return "", 0, fmt.Errorf("compression pointer out of bounds")
			}
			ptr := int(binary.BigEndian.Uint16(data[offset:offset+2]) & 0x3FFF)
			if ptr >= offset {
				return "", 0, fmt.Errorf("compression pointer does not point backward")
			}
			suffix, _, err := decodeName(data, ptr)
			if err != nil {
				return "", 0, err
			}
			labels = append(labels, suffix)
			offset += 2
			break
		}
		offset++
		if offset+length > len(data) {
			return "", 0, fmt.Errorf("label length out of bounds")
		}
		labels = append(labels, string(data[offset:offset+length]))
		offset += length
	}
	return strings.Join(labels, "."), offset, nil
}

// encodeDomainName encodes a domain name into DNS wire format without compression.
func encodeDomainName(name string) ([]byte, error) {
	var buf bytes.Buffer
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		buf.WriteByte(0)
		return buf.Bytes(), nil
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) > 63 {
			return nil, fmt.Errorf("label too long: %s", label)
		}
		if len(label) == 0 {
			continue
		}
		buf.WriteByte(byte(len(label)))
		buf.WriteString(label)
	}
	buf.WriteByte(0)
	return buf.Bytes(), nil
}

var _ DNSCodec = &udpCodec{}
