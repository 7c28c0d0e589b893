package domain

import "fmt"

// AnswerTTL is the fixed TTL, in seconds, applied to every TXT answer
// the gateway produces. Completions are not cacheable in any meaningful
// way, so the value is a convention rather than a freshness promise.
const AnswerTTL uint32 = 300

// maxCharacterString is the RFC 1035 limit for a single TXT
// character-string (one length byte, up to 255 data bytes).
const maxCharacterString = 255

// ResourceRecord represents a single DNS resource record held in its
// wire-encoded RDATA form, ready for the codec to emit.
type ResourceRecord struct {
	Name  string
	Type  RRType
	Class RRClass
	TTL   uint32
	Data  []byte
}

// Validate checks whether the ResourceRecord fields are valid.
func (rr ResourceRecord) Validate() error {
	if rr.Name == "" {
		return fmt.Errorf("record name must not be empty")
	}
	if !rr.Type.IsValid() {
		return fmt.Errorf("invalid RRType: %d", rr.Type)
	}
	if !rr.Class.IsValid() {
		return fmt.Errorf("invalid RRClass: %d", rr.Class)
	}
	if len(rr.Data) == 0 {
		return fmt.Errorf("record data must not be empty")
	}
	return nil
}

// NewTXTRecord builds a TXT/IN resource record whose RDATA is the given
// chunks encoded as length-prefixed character-strings, in order. Each
// chunk must fit in a single character-string (<= 255 bytes). An empty
// chunk is legal and encodes as a single zero length byte, so a TXT
// answer always carries at least one character-string.
func NewTXTRecord(name string, chunks []string) (ResourceRecord, error) {
	if len(chunks) == 0 {
		return ResourceRecord{}, fmt.Errorf("TXT record requires at least one chunk")
	}
	var data []byte
	for i, chunk := range chunks {
		if len(chunk) > maxCharacterString {
			return ResourceRecord{}, fmt.Errorf("TXT chunk %d too long: %d bytes (max %d)", i, len(chunk), maxCharacterString)
		}
		data = append(data, byte(len(chunk)))
		data = append(data, chunk...)
	}
	rr := ResourceRecord{
		Name:  name,
		Type:  RRTypeTXT,
		Class: RRClassIN,
		TTL:   AnswerTTL,
		Data:  data,
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// TXTStrings decodes TXT RDATA back into its ordered character-strings.
// It is the inverse of the encoding performed by NewTXTRecord.
func TXTStrings(data []byte) ([]string, error) {
	var out []string
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		if i+n > len(data) {
			return nil, fmt.Errorf("truncated TXT character-string at offset %d", i-1)
		}
		out = append(out, string(data[i:i+n]))
		i += n
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("TXT RDATA contains no character-strings")
	}
	return out, nil
}
