package domain

import "fmt"

// DNSResponse represents a complete DNS response message: the echoed
// question, a response code, and zero or more answer records. The
// gateway never emits authority or additional sections.
type DNSResponse struct {
	ID       uint16
	RCode    RCode
	Question Question
	Answers  []ResourceRecord
}

// NewDNSResponse constructs a DNSResponse answering the given question
// and validates its fields.
func NewDNSResponse(q Question, rcode RCode, answers []ResourceRecord) (DNSResponse, error) {
	resp := DNSResponse{
		ID:       q.ID,
		RCode:    rcode,
		Question: q,
		Answers:  answers,
	}
	if err := resp.Validate(); err != nil {
		return DNSResponse{}, err
	}
	return resp, nil
}

// NewDNSErrorResponse creates a DNSResponse carrying only the echoed
// question and the given response code. The answer section is empty, so
// the RCode alone conveys the outcome.
func NewDNSErrorResponse(q Question, rcode RCode) DNSResponse {
	return DNSResponse{
		ID:       q.ID,
		RCode:    rcode,
		Question: q,
	}
}

// Validate checks whether the DNSResponse fields are structurally valid.
func (resp DNSResponse) Validate() error {
	if !resp.RCode.IsValid() {
		return fmt.Errorf("invalid RCode: %d", resp.RCode)
	}
	for i, rr := range resp.Answers {
		if err := rr.Validate(); err != nil {
			return fmt.Errorf("invalid answer record at index %d: %w", i, err)
		}
	}
	return nil
}

// IsError returns true if the response indicates an error condition.
func (resp DNSResponse) IsError() bool {
	return resp.RCode != NOERROR
}

// HasAnswers returns true if the response contains answer records.
func (resp DNSResponse) HasAnswers() bool {
	return len(resp.Answers) > 0
}
