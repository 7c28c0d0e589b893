// Package domain contains the core types of the DNS-to-LLM gateway:
// questions, responses, resource records, and the rules that turn a
// query name into an inference prompt. The package has no dependencies
// on transport, wire format, or the inference service.
package domain

import "fmt"

// Question represents the question section of a DNS query together with
// the message ID and the client's recursion-desired flag, which the
// gateway echoes back in its response.
type Question struct {
	ID               uint16
	Name             string
	Type             RRType
	Class            RRClass
	RecursionDesired bool
}

// NewQuestion constructs a Question and validates its fields.
func NewQuestion(id uint16, name string, rrtype RRType, class RRClass) (Question, error) {
	q := Question{
		ID:    id,
		Name:  name,
		Type:  rrtype,
		Class: class,
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks whether the Question fields are structurally and semantically valid.
func (q Question) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("query name must not be empty")
	}
	if !q.Type.IsValid() {
		return fmt.Errorf("unsupported RRType: %d", q.Type)
	}
	if !q.Class.IsValid() {
		return fmt.Errorf("unsupported RRClass: %d", q.Class)
	}
	return nil
}

// IsServiceable reports whether the gateway can answer this question.
// Only TXT/IN questions are serviced; everything else is refused at the
// service layer with NOTIMP.
func (q Question) IsServiceable() bool {
	return q.Type == RRTypeTXT && q.Class == RRClassIN
}
