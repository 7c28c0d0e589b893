package domain

// CompletionResult is the outcome of a successful inference call: the
// model that produced the answer and the generated text. The text is
// arbitrary-length UTF-8; size limits are the chunker's concern.
type CompletionResult struct {
	Model string
	Text  string
}
