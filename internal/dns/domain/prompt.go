package domain

import "strings"

// PromptFromName derives the inference prompt from a DNS query name.
//
// The mapping must stay bit-exact for client compatibility: dots between
// labels become single spaces, hyphens inside a label are kept verbatim,
// and the whole prompt is lowercased and trimmed. A trailing root dot
// contributes nothing.
//
// "what.is-rust.example" -> "what is-rust example"
func PromptFromName(name string) string {
	name = strings.TrimSuffix(name, ".")
	labels := strings.Split(name, ".")
	prompt := strings.Join(labels, " ")
	return strings.TrimSpace(strings.ToLower(prompt))
}
