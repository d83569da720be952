// Package patterns implements stateless heuristic scanners for known
// high-risk idioms in patch text: hardcoded secrets, SQL assembled by
// string concatenation, disabled TLS verification, and credentials in
// outbound calls.
//
// Detector findings act as a floor under the model's judgment, never a
// replacement for it: the classifier merges them with model-reported
// issues and the combined risk level never drops below either source.
package patterns
