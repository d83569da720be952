// Package redact removes secrets from patch content before it is sent
// to any model provider.
//
// Detection uses regex heuristics covering common secret shapes: API
// keys, JWTs, private keys, AWS credentials, bearer tokens, and
// provider-specific tokens. Patches of known-sensitive files (.env,
// key material) are withheld wholesale rather than scanned line by
// line. The static pattern detector always sees the original text;
// only prompt content is scrubbed.
package redact
