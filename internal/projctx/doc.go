// Package projctx caches a compact summary of the project under
// review so that expensive project-understanding work is amortized
// across reviews.
//
// Contexts are keyed by a fingerprint over the project's dependency
// manifests; a stored context is served while its fingerprint matches
// and its age is within the TTL. Synthesis scans manifests and layout
// directly and is fully deterministic. When synthesis fails, the most
// recent stored context is served with a degraded marker instead of
// failing the pipeline.
package projctx
