// Package cache stores normalized annotation results keyed by the
// submitted text, so a repeated submission inside the TTL skips the
// metered provider call. Quota and captcha checks still apply to
// cache hits.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"sentiment-analyzer/backend/internal/nlu"
)

// AnnotationCache is a best-effort cache: a miss or backend failure
// simply means the provider gets called again
type AnnotationCache interface {
	Get(ctx context.Context, text string) (*nlu.Annotation, bool)
	Set(ctx context.Context, text string, annotation *nlu.Annotation)
}

// Key derives the cache key for a block of text. Hashing keeps
// arbitrary user text out of key namespaces and bounds key length.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "annotation:" + hex.EncodeToString(sum[:])
}
