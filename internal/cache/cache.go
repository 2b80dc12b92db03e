package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Verdict is the cached outcome of verifying one segment against a corpus
// snapshot
type Verdict struct {
	Verified   bool    `json:"verified"`
	Source     string  `json:"verification_source,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Cache stores verification verdicts keyed by fingerprint. Implementations
// must be safe for concurrent use: the cache is shared across parallel
// Check invocations. There is no eviction; Clear is the only way to bound
// memory and is exposed to callers operationally.
type Cache interface {
	Get(fingerprint string) (Verdict, bool)
	Put(fingerprint string, v Verdict)
	Clear()
	Size() int
}

// corpusPrefixBytes bounds how much of the serialized corpus participates
// in the fingerprint. Corpora that differ only beyond this prefix produce
// the same key, so stale verdicts can survive such a change. Kept as-is:
// callers observe and rely on this behavior.
const corpusPrefixBytes = 500

// Fingerprint keys a segment text against a corpus snapshot
func Fingerprint(segmentText, serializedCorpus string) string {
	prefix := serializedCorpus
	if len(prefix) > corpusPrefixBytes {
		prefix = prefix[:corpusPrefixBytes]
	}
	sum := sha256.Sum256([]byte(segmentText + "\n" + prefix))
	return "veracite:v1:" + hex.EncodeToString(sum[:])
}
