// Package identity derives canonical internal identifiers from external
// identity-provider subject ids. The derivation is the system's central
// correctness invariant: every component that computes it must produce
// byte-identical output for the same input, so the algorithm lives here and
// only here. Nothing else may re-implement it.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode/utf16"

	"github.com/google/uuid"
)

// Version selects the derivation algorithm. V1 is the legacy 32-bit rolling
// hash that all stored identities were created under. V2 widens the digest to
// 128 bits (SHA-256 truncated) in the same UUID-shaped grammar; old and new
// identities can coexist because the resolver is versioned.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

// Resolver turns external subject ids into canonical identities. The zero
// value is not usable; construct with New.
type Resolver struct {
	namespace string
	version   Version
}

func New(namespace string, version Version) Resolver {
	return Resolver{namespace: namespace, version: version}
}

// Resolve derives the canonical identity for an external subject id. It is a
// total function: on an internal fault it falls back to a freshly random
// identity rather than failing the request. That fallback is non-deterministic
// and will orphan any state keyed under it; it exists only so identity
// resolution can never abort a workflow.
func (r Resolver) Resolve(externalID string) (id string) {
	defer func() {
		if rec := recover(); rec != nil {
			id = uuid.NewString()
		}
	}()
	if r.version == V2 {
		return resolveV2(externalID + r.namespace)
	}
	return resolveV1(externalID + r.namespace)
}

// resolveV1 folds the input through a 32-bit rolling hash over UTF-16 code
// units (matching the legacy behavior exactly, including its weakness: 32 bits
// of entropy means collisions are expected at moderate population sizes).
// The 8 hex digits of |h| are then re-sliced into the five UUID groups:
//
//	d[0:8] - d[0:4] - 4 d[1:4] - a d[0:3] - d zero-padded to 12
func resolveV1(s string) string {
	var h int32
	for _, cu := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(cu)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	d := fmt.Sprintf("%08x", abs)
	tail := (d + "000000000000")[:12]
	return fmt.Sprintf("%s-%s-4%s-a%s-%s", d[0:8], d[0:4], d[1:4], d[0:3], tail)
}

// resolveV2 keeps the grammar of v1 (version nibble 4, variant nibble a) but
// draws all digits from a SHA-256 digest, eliminating the collision weakness.
func resolveV2(s string) string {
	sum := sha256.Sum256([]byte(s))
	d := hex.EncodeToString(sum[:16])
	return fmt.Sprintf("%s-%s-4%s-a%s-%s", d[0:8], d[8:12], d[12:15], d[15:18], d[18:30])
}
