// Package core holds the domain types shared across the pipeline and the
// deterministic identity derivation that replaces any sequence counter:
// the same input always yields the same PersonID, which is what makes
// re-running an export against the masters safe.
package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// EmailPersonID derives the stable identity for a normalized email.
// The email must already be cleaned (lowercased, trimmed); the function
// does not re-normalize.
func EmailPersonID(email string) PersonID {
	return hashID("email", email)
}

// FallbackPersonID derives a per-webinar identity for records without a
// usable email. The webinar id is folded into the hash, so the same human
// at two webinars gets two distinct identities and is never linked.
func FallbackPersonID(zip, webinarID string) PersonID {
	return hashID("zip", zip+"||"+webinarID)
}

func hashID(kind, key string) PersonID {
	sum := sha256.Sum256([]byte(kind + ":" + key))
	return PersonID(hex.EncodeToString(sum[:16]))
}
