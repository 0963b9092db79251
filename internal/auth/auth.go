// Package auth holds the shared-secret admin capability and the caller identity
// attached to each request.
package auth

import (
	"crypto/subtle"
	"strings"
)

// AdminKey is the configured administrative shared secret.
// The zero value disables admin access.
type AdminKey struct {
	secret []byte
}

// NewAdminKey wraps the configured secret.
func NewAdminKey(secret string) AdminKey {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return AdminKey{}
	}
	return AdminKey{secret: []byte(secret)}
}

// Enabled reports whether an admin secret is configured.
func (k AdminKey) Enabled() bool { return len(k.secret) > 0 }

// Matches reports whether presented equals the secret, in constant time.
func (k AdminKey) Matches(presented string) bool {
	if !k.Enabled() || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare(k.secret, []byte(presented)) == 1
}

// MatchesAny reports whether any of the presented values matches.
func (k AdminKey) MatchesAny(presented ...string) bool {
	for _, p := range presented {
		if k.Matches(p) {
			return true
		}
	}
	return false
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Caller is who made a request: an optional self-declared identity plus the
// admin capability.
type Caller struct {
	Identity string
	Admin    bool
}

// Anonymous reports whether the caller supplied no identity.
func (c Caller) Anonymous() bool { return c.Identity == "" }
