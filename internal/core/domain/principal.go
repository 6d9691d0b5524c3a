package domain

import "time"

// ClaimsStamp captures the claim versions a principal was built against.
// Global moves whenever any role's permission set changes; User moves when
// the user's role memberships change.
type ClaimsStamp struct {
	Global int64
	User   int64
}

// Newer reports whether other was produced after s for either counter.
func (s ClaimsStamp) Newer(other ClaimsStamp) bool {
	return other.Global > s.Global || other.User > s.User
}

// Principal is an authenticated caller together with its materialized claims.
// Roles and Permissions are hints for clients; authorization decisions are
// always recomputed against the store.
type Principal struct {
	UserID      string
	Username    string
	Roles       []string
	Permissions []string
	Stamp       ClaimsStamp
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Authenticated reports whether the principal identifies a user.
func (p *Principal) Authenticated() bool {
	return p != nil && p.UserID != ""
}

// HasPermissionClaim reports whether the permission is among the embedded claims.
func (p *Principal) HasPermissionClaim(name string) bool {
	if p == nil {
		return false
	}
	for _, perm := range p.Permissions {
		if perm == name {
			return true
		}
	}
	return false
}
