package account

import (
	"github.com/primelabs/primelabs/internal/platform/auth"
)

// Resolve decides the status of a verified identity. A nil identity is an
// unverified token. Owners are approved whatever their profile says; a
// missing profile is pending.
func Resolve(identity *auth.Identity, profile *Account, owners auth.OwnerList) auth.Status {
	if identity == nil {
		return auth.StatusUnauthenticated
	}
	if owners.Contains(identity.Email) {
		return auth.StatusApproved
	}
	if profile == nil {
		return auth.StatusPendingApproval
	}
	switch profile.Status {
	case StatusApproved:
		return auth.StatusApproved
	case StatusRejected:
		return auth.StatusRejected
	}
	return auth.StatusPendingApproval
}

// NewSession builds the request session for a verified identity.
func NewSession(identity *auth.Identity, profile *Account, owners auth.OwnerList) *auth.Session {
	sess := &auth.Session{Status: Resolve(identity, profile, owners)}
	if identity == nil {
		return sess
	}
	sess.UserID = identity.UserID
	sess.Email = auth.NormalizeEmail(identity.Email)
	sess.Owner = owners.Contains(identity.Email)
	switch {
	case profile != nil:
		sess.Name = profile.Name
		sess.Role = profile.role()
	case sess.Owner:
		sess.Role = auth.RoleAdmin
	}
	return sess
}
