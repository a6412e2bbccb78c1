package account

import (
	"strings"

	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/docstore"
)

const Collection = "users"

// AccountStatus is the stored approval state of a staff account.
type AccountStatus string

const (
	StatusPendingApproval AccountStatus = "pending_approval"
	StatusApproved        AccountStatus = "approved"
	StatusRejected        AccountStatus = "rejected"
)

// ParseAccountStatus maps stored values onto the closed set. Older profiles
// say "active" for approved; anything unrecognised is pending.
func ParseAccountStatus(s string) AccountStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "active":
		return StatusApproved
	case "rejected":
		return StatusRejected
	}
	return StatusPendingApproval
}

func (s *AccountStatus) UnmarshalText(b []byte) error {
	*s = ParseAccountStatus(string(b))
	return nil
}

// Account is a staff profile. Its id is the credential user id.
type Account struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	Name          string        `json:"name"`
	Role          auth.Role     `json:"role"`
	Status        AccountStatus `json:"status"`
	CreatedAt     docstore.Time `json:"created_at"`
	ApprovedBy    string        `json:"approved_by,omitempty"`
	ApprovedAt    docstore.Time `json:"approved_at"`
	RejectedBy    string        `json:"rejected_by,omitempty"`
	RejectedAt    docstore.Time `json:"rejected_at"`
	RoleChangedBy string        `json:"role_changed_by,omitempty"`
	RoleChangedAt docstore.Time `json:"role_changed_at"`
}

// role returns the stored role, or Employee when it is missing or unknown.
func (a *Account) role() auth.Role {
	if r, err := auth.ParseRole(string(a.Role)); err == nil {
		return r
	}
	return auth.RoleEmployee
}
