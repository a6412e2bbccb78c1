package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// Role is a staff role. The set is closed; ParseRole rejects anything else.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleManager    Role = "Manager"
	RoleSupervisor Role = "Supervisor"
	RoleDoctor     Role = "Doctor"
	RoleEmployee   Role = "Employee"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleSupervisor, RoleDoctor, RoleEmployee}

func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role: %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil && string(r) != ""
}

// Status is the outcome of resolving a request's credentials and profile.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusUnauthorized    Status = "unauthorized"
)

// HTTPCode is the response code a gate returns when it denies s.
func (s Status) HTTPCode() int {
	switch s {
	case StatusApproved:
		return http.StatusOK
	case StatusUnauthenticated:
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

func (s Status) Message() string {
	switch s {
	case StatusUnauthenticated:
		return "please log in to continue"
	case StatusPendingApproval:
		return "your account is pending approval by an administrator"
	case StatusRejected:
		return "your account access has been rejected, contact an administrator"
	case StatusUnauthorized:
		return "you don't have permission to access this page"
	case StatusApproved:
		return "approved"
	}
	return string(s)
}
