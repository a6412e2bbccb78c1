package auth

import (
	"errors"
	"strings"
)

// OwnerList is the allow-list of owner emails. Owners are always approved
// and hold every administrative right.
type OwnerList []string

var ErrOwnerList = errors.New("owner list must hold one or two email addresses")

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NewOwnerList(emails ...string) (OwnerList, error) {
	var out OwnerList
	seen := map[string]bool{}
	for _, e := range emails {
		e = NormalizeEmail(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	if len(out) < 1 || len(out) > 2 {
		return nil, ErrOwnerList
	}
	return out, nil
}

func (o OwnerList) Contains(email string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}
	for _, e := range o {
		if e == email {
			return true
		}
	}
	return false
}
