package app

import (
	"strings"

	"tarasamar/internal/domain"
)

// AdminEmails grants admin access to a fixed set of addresses, compared
// case-insensitively.
type AdminEmails map[string]struct{}

func NewAdminEmails(emails ...string) AdminEmails {
	set := make(AdminEmails, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

func (a AdminEmails) CanAdminister(u domain.User) bool {
	if u.Email == "" {
		return false
	}
	_, ok := a[strings.ToLower(strings.TrimSpace(u.Email))]
	return ok
}

// RoleIs grants access to users carrying the given role claim.
type RoleIs string

func (r RoleIs) CanAdminister(u domain.User) bool {
	return r != "" && u.Role == string(r)
}

type anyOf []domain.Authorizer

// AnyOf passes when at least one policy passes.
func AnyOf(policies ...domain.Authorizer) domain.Authorizer { return anyOf(policies) }

func (a anyOf) CanAdminister(u domain.User) bool {
	for _, p := range a {
		if p != nil && p.CanAdminister(u) {
			return true
		}
	}
	return false
}
