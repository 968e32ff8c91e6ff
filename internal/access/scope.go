// Package access models the verified caller of an admin operation.
package access

import (
	"invoicing/internal/apperr"

	"github.com/google/uuid"
)

// Company roles
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleEmployee   = "employee"
)

// Scope is a verified {user, company, role} triple resolved from a company membership.
// Admin-facing services only ever see data of Scope.CompanyID.
type Scope struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
}

func ValidRole(role string) bool {
	return role == RoleSuperadmin || role == RoleAdmin || role == RoleEmployee
}

func (s Scope) Authenticated() bool {
	return s.UserID != uuid.Nil && s.CompanyID != uuid.Nil
}

func (s Scope) IsSuperadmin() bool {
	return s.Role == RoleSuperadmin
}

// RequireMember fails with Unauthorized when the scope was never resolved.
func RequireMember(s Scope, op string) error {
	if !s.Authenticated() {
		return apperr.Unauthorized(op, "not authenticated")
	}
	return nil
}

// RequireSuperadmin fails with Forbidden unless the caller is superadmin in its company.
func RequireSuperadmin(s Scope, op string) error {
	if err := RequireMember(s, op); err != nil {
		return err
	}
	if !s.IsSuperadmin() {
		return apperr.Forbidden(op, "only superadmins can manage recurring invoices")
	}
	return nil
}
