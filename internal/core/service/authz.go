package service

import (
	"github.com/stackit/qa-api/internal/core/domain"
)

// Require allows identity when its role ranks at least min.
func Require(identity *domain.User, min domain.Role) error {
	if identity == nil || !identity.Role.AtLeast(min) {
		return domain.ErrForbidden
	}
	return nil
}

// RequireSelfOrAdmin allows admins and the owner of the resource.
func RequireSelfOrAdmin(identity *domain.User, ownerID string) error {
	if identity == nil {
		return domain.ErrForbidden
	}
	if identity.Role == domain.RoleAdmin || (ownerID != "" && identity.ID == ownerID) {
		return nil
	}
	return domain.ErrForbidden
}
