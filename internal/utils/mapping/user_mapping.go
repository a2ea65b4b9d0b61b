package mapping

import (
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	"github.com/SscSPs/lecturer_claims_app/internal/models"
)

// ToModelUser converts a domain User to a model User. Roles are stored separately.
func ToModelUser(d domain.User) models.User {
	var hash *string
	if d.PasswordHash != "" {
		h := d.PasswordHash
		hash = &h
	}
	return models.User{
		UserID:         d.UserID,
		Email:          d.Email,
		Name:           d.Name,
		Phone:          d.Phone,
		PasswordHash:   hash,
		AuthProvider:   d.AuthProvider,
		ProviderUserID: d.ProviderUserID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUser converts a model User and its role names to a domain User
func ToDomainUser(m models.User, roles []string) domain.User {
	u := domain.User{
		UserID:         m.UserID,
		Email:          m.Email,
		Name:           m.Name,
		Phone:          m.Phone,
		AuthProvider:   m.AuthProvider,
		ProviderUserID: m.ProviderUserID,
		Roles:          make([]domain.Role, 0, len(roles)),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.PasswordHash != nil {
		u.PasswordHash = *m.PasswordHash
	}
	for _, r := range roles {
		u.Roles = append(u.Roles, domain.Role(r))
	}
	return u
}
