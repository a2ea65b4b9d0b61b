// Package seed reads the users provisioned at startup from a TOML file.
package seed

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
)

// File is the layout of the seed file:
//
//	[[users]]
//	email = "hr@claims.com"
//	name = "HR"
//	password = "..."
//	roles = ["HR"]
type File struct {
	Users []domain.UserSpec `toml:"users"`
}

// LoadFile reads path. A missing file yields no users and no error.
func LoadFile(path string) ([]domain.UserSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a seed document.
func Parse(r io.Reader) ([]domain.UserSpec, error) {
	var file File
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: invalid seed file: %v", apperrors.ErrValidation, err)
	}

	known := make(map[domain.Role]bool, len(domain.AllRoles))
	for _, r := range domain.AllRoles {
		known[r] = true
	}
	seen := make(map[string]bool, len(file.Users))
	for i, u := range file.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			return nil, fmt.Errorf("%w: seed user %d has no email", apperrors.ErrValidation, i+1)
		}
		if seen[email] {
			return nil, fmt.Errorf("%w: seed user %s is listed twice", apperrors.ErrValidation, email)
		}
		seen[email] = true
		for _, role := range u.Roles {
			if !known[role] {
				return nil, fmt.Errorf("%w: seed user %s has unknown role %q", apperrors.ErrValidation, email, role)
			}
		}
	}
	return file.Users, nil
}
