package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
)

const sample = `
[[users]]
email = "hr@claims.com"
name = "Helen HR"
password = "Password1!"
roles = ["HR"]

[[users]]
email = "coord1@claims.com"
name = "Carl Coordinator"
roles = ["Coordinator", "Lecturer"]
`

func TestParse(t *testing.T) {
	users, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "hr@claims.com", users[0].Email)
	assert.Equal(t, "Password1!", users[0].Password)
	assert.Equal(t, []domain.Role{domain.RoleCoordinator, domain.RoleLecturer}, users[1].Roles)
	assert.Empty(t, users[1].Password)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown role":  "[[users]]\nemail = \"a@b.c\"\nroles = [\"Dean\"]\n",
		"missing email": "[[users]]\nname = \"x\"\n",
		"duplicate":     "[[users]]\nemail = \"a@b.c\"\n[[users]]\nemail = \"A@b.c\"\n",
		"unknown field": "[[users]]\nemail = \"a@b.c\"\nnickname = \"x\"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestLoadFile(t *testing.T) {
	users, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Empty(t, users)

	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	users, err = LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
