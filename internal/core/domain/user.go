package domain

// AuthProviderLocal marks users who sign in with email and password.
const AuthProviderLocal = "local"

// AuthProviderGoogle marks users created through Google sign-in.
const AuthProviderGoogle = "google"

// User represents a user of the application in the domain.
type User struct {
	UserID         string  `json:"userID"` // Primary Key (UUID)
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone,omitempty"`
	PasswordHash   string  `json:"-"`
	AuthProvider   string  `json:"authProvider"`
	ProviderUserID *string `json:"-"`
	Roles          []Role  `json:"roles"`
	AuditFields
}

// Principal projects the user onto the identity used for authorization.
func (u User) Principal() Principal {
	return Principal{UserID: u.UserID, Name: u.Name, Email: u.Email, Roles: u.Roles}
}

// UserSpec describes a user to provision if absent.
type UserSpec struct {
	Email    string `toml:"email"`
	Name     string `toml:"name"`
	Phone    string `toml:"phone"`
	Password string `toml:"password"`
	Roles    []Role `toml:"roles"`
}

// ExternalIdentity is a verified identity asserted by an external provider.
type ExternalIdentity struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	EmailVerified  bool
}
