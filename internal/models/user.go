package models

// User represents a row of the users table.
type User struct {
	UserID         string  `db:"user_id"`
	Email          string  `db:"email"`
	Name           string  `db:"name"`
	Phone          string  `db:"phone"`
	PasswordHash   *string `db:"password_hash"` // NULL for externally authenticated users
	AuthProvider   string  `db:"auth_provider"`
	ProviderUserID *string `db:"provider_user_id"`
	AuditFields
}

// UserRole is a row of user_roles.
type UserRole struct {
	UserID   string `db:"user_id"`
	RoleName string `db:"role_name"`
}
