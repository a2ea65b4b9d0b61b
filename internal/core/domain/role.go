package domain

// Role is a named permission group a user can hold.
type Role string

const (
	RoleAdmin       Role = "Admin"
	RoleCoordinator Role = "Coordinator"
	RoleLecturer    Role = "Lecturer"
	RoleManager     Role = "Manager"
	RoleHR          Role = "HR"
)

// AllRoles lists every role provisioned at startup.
var AllRoles = []Role{RoleAdmin, RoleCoordinator, RoleLecturer, RoleManager, RoleHR}

// ReviewerRoles may approve or reject claims.
var ReviewerRoles = []Role{RoleCoordinator, RoleManager}

// Principal is the authenticated caller together with its role memberships.
type Principal struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Roles  []Role `json:"roles"`
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal holds at least one of roles.
func (p Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// IsReviewer reports whether the principal may approve or reject claims.
func (p Principal) IsReviewer() bool {
	return p.HasAnyRole(ReviewerRoles...)
}

// RoleLanding pairs a role with the page its holders start on.
type RoleLanding struct {
	Role        Role   `json:"role"`
	Destination string `json:"destination"`
}

// LandingTable is evaluated in order; the first role the principal holds wins.
type LandingTable []RoleLanding

// DefaultLanding is used when the principal holds none of the table's roles.
const DefaultLanding = "/me"

// DefaultLandingTable keeps reviewer dashboards ahead of the lecturer view.
var DefaultLandingTable = LandingTable{
	{Role: RoleCoordinator, Destination: "/review/pending"},
	{Role: RoleManager, Destination: "/review/claims"},
	{Role: RoleHR, Destination: "/hr/dashboard"},
	{Role: RoleLecturer, Destination: "/claims/mine"},
	{Role: RoleAdmin, Destination: "/hr/lecturers"},
}

// Landing returns the destination for p.
func (t LandingTable) Landing(p Principal) string {
	for _, entry := range t {
		if p.HasRole(entry.Role) {
			return entry.Destination
		}
	}
	return DefaultLanding
}
