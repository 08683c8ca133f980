package models

// Principal is the authenticated identity as reported by the identity
// provider. Tokens are never part of it.
type Principal struct {
	ID          string
	Email       string
	DisplayName string
}

// Role is the backend-assigned access level of a profile.
type Role string

const (
	RolePlatformAdmin Role = "platform_admin"
	RoleSchoolAdmin   Role = "school_admin"
	RoleTeacher       Role = "teacher"
	RoleStudent       Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePlatformAdmin, RoleSchoolAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Profile is the backend record keyed by the principal id. The backend
// provisions it on the first authenticated call.
type Profile struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Role            Role   `json:"role"`
	Grade           *int   `json:"grade,omitempty"`
	FullName        string `json:"full_name"`
	ProfileComplete bool   `json:"profile_complete"`
}

// ProfileUpdate is the payload of auth/complete-profile.
type ProfileUpdate struct {
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	Grade    *int   `json:"grade,omitempty"`
}
