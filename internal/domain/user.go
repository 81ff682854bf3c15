package domain

import (
	"strings"
	"time"

	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// Role is the access category assigned to a user.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleUser              Role = "user"
	RoleDepartmentManager Role = "department_manager"
)

// DefaultRole is assigned when registration omits a role.
const DefaultRole = RoleUser

// Roles lists every accepted role.
var Roles = []Role{RoleAdmin, RoleUser, RoleDepartmentManager}

// ParseRole matches raw input case-insensitively against the closed role set.
// Blank input yields DefaultRole.
func ParseRole(raw string) (Role, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultRole, nil
	}
	for _, r := range Roles {
		if string(r) == raw {
			return r, nil
		}
	}
	return "", apperrors.NewValidationError("invalid role", map[string]any{
		"role": "must be one of admin, user, department_manager",
	})
}

// User is a registered citizen or staff account.
type User struct {
	ID                 int64
	PhoneNumber        string
	FullName           string
	Email              string
	ResidentialAddress string
	Role               Role
	Department         *string
	IsVerified         bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsDepartmentManager() bool {
	return u.Role == RoleDepartmentManager
}

// CanManageDepartment reports whether the user may act on complaints of the
// named department.
func (u *User) CanManageDepartment(name string) bool {
	if u.IsAdmin() {
		return true
	}
	return u.IsDepartmentManager() && u.Department != nil && strings.EqualFold(*u.Department, name)
}
