package domain

// UserRole tags what a user may do in the approval workflow.
type UserRole string

const (
	RoleUser UserRole = "user"
	// RoleAdmin is the superuser role; it may act at any approval level.
	RoleAdmin   UserRole = "admin"
	RoleAdminL1 UserRole = "admin_l1"
	RoleAdminL2 UserRole = "admin_l2"
	RoleAdminL3 UserRole = "admin_l3"
	RoleAdminL4 UserRole = "admin_l4"
)

// User is a municipal system account. OrgUnitID scopes which budget rows the
// user sees; nil means no org restriction.
type User struct {
	UserID       string   `json:"userID"`
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	OrgUnitID    *string  `json:"orgUnitID"`
	IsActive     bool     `json:"isActive"`
	AuditFields
}

// ApprovalLevel maps the role to the single ladder level the user may act at.
// Zero means the user approves nothing. The superuser returns zero too and is
// matched separately via IsSuperuser.
func (u *User) ApprovalLevel() int {
	switch u.Role {
	case RoleAdminL1:
		return 1
	case RoleAdminL2:
		return 2
	case RoleAdminL3:
		return 3
	case RoleAdminL4:
		return 4
	default:
		return 0
	}
}

// IsSuperuser reports whether the user holds the unrestricted admin role.
func (u *User) IsSuperuser() bool {
	return u.Role == RoleAdmin
}

// CanActAtLevel reports whether the user may approve a transaction waiting at
// the given ladder level.
func (u *User) CanActAtLevel(level int) bool {
	if u.IsSuperuser() {
		return true
	}
	return u.ApprovalLevel() == level
}
