package models

// User is the DB row for the users table.
type User struct {
	UserID       string
	Username     string
	Name         string
	PasswordHash string
	Role         string
	OrgUnitID    *string
	IsActive     bool
	AuditFields
}
