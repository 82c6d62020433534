package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	StatusActive    UserStatus = "activo"
	StatusInactive  UserStatus = "inactivo"
	StatusSuspended UserStatus = "suspendido"
)

// ValidUserStatus reports whether status is a recognized lifecycle state.
func ValidUserStatus(status UserStatus) bool {
	switch status {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// MaxFailedAttempts is the threshold after which authentication is locked.
const MaxFailedAttempts = 5

// LockoutDuration is how long an account stays locked after the threshold.
const LockoutDuration = 15 * time.Minute

// DirectPrivilege is a privilege granted to a user outside any role.
type DirectPrivilege struct {
	PrivilegeName PrivilegeName `json:"privilege_name"`
	GrantedBy     string        `json:"granted_by,omitempty"`
	GrantedAt     time.Time     `json:"granted_at"`
}

// DirectPrivilegeList stores direct grants as a JSONB column.
type DirectPrivilegeList []DirectPrivilege

// Value implements driver.Valuer.
func (l DirectPrivilegeList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *DirectPrivilegeList) Scan(src interface{}) error {
	if src == nil {
		*l = DirectPrivilegeList{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported direct privilege list type %T", src)
	}
	return json.Unmarshal(raw, l)
}

// User represents an application user. Roles is hydrated by the repository
// resolve operations, never persisted on the row itself.
type User struct {
	ID               string              `db:"id" json:"id"`
	Name             string              `db:"name" json:"name"`
	Surname          string              `db:"surname" json:"surname"`
	Email            string              `db:"email" json:"email"`
	PasswordHash     string              `db:"password_hash" json:"-"`
	DirectPrivileges DirectPrivilegeList `db:"direct_privileges" json:"direct_privileges"`
	Status           UserStatus          `db:"status" json:"status"`
	RegisteredAt     time.Time           `db:"registered_at" json:"registered_at"`
	LastAccess       *time.Time          `db:"last_access" json:"last_access,omitempty"`
	FailedAttempts   int                 `db:"failed_attempts" json:"-"`
	LockedUntil      *time.Time          `db:"locked_until" json:"-"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updated_at"`

	Roles []Role `db:"-" json:"roles,omitempty"`
}

// FullName joins name and surname for display.
func (u *User) FullName() string {
	return u.Name + " " + u.Surname
}

// HasRole reports whether the user holds a role with the given name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of the user's hydrated roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// RoleIDs returns the ids of the user's hydrated roles.
func (u *User) RoleIDs() []string {
	ids := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}

// Locked reports whether authentication must be refused at the given time.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Status    *UserStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
