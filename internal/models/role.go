package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Seeded system role names.
const (
	RoleAdministrador   = "Administrador"
	RoleEditorPreguntas = "Editor de Preguntas"
	RoleGestorExamenes  = "Gestor de Examenes"
)

// RolePrivilege is one entry of a role's privilege bundle.
type RolePrivilege struct {
	PrivilegeName PrivilegeName `json:"privilege_name"`
	Description   string        `json:"description,omitempty"`
}

// RolePrivilegeList stores the bundle as a JSONB column.
type RolePrivilegeList []RolePrivilege

// Value implements driver.Valuer.
func (l RolePrivilegeList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *RolePrivilegeList) Scan(src interface{}) error {
	if src == nil {
		*l = RolePrivilegeList{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported privilege list type %T", src)
	}
	return json.Unmarshal(raw, l)
}

// Role is a named, reusable bundle of privileges. System roles are
// protected from administrative edit and delete.
type Role struct {
	ID          string            `db:"id" json:"id"`
	Name        string            `db:"name" json:"name"`
	Description string            `db:"description" json:"description"`
	Privileges  RolePrivilegeList `db:"privileges" json:"privileges"`
	IsSystem    bool              `db:"is_system" json:"is_system"`
	Active      bool              `db:"active" json:"active"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// HasPrivilege reports whether the role bundles the named privilege.
func (r *Role) HasPrivilege(name PrivilegeName) bool {
	for _, p := range r.Privileges {
		if p.PrivilegeName == name {
			return true
		}
	}
	return false
}

// PrivilegeNames returns the bundled privilege names in order.
func (r *Role) PrivilegeNames() []PrivilegeName {
	names := make([]PrivilegeName, 0, len(r.Privileges))
	for _, p := range r.Privileges {
		names = append(names, p.PrivilegeName)
	}
	return names
}

// RoleFilter captures filtering criteria for listing roles.
type RoleFilter struct {
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
