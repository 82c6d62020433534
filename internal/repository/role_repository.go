package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cuestionario-pro/quiz-api/internal/models"
)

const roleColumns = "id, name, description, privileges, is_system, active, created_at, updated_at"

// RoleRepository handles persistence for roles.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new repository instance.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// List returns roles matching filters with pagination metadata.
func (r *RoleRepository) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error) {
	base := "FROM roles WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	allowedSorts := map[string]bool{
		"name":       true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", roleColumns, base, sortBy, order, size, offset)
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}

	return roles, total, nil
}

// FindByID returns a role by id.
func (r *RoleRepository) FindByID(ctx context.Context, id string) (*models.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE id = $1 LIMIT 1`, roleColumns)
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find role by id: %w", err)
	}
	return &role, nil
}

// FindByName returns a role by its unique name.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE name = $1 LIMIT 1`, roleColumns)
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find role by name: %w", err)
	}
	return &role, nil
}

// ExistsByName checks uniqueness of a role name.
func (r *RoleRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM roles WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check role name: %w", err)
	}
	return true, nil
}

// Create persists a new role.
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now
	if role.Privileges == nil {
		role.Privileges = models.RolePrivilegeList{}
	}

	const query = `INSERT INTO roles (id, name, description, privileges, is_system, active, created_at, updated_at)
		VALUES (:id, :name, :description, :privileges, :is_system, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// Update modifies a role, including its privilege bundle.
func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	role.UpdatedAt = time.Now().UTC()
	const query = `UPDATE roles SET name = :name, description = :description, privileges = :privileges, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

// SoftDelete marks the role inactive. Roles are never hard-deleted.
func (r *RoleRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE roles SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("soft delete role: %w", err)
	}
	return nil
}

// CountUsers returns how many users currently hold the role.
func (r *RoleRepository) CountUsers(ctx context.Context, roleID string) (int, error) {
	const query = `SELECT COUNT(*) FROM user_roles WHERE role_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, roleID); err != nil {
		return 0, fmt.Errorf("count role users: %w", err)
	}
	return count, nil
}

// ListUsers returns the users holding the role.
func (r *RoleRepository) ListUsers(ctx context.Context, roleID string) ([]models.User, error) {
	const query = `SELECT u.id, u.name, u.surname, u.email, u.password_hash, u.direct_privileges, u.status, u.registered_at, u.last_access, u.failed_attempts, u.locked_until, u.created_at, u.updated_at
		FROM users u JOIN user_roles ur ON ur.user_id = u.id
		WHERE ur.role_id = $1 ORDER BY u.name`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, roleID); err != nil {
		return nil, fmt.Errorf("list role users: %w", err)
	}
	return users, nil
}
