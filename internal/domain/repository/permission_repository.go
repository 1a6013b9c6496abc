package repository

import (
	"context"
	"database/sql"
	"fmt"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
)

type PermissionRepository interface {
	// Upsert inserts the grant or, if a row for (user, category) already
	// exists, updates its write level. Returns true when a new row was
	// created.
	Upsert(ctx context.Context, grant *model.PermissionGrant) (bool, error)
	Delete(ctx context.Context, userID, categoryID string) error
	AccessLevel(ctx context.Context, userID, categoryID string) (model.AccessLevel, error)
	ListPrivilegedUsers(ctx context.Context, categoryID string) ([]model.PrivilegedUser, error)
	DeleteByCategory(ctx context.Context, tx *sql.Tx, categoryID string) error
}

type pgPermissionRepository struct {
	db *sql.DB
}

func NewPgPermissionRepository(db *sql.DB) PermissionRepository {
	return &pgPermissionRepository{db: db}
}

func (r *pgPermissionRepository) Upsert(ctx context.Context, grant *model.PermissionGrant) (bool, error) {
	// xmax = 0 only for freshly inserted rows, which tells the two
	// ON CONFLICT branches apart in a single statement.
	query := `INSERT INTO category_permissions (user_id, category_id, write_access)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, category_id)
	          DO UPDATE SET write_access = EXCLUDED.write_access, granted_at = CURRENT_TIMESTAMP
	          RETURNING (xmax = 0)`
	var inserted bool
	err := r.db.QueryRowContext(ctx, query, grant.UserID, grant.CategoryID, grant.WriteAccess).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("pgPermissionRepository.Upsert: %w", err)
	}
	return inserted, nil
}

func (r *pgPermissionRepository) Delete(ctx context.Context, userID, categoryID string) error {
	query := `DELETE FROM category_permissions WHERE user_id = $1 AND category_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, categoryID)
	if err != nil {
		return fmt.Errorf("pgPermissionRepository.Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgPermissionRepository.Delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user has no access to this category: %w", common.ErrNotFound)
	}
	return nil
}

func (r *pgPermissionRepository) AccessLevel(ctx context.Context, userID, categoryID string) (model.AccessLevel, error) {
	query := `SELECT write_access FROM category_permissions WHERE user_id = $1 AND category_id = $2`
	var writeAccess bool
	err := r.db.QueryRowContext(ctx, query, userID, categoryID).Scan(&writeAccess)
	if err != nil {
		if err == sql.ErrNoRows {
			// No grant row: denied by default.
			return model.LevelNone, nil
		}
		return model.LevelNone, fmt.Errorf("pgPermissionRepository.AccessLevel: %w", err)
	}
	if writeAccess {
		return model.LevelWrite, nil
	}
	return model.LevelRead, nil
}

func (r *pgPermissionRepository) ListPrivilegedUsers(ctx context.Context, categoryID string) ([]model.PrivilegedUser, error) {
	query := `SELECT u.id, u.username, u.email, u.first_name, u.last_name, p.write_access
	          FROM users u
	          JOIN category_permissions p ON u.id = p.user_id
	          WHERE p.category_id = $1
	          ORDER BY u.username`
	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("pgPermissionRepository.ListPrivilegedUsers: %w", err)
	}
	defer rows.Close()

	var users []model.PrivilegedUser
	for rows.Next() {
		var user model.PrivilegedUser
		if err := rows.Scan(
			&user.UserID, &user.Username, &user.Email,
			&user.FirstName, &user.LastName, &user.WriteAccess,
		); err != nil {
			return nil, fmt.Errorf("pgPermissionRepository.ListPrivilegedUsers: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *pgPermissionRepository) DeleteByCategory(ctx context.Context, tx *sql.Tx, categoryID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM category_permissions WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("pgPermissionRepository.DeleteByCategory: %w", err)
	}
	return nil
}
