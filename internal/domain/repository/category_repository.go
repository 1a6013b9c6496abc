package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// CategoryFilter narrows and orders List results. SortBy is validated
// against a fixed column list so it can never carry untrusted SQL.
type CategoryFilter struct {
	Name       string
	PublicOnly bool
	SortBy     string
	SortDesc   bool
	Limit      int
	Offset     int
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context, filter CategoryFilter) ([]model.Category, error)
	UpdateName(ctx context.Context, id, name, slug string) error
	SetLocked(ctx context.Context, id string, locked bool) error
	SetPrivate(ctx context.Context, id string, private bool) error
	HasTopics(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, tx *sql.Tx, id string) error
}

type pgCategoryRepository struct {
	db *sql.DB
}

func NewPgCategoryRepository(db *sql.DB) CategoryRepository {
	return &pgCategoryRepository{db: db}
}

const categoryColumns = `id, name, slug, is_locked, is_private, created_at`

var categorySortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

func scanCategory(row *sql.Row) (*model.Category, error) {
	category := &model.Category{}
	err := row.Scan(
		&category.ID, &category.Name, &category.Slug,
		&category.IsLocked, &category.IsPrivate, &category.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return category, nil
}

func (r *pgCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	query := `INSERT INTO categories (id, name, slug, is_locked, is_private)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Slug, category.IsLocked, category.IsPrivate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for name/slug
			return fmt.Errorf("category with that name already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCategoryRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgCategoryRepository.FindByID: %w", err)
	}
	return category, nil
}

func (r *pgCategoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1`
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgCategoryRepository.FindByName: %w", err)
	}
	return category, nil
}

func (r *pgCategoryRepository) List(ctx context.Context, filter CategoryFilter) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE 1=1`
	var params []interface{}

	if filter.PublicOnly {
		query += ` AND is_private = FALSE`
	}
	if filter.Name != "" {
		params = append(params, "%"+filter.Name+"%")
		query += fmt.Sprintf(` AND name ILIKE $%d`, len(params))
	}

	orderBy := "name"
	if col, ok := categorySortColumns[filter.SortBy]; ok {
		orderBy = col
	}
	query += ` ORDER BY ` + orderBy
	if filter.SortDesc {
		query += ` DESC`
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	params = append(params, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(params))
	params = append(params, filter.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(params))

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("pgCategoryRepository.List: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var category model.Category
		if err := rows.Scan(
			&category.ID, &category.Name, &category.Slug,
			&category.IsLocked, &category.IsPrivate, &category.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgCategoryRepository.List: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *pgCategoryRepository) UpdateName(ctx context.Context, id, name, slug string) error {
	query := `UPDATE categories SET name = $1, slug = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, name, slug, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("category with that name already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCategoryRepository.UpdateName: %w", err)
	}
	return requireAffected(result, "pgCategoryRepository.UpdateName")
}

func (r *pgCategoryRepository) SetLocked(ctx context.Context, id string, locked bool) error {
	query := `UPDATE categories SET is_locked = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, locked, id)
	if err != nil {
		return fmt.Errorf("pgCategoryRepository.SetLocked: %w", err)
	}
	return requireAffected(result, "pgCategoryRepository.SetLocked")
}

func (r *pgCategoryRepository) SetPrivate(ctx context.Context, id string, private bool) error {
	query := `UPDATE categories SET is_private = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, private, id)
	if err != nil {
		return fmt.Errorf("pgCategoryRepository.SetPrivate: %w", err)
	}
	return requireAffected(result, "pgCategoryRepository.SetPrivate")
}

func (r *pgCategoryRepository) HasTopics(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM topics WHERE category_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgCategoryRepository.HasTopics: %w", err)
	}
	return exists, nil
}

// Delete removes the category row only. Dependent permission, reply, and
// topic rows must already be gone; callers run the full cascade inside tx.
func (r *pgCategoryRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCategoryRepository.Delete: %w", err)
	}
	return requireAffected(result, "pgCategoryRepository.Delete")
}
