package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
)

// TemplateRepositoryPG implements domain.TemplateRepository. Only custom
// templates live in the database; system templates are materialized from the
// generator registry at the service layer.
type TemplateRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a new template repository backed by PostgreSQL.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepositoryPG {
	return &TemplateRepositoryPG{pool: pool}
}

// Create inserts a new template row. Names are unique.
func (r *TemplateRepositoryPG) Create(ctx context.Context, tpl *domain.Template) error {
	fields, err := json.Marshal(tpl.Fields)
	if err != nil {
		return fmt.Errorf("encode template fields: %w", err)
	}
	query := `
INSERT INTO templates (id, name, description, fields, is_active, is_system, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err = r.pool.Exec(ctx, query,
		tpl.ID,
		tpl.Name,
		tpl.Description,
		fields,
		tpl.IsActive,
		tpl.IsSystem,
		nullableStr(tpl.UserID),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation on the name column.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateName
		}
		return err
	}
	return nil
}

// GetByID fetches a template by its identifier.
func (r *TemplateRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, name, description, fields, is_active, is_system, user_id, created_at, updated_at
FROM templates
WHERE id = $1;`, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return tpl, nil
}

// List returns stored templates, optionally restricted to active ones.
func (r *TemplateRepositoryPG) List(ctx context.Context, activeOnly bool) ([]domain.Template, error) {
	query := `
SELECT id, name, description, fields, is_active, is_system, user_id, created_at, updated_at
FROM templates`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tpls []domain.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		tpls = append(tpls, *tpl)
	}
	return tpls, rows.Err()
}

// Delete removes a stored template.
func (r *TemplateRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTemplate(row rowScanner) (*domain.Template, error) {
	var tpl domain.Template
	var fields []byte
	var userID *string

	if err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.Description,
		&fields,
		&tpl.IsActive,
		&tpl.IsSystem,
		&userID,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tpl.UserID = deref(userID)
	if err := json.Unmarshal(fields, &tpl.Fields); err != nil {
		return nil, fmt.Errorf("decode template fields: %w", err)
	}
	return &tpl, nil
}

var _ domain.TemplateRepository = (*TemplateRepositoryPG)(nil)
