package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
)

const templateColumns = `id, user_id, name, duration, notes, exercises, created_at, updated_at`

// ListTemplates implements domain.TemplateRepository.
func (r *Repository) ListTemplates(ctx context.Context, ownerID string) ([]domain.Template, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT `+templateColumns+` FROM templates WHERE user_id=$1 ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]domain.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// GetTemplate implements domain.TemplateRepository.
func (r *Repository) GetTemplate(ctx context.Context, ownerID, id string) (*domain.Template, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	row := pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id=$1 AND user_id=$2`, id, ownerID)
	t, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// CreateTemplate implements domain.TemplateRepository.
func (r *Repository) CreateTemplate(ctx context.Context, template domain.Template) error {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return err
	}
	exercises, err := json.Marshal(template.Exercises)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO templates (` + templateColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = pool.Exec(ctx, stmt,
		template.ID,
		template.UserID,
		template.Name,
		template.Duration,
		template.Notes,
		exercises,
		template.CreatedAt,
		template.UpdatedAt,
	)
	return err
}

// ReplaceTemplate implements domain.TemplateRepository.
func (r *Repository) ReplaceTemplate(ctx context.Context, template domain.Template) (*domain.Template, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := json.Marshal(template.Exercises)
	if err != nil {
		return nil, err
	}

	const stmt = `UPDATE templates
        SET name=$3, duration=$4, notes=$5, exercises=$6, updated_at=$7
        WHERE id=$1 AND user_id=$2
        RETURNING ` + templateColumns

	row := pool.QueryRow(ctx, stmt,
		template.ID,
		template.UserID,
		template.Name,
		template.Duration,
		template.Notes,
		exercises,
		template.UpdatedAt,
	)
	stored, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return stored, err
}

// DeleteTemplate implements domain.TemplateRepository.
func (r *Repository) DeleteTemplate(ctx context.Context, ownerID, id string) (bool, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return false, err
	}
	tag, err := pool.Exec(ctx, `DELETE FROM templates WHERE id=$1 AND user_id=$2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var (
		t         domain.Template
		exercises []byte
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Duration, &t.Notes, &exercises, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeExercises(exercises, &t.Exercises); err != nil {
		return nil, err
	}
	return &t, nil
}
