package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"numu-analytics-backend/internal/models"
)

type SurveyRepo struct {
	pool *pgxpool.Pool
}

func NewSurveyRepo(pool *pgxpool.Pool) *SurveyRepo {
	return &SurveyRepo{pool: pool}
}

// Upsert inserts or overwrites a survey keyed by its external ID. Every
// mutable column takes the new payload's value; absent optional fields
// reset to their defaults instead of keeping the prior row's values.
func (r *SurveyRepo) Upsert(ctx context.Context, s *models.Survey) error {
	query := `
		INSERT INTO surveys (id, slug, title, description, is_active, allow_multiple_submissions,
			requires_auth, published_at, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			slug = EXCLUDED.slug,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			allow_multiple_submissions = EXCLUDED.allow_multiple_submissions,
			requires_auth = EXCLUDED.requires_auth,
			published_at = EXCLUDED.published_at,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.Slug, s.Title, s.Description, s.IsActive, s.AllowMultipleSubmissions,
		s.RequiresAuth, s.PublishedAt, s.ExpiresAt,
	)
	return err
}

func (r *SurveyRepo) List(ctx context.Context) ([]models.Survey, error) {
	query := `SELECT id, slug, title, description, is_active, allow_multiple_submissions,
		requires_auth, published_at, expires_at, created_at, updated_at
		FROM surveys ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var surveys []models.Survey
	for rows.Next() {
		var s models.Survey
		if err := rows.Scan(
			&s.ID, &s.Slug, &s.Title, &s.Description, &s.IsActive, &s.AllowMultipleSubmissions,
			&s.RequiresAuth, &s.PublishedAt, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		surveys = append(surveys, s)
	}
	return surveys, rows.Err()
}

func (r *SurveyRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM surveys").Scan(&count)
	return count, err
}

// Wipe removes every survey and, through the FK cascade, every response.
// Only the explicit full-resync path calls this.
func (r *SurveyRepo) Wipe(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE surveys CASCADE")
	return err
}
