package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"numu-analytics-backend/internal/models"
)

type ResponseRepo struct {
	pool *pgxpool.Pool
}

func NewResponseRepo(pool *pgxpool.Pool) *ResponseRepo {
	return &ResponseRepo{pool: pool}
}

const responseColumns = `id, survey_id, respondent_email, respondent_phone, respondent_name,
	responses, submission_status, utm_source, utm_medium, utm_campaign,
	geo_country, geo_region, geo_city, ip_address, user_agent, created_at, updated_at`

// Upsert inserts or overwrites a response keyed by its external ID. The
// answer payload is stored as one uniform JSON document regardless of
// which sync path produced it. Reprocessing the same ID overwrites the
// row byte for byte; it never duplicates.
func (r *ResponseRepo) Upsert(ctx context.Context, resp *models.SurveyResponse) error {
	answers, err := json.Marshal(resp.Answers)
	if err != nil {
		return fmt.Errorf("marshal answer payload for %s: %w", resp.ID, err)
	}

	query := `
		INSERT INTO survey_responses (id, survey_id, respondent_email, respondent_phone, respondent_name,
			responses, submission_status, utm_source, utm_medium, utm_campaign,
			geo_country, geo_region, geo_city, ip_address, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			survey_id = EXCLUDED.survey_id,
			respondent_email = EXCLUDED.respondent_email,
			respondent_phone = EXCLUDED.respondent_phone,
			respondent_name = EXCLUDED.respondent_name,
			responses = EXCLUDED.responses,
			submission_status = EXCLUDED.submission_status,
			utm_source = EXCLUDED.utm_source,
			utm_medium = EXCLUDED.utm_medium,
			utm_campaign = EXCLUDED.utm_campaign,
			geo_country = EXCLUDED.geo_country,
			geo_region = EXCLUDED.geo_region,
			geo_city = EXCLUDED.geo_city,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`

	_, err = r.pool.Exec(ctx, query,
		resp.ID, resp.SurveyID, resp.RespondentEmail, resp.RespondentPhone, resp.RespondentName,
		answers, resp.SubmissionStatus, resp.UTMSource, resp.UTMMedium, resp.UTMCampaign,
		resp.GeoCountry, resp.GeoRegion, resp.GeoCity, resp.IPAddress, resp.UserAgent,
		resp.CreatedAt, resp.UpdatedAt,
	)
	return err
}

// List returns every stored response, optionally scoped to one survey.
func (r *ResponseRepo) List(ctx context.Context, surveyID *string) ([]models.SurveyResponse, error) {
	query := "SELECT " + responseColumns + " FROM survey_responses"
	var args []any
	if surveyID != nil && *surveyID != "" {
		query += " WHERE survey_id = $1"
		args = append(args, *surveyID)
	}
	query += " ORDER BY created_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResponses(rows)
}

// ListByEmail returns every response for a respondent email, newest first.
func (r *ResponseRepo) ListByEmail(ctx context.Context, email string) ([]models.SurveyResponse, error) {
	query := "SELECT " + responseColumns + ` FROM survey_responses
		WHERE respondent_email = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResponses(rows)
}

func (r *ResponseRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM survey_responses").Scan(&count)
	return count, err
}

// Wipe removes every response. Only the explicit full-resync path calls
// this, before the survey wipe.
func (r *ResponseRepo) Wipe(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE survey_responses")
	return err
}

func scanResponses(rows pgx.Rows) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	for rows.Next() {
		var resp models.SurveyResponse
		var rawAnswers []byte
		if err := rows.Scan(
			&resp.ID, &resp.SurveyID, &resp.RespondentEmail, &resp.RespondentPhone, &resp.RespondentName,
			&rawAnswers, &resp.SubmissionStatus, &resp.UTMSource, &resp.UTMMedium, &resp.UTMCampaign,
			&resp.GeoCountry, &resp.GeoRegion, &resp.GeoCity, &resp.IPAddress, &resp.UserAgent,
			&resp.CreatedAt, &resp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(rawAnswers) > 0 {
			if err := json.Unmarshal(rawAnswers, &resp.Answers); err != nil {
				return nil, fmt.Errorf("answer payload for %s: %w", resp.ID, err)
			}
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}
