// Package analytics computes the dashboard's read-side views. Every view
// is a deterministic pure function of the currently persisted responses;
// nothing here caches or mutates.
package analytics

import (
	"context"
	"errors"

	"numu-analytics-backend/internal/extract"
	"numu-analytics-backend/internal/models"
)

// ErrProfileNotFound is returned when no responses exist for an email.
var ErrProfileNotFound = errors.New("no profile found for the given email")

// ResponseSource supplies persisted responses. ListByEmail must order
// newest first.
type ResponseSource interface {
	List(ctx context.Context, surveyID *string) ([]models.SurveyResponse, error)
	ListByEmail(ctx context.Context, email string) ([]models.SurveyResponse, error)
}

type Service struct {
	responses ResponseSource
}

func NewService(responses ResponseSource) *Service {
	return &Service{responses: responses}
}

func (s *Service) Dissemination(ctx context.Context, surveyID *string) (*models.DisseminationMetrics, error) {
	rows, err := s.responses.List(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	m := computeDissemination(rows)
	return &m, nil
}

func (s *Service) Geographic(ctx context.Context, surveyID *string) (*models.GeographicMetrics, error) {
	rows, err := s.responses.List(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	m := computeGeographic(rows)
	return &m, nil
}

func (s *Service) Interests(ctx context.Context, surveyID *string) (*models.InterestMetrics, error) {
	rows, err := s.responses.List(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	m := computeInterests(rows)
	return &m, nil
}

// LearnerProfile unifies all submissions for one respondent email.
func (s *Service) LearnerProfile(ctx context.Context, email string) (*models.LearnerProfile, error) {
	rows, err := s.responses.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrProfileNotFound
	}
	p := buildProfile(email, rows)
	return &p, nil
}

// Records projects every stored response through the extractor. The
// projection is recomputed per call; the raw payload stays the source of
// truth.
func (s *Service) Records(ctx context.Context) ([]models.AnalyticsRecord, error) {
	rows, err := s.responses.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	records := make([]models.AnalyticsRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, extract.Record(row))
	}
	return records, nil
}
