// Package syncer drives the batch job that pulls surveys and responses
// from the NUMU API into local storage. Runs are strictly sequential:
// each page fetch blocks before the next is requested, and each upsert
// blocks before the loop continues.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"numu-analytics-backend/internal/models"
	"numu-analytics-backend/internal/numu"
)

// ErrSyncInProgress is returned when a run is requested while another is
// still executing. Full resyncs wipe before they replay, so overlapping
// runs must never interleave.
var ErrSyncInProgress = errors.New("a sync run is already in progress")

type SurveyFetcher interface {
	FetchSurveys(ctx context.Context) ([]numu.SurveyPayload, error)
}

type ResponsePageFetcher interface {
	FetchResponsesPage(ctx context.Context, surveyID string, page, limit int) (numu.ResponsePage, error)
}

type SurveyStore interface {
	Upsert(ctx context.Context, s *models.Survey) error
	Wipe(ctx context.Context) error
}

type ResponseStore interface {
	Upsert(ctx context.Context, r *models.SurveyResponse) error
	Wipe(ctx context.Context) error
}

// StatusRecorder persists the outcome of a run for the status endpoint.
type StatusRecorder interface {
	RecordSync(ctx context.Context, res Result)
}

// Result reports what one run processed. Partial means pagination stopped
// early on a failed page; everything upserted before the failure stays.
type Result struct {
	Surveys    int       `json:"surveys"`
	Responses  int       `json:"responses"`
	Pages      int       `json:"pages"`
	Full       bool      `json:"full"`
	Partial    bool      `json:"partial"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type Service struct {
	surveys     SurveyFetcher
	fullSurveys SurveyFetcher
	pages       ResponsePageFetcher
	surveyDB    SurveyStore
	responses   ResponseStore
	status      StatusRecorder
	pageLimit   int
	maxPages    int
	mu          sync.Mutex
}

type Option func(*Service)

func WithPageLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageLimit = n
		}
	}
}

func WithMaxPages(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

func WithStatusRecorder(recorder StatusRecorder) Option {
	return func(s *Service) { s.status = recorder }
}

// WithFullSurveyFetcher sets the fetcher full resyncs use. A rebuild must
// see the live survey list, so pass the uncached client here when the
// incremental fetcher reads through a cache.
func WithFullSurveyFetcher(f SurveyFetcher) Option {
	return func(s *Service) { s.fullSurveys = f }
}

func NewService(surveys SurveyFetcher, pages ResponsePageFetcher, surveyDB SurveyStore, responses ResponseStore, opts ...Option) *Service {
	s := &Service{
		surveys:   surveys,
		pages:     pages,
		surveyDB:  surveyDB,
		responses: responses,
		pageLimit: 100,
		maxPages:  1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs an incremental sync, optionally scoped to one survey.
func (s *Service) Run(ctx context.Context, surveyID string) (Result, error) {
	if !s.mu.TryLock() {
		return Result{}, ErrSyncInProgress
	}
	defer s.mu.Unlock()
	return s.run(ctx, surveyID, false)
}

// FullResync wipes both collections and replays the complete fetch. It
// only runs on explicit request, never as a side effect of Run.
func (s *Service) FullResync(ctx context.Context) (Result, error) {
	if !s.mu.TryLock() {
		return Result{}, ErrSyncInProgress
	}
	defer s.mu.Unlock()
	return s.run(ctx, "", true)
}

func (s *Service) run(ctx context.Context, surveyID string, full bool) (Result, error) {
	res := Result{Full: full, StartedAt: time.Now().UTC()}

	if full {
		// Responses first: they reference surveys.
		if err := s.responses.Wipe(ctx); err != nil {
			return res, fmt.Errorf("wipe responses: %w", err)
		}
		if err := s.surveyDB.Wipe(ctx); err != nil {
			return res, fmt.Errorf("wipe surveys: %w", err)
		}
	}

	fetcher := s.surveys
	if full && s.fullSurveys != nil {
		fetcher = s.fullSurveys
	}

	log.Println("Fetching survey templates...")
	surveys, err := fetcher.FetchSurveys(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch surveys: %w", err)
	}
	for i := range surveys {
		if err := s.surveyDB.Upsert(ctx, surveyFromPayload(&surveys[i])); err != nil {
			return res, fmt.Errorf("upsert survey %s: %w", surveys[i].ID, err)
		}
		res.Surveys++
	}
	log.Printf("Synced %d survey templates", res.Surveys)

	log.Println("Fetching survey responses...")
	for page := 1; page <= s.maxPages; page++ {
		p, err := s.pages.FetchResponsesPage(ctx, surveyID, page, s.pageLimit)
		if err != nil {
			// Partial sync: keep everything already applied and report it.
			res.Partial = true
			return s.finish(ctx, res), fmt.Errorf("fetch responses page %d: %w", page, err)
		}
		if len(p.Records) == 0 {
			break
		}
		res.Pages++

		for i := range p.Records {
			if err := s.responses.Upsert(ctx, responseFromRecord(&p.Records[i])); err != nil {
				res.Partial = true
				return s.finish(ctx, res), fmt.Errorf("upsert response %s: %w", p.Records[i].ID, err)
			}
			res.Responses++
		}

		if !p.HasNextPage {
			break
		}
	}

	res = s.finish(ctx, res)
	log.Printf("Synced %d survey responses across %d page(s)", res.Responses, res.Pages)
	return res, nil
}

func (s *Service) finish(ctx context.Context, res Result) Result {
	res.FinishedAt = time.Now().UTC()
	if s.status != nil {
		s.status.RecordSync(ctx, res)
	}
	return res
}

func surveyFromPayload(p *numu.SurveyPayload) *models.Survey {
	s := &models.Survey{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       "Untitled Survey",
		Description: p.Description,
		IsActive:    true,
		PublishedAt: parseTime(p.PublishedAt),
		ExpiresAt:   parseTime(p.ExpiresAt),
	}
	if p.Title != nil && *p.Title != "" {
		s.Title = *p.Title
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	if p.AllowMultipleSubmissions != nil {
		s.AllowMultipleSubmissions = *p.AllowMultipleSubmissions
	}
	if p.RequiresAuth != nil {
		s.RequiresAuth = *p.RequiresAuth
	}
	return s
}

func responseFromRecord(rec *numu.ResponseRecord) *models.SurveyResponse {
	now := time.Now().UTC()
	resp := &models.SurveyResponse{
		ID:               rec.ID,
		SurveyID:         rec.SurveyID,
		RespondentEmail:  rec.RespondentEmail,
		RespondentPhone:  rec.RespondentPhone,
		RespondentName:   rec.RespondentName,
		Answers:          rec.Responses,
		SubmissionStatus: "completed",
		UTMSource:        rec.UTMSource,
		UTMMedium:        rec.UTMMedium,
		UTMCampaign:      rec.UTMCampaign,
		GeoCountry:       rec.GeoCountry,
		GeoRegion:        rec.GeoRegion,
		GeoCity:          rec.GeoCity,
		IPAddress:        rec.IPAddress,
		UserAgent:        rec.UserAgent,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if rec.SubmissionStatus != nil && *rec.SubmissionStatus != "" {
		resp.SubmissionStatus = *rec.SubmissionStatus
	}
	if t := parseTime(rec.CreatedAt); t != nil {
		resp.CreatedAt = *t
	}
	if t := parseTime(rec.UpdatedAt); t != nil {
		resp.UpdatedAt = *t
	}
	return resp
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
