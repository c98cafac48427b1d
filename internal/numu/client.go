// Package numu is the client for the external NUMU survey API. Responses
// are paginated; continuation is driven entirely by the server's
// hasNextPage flag, never by an assumed total.
package numu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"numu-analytics-backend/internal/models"
)

const defaultMaxPages = 1000

// SurveyPayload is a survey template as the NUMU API ships it. Everything
// but the ID is optional; missing fields fall back to defaults on upsert.
type SurveyPayload struct {
	ID                       string  `json:"id"`
	Slug                     *string `json:"slug"`
	Title                    *string `json:"title"`
	Description              *string `json:"description"`
	IsActive                 *bool   `json:"is_active"`
	AllowMultipleSubmissions *bool   `json:"allow_multiple_submissions"`
	RequiresAuth             *bool   `json:"requires_auth"`
	PublishedAt              *string `json:"published_at"`
	ExpiresAt                *string `json:"expires_at"`
}

// ResponseRecord is one raw survey response from the NUMU API.
type ResponseRecord struct {
	ID               string           `json:"id"`
	SurveyID         string           `json:"survey_id"`
	RespondentEmail  *string          `json:"respondent_email"`
	RespondentPhone  *string          `json:"respondent_phone"`
	RespondentName   *string          `json:"respondent_name"`
	Responses        models.AnswerMap `json:"responses"`
	SubmissionStatus *string          `json:"submission_status"`
	UTMSource        *string          `json:"utm_source"`
	UTMMedium        *string          `json:"utm_medium"`
	UTMCampaign      *string          `json:"utm_campaign"`
	GeoCountry       *string          `json:"geo_country"`
	GeoRegion        *string          `json:"geo_region"`
	GeoCity          *string          `json:"geo_city"`
	IPAddress        *string          `json:"ip_address"`
	UserAgent        *string          `json:"user_agent"`
	CreatedAt        *string          `json:"created_at"`
	UpdatedAt        *string          `json:"updated_at"`
}

type ResponsePage struct {
	Records     []ResponseRecord
	HasNextPage bool
}

// RetryPolicy decides whether a failed request attempt should be retried.
// The default client never retries; this is a seam for callers that need
// backoff against a flaky upstream.
type RetryPolicy func(attempt int, err error) bool

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxPages   int
	retry      RetryPolicy
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) { c.retry = policy }
}

// NewClient builds a client for the given base URL and API key. Both are
// passed explicitly; the client never reads ambient configuration.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxPages:   defaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSurveys lists all survey templates. An unsuccessful HTTP status is
// not an error: the upstream is treated as having no surveys.
func (c *Client) FetchSurveys(ctx context.Context) ([]SurveyPayload, error) {
	resp, err := c.doGet(ctx, "/surveys", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil
	}

	var env struct {
		Data struct {
			Surveys []SurveyPayload `json:"surveys"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode surveys payload: %w", err)
	}
	return env.Data.Surveys, nil
}

// FetchResponsesPage fetches one page of responses, optionally scoped to a
// survey. An unsuccessful HTTP status yields an empty page with no next
// page, which ends pagination gracefully. Transport failures (including
// timeouts) are returned as errors.
func (c *Client) FetchResponsesPage(ctx context.Context, surveyID string, page, limit int) (ResponsePage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	if surveyID != "" {
		query.Set("survey_id", surveyID)
	}

	resp, err := c.doGet(ctx, "/responses", query)
	if err != nil {
		return ResponsePage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ResponsePage{}, nil
	}

	var env struct {
		Data struct {
			Responses  []ResponseRecord `json:"responses"`
			Pagination struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pagination"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return ResponsePage{}, fmt.Errorf("decode responses page %d: %w", page, err)
	}

	return ResponsePage{
		Records:     env.Data.Responses,
		HasNextPage: env.Data.Pagination.HasNextPage,
	}, nil
}

// FetchAllResponses walks every page from 1, accumulating records in page
// order. It stops on an empty page, a hasNextPage=false signal, or the
// page cap, whichever comes first. On a page error the records fetched so
// far are returned alongside the error.
func (c *Client) FetchAllResponses(ctx context.Context, surveyID string, limit int) ([]ResponseRecord, error) {
	var all []ResponseRecord
	for page := 1; page <= c.maxPages; page++ {
		p, err := c.FetchResponsesPage(ctx, surveyID, page, limit)
		if err != nil {
			return all, err
		}
		if len(p.Records) == 0 {
			break
		}
		all = append(all, p.Records...)
		if !p.HasNextPage {
			break
		}
	}
	return all, nil
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		if c.retry == nil || !c.retry(attempt, err) {
			return nil, err
		}
	}
}
