package models

import "time"

type Survey struct {
	ID                       string     `json:"id"`
	Slug                     *string    `json:"slug"`
	Title                    string     `json:"title"`
	Description              *string    `json:"description"`
	IsActive                 bool       `json:"is_active"`
	AllowMultipleSubmissions bool       `json:"allow_multiple_submissions"`
	RequiresAuth             bool       `json:"requires_auth"`
	PublishedAt              *time.Time `json:"published_at"`
	ExpiresAt                *time.Time `json:"expires_at"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// SurveyResponse is one respondent submission pulled from the NUMU API.
// Timestamps come from the external system when the payload carries them.
type SurveyResponse struct {
	ID               string    `json:"id"`
	SurveyID         string    `json:"survey_id"`
	RespondentEmail  *string   `json:"respondent_email"`
	RespondentPhone  *string   `json:"respondent_phone"`
	RespondentName   *string   `json:"respondent_name"`
	Answers          AnswerMap `json:"responses"`
	SubmissionStatus string    `json:"submission_status"`
	UTMSource        *string   `json:"utm_source"`
	UTMMedium        *string   `json:"utm_medium"`
	UTMCampaign      *string   `json:"utm_campaign"`
	GeoCountry       *string   `json:"geo_country"`
	GeoRegion        *string   `json:"geo_region"`
	GeoCity          *string   `json:"geo_city"`
	IPAddress        *string   `json:"ip_address"`
	UserAgent        *string   `json:"user_agent"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
