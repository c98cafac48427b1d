package models

import "time"

// AnalyticsRecord is the normalized, read-time projection of a stored
// response. It is recomputed on every read; the raw answer payload stays
// the single source of truth.
type AnalyticsRecord struct {
	ID               string    `json:"id"`
	Email            *string   `json:"email"`
	Name             *string   `json:"name"`
	Phone            *string   `json:"phone"`
	Region           *string   `json:"region"`
	City             *string   `json:"city"`
	Source           *string   `json:"source"`
	UTMSourceRaw     *string   `json:"utm_source_raw"`
	University       *string   `json:"university"`
	AgeRange         *string   `json:"age_range"`
	EmploymentStatus *string   `json:"employment_status"`
	Track            *string   `json:"track"`
	Motivation       *string   `json:"motivation"`
	Challenge        *string   `json:"challenge"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// ChannelCount is one entry of the ranked "source / medium" breakdown.
type ChannelCount struct {
	Channel string `json:"channel"`
	Count   int    `json:"count"`
}

// ValueCount is a frequency-count entry, ordered descending by count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type DisseminationMetrics struct {
	TotalResponses int            `json:"total_responses"`
	BySource       map[string]int `json:"by_source"`
	ByMedium       map[string]int `json:"by_medium"`
	ByCampaign     map[string]int `json:"by_campaign"`
	TopChannels    []ChannelCount `json:"top_channels"`
}

type GeographicMetrics struct {
	TotalResponses int            `json:"total_responses"`
	ByCountry      map[string]int `json:"by_country"`
	ByRegion       map[string]int `json:"by_region"`
	ByCity         map[string]int `json:"by_city"`
}

type InterestMetrics struct {
	ByTrack      []ValueCount `json:"by_track"`
	ByMotivation []ValueCount `json:"by_motivation"`
}

type LatestLocation struct {
	Country *string `json:"country"`
	Region  *string `json:"region"`
	City    *string `json:"city"`
}

type TimelineEntry struct {
	SurveyID    string    `json:"survey_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Status      string    `json:"status"`
	Source      string    `json:"source"`
}

// LearnerProfile unifies every submission a respondent email has made
// across surveys, newest first.
type LearnerProfile struct {
	Email            string          `json:"email"`
	Name             *string         `json:"name"`
	Phone            *string         `json:"phone"`
	TotalSubmissions int             `json:"total_submissions"`
	SurveysTaken     []string        `json:"surveys_taken"`
	LatestLocation   LatestLocation  `json:"latest_location"`
	Timeline         []TimelineEntry `json:"timeline"`
}
