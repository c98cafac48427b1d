// Package extract maps the free-form answer payload of a survey response
// onto a fixed set of analytics fields. Extraction is pure: same payload in,
// same fields out, no I/O.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"numu-analytics-backend/internal/models"
)

// Fields is the normalized projection of one raw answer payload. Empty
// string means the field could not be derived.
type Fields struct {
	Track            string
	Motivation       string
	Challenge        string
	AccessChannel    string
	University       string
	AgeRange         string
	EmploymentStatus string
}

// A self-assessed skill level of basic/beginner/none marks that skill area
// as a learning challenge.
var skillChallenges = []struct {
	key   string
	label string
}{
	{"digital_literacy_level", "Digital Literacy"},
	{"cybersecurity_level", "Cybersecurity"},
	{"ai_programming_level", "AI & Programming"},
	{"data_skills_level", "Data Skills"},
}

// Extract derives the normalized fields in strict precedence order: known
// schema keys first, then skill-derived challenges, then a heuristic scan
// over all keys for anything still unset.
func Extract(answers models.AnswerMap) Fields {
	f := Fields{
		AccessChannel:    stringAt(answers, "access_channel"),
		University:       stringAt(answers, "university_name"),
		AgeRange:         stringAt(answers, "age_range"),
		EmploymentStatus: stringAt(answers, "employment_status"),
		Track:            stringAt(answers, "training_track"),
		Motivation:       stringAt(answers, "learning_reason"),
	}

	var challenges []string
	for _, skill := range skillChallenges {
		level := strings.ToLower(strings.TrimSpace(stringAt(answers, skill.key)))
		if level == "basic" || level == "beginner" || level == "none" {
			challenges = append(challenges, skill.label)
		}
	}
	f.Challenge = strings.Join(challenges, ", ")

	// Fallback scan in document order; a field already set is never
	// overwritten, the first matching key wins.
	for _, key := range answers.Keys() {
		lower := strings.ToLower(key)
		value, _ := answers.Get(key)

		if f.Track == "" && strings.Contains(lower, "track") {
			f.Track = ValueString(value)
		}
		if f.Motivation == "" && strings.Contains(lower, "motivation") {
			f.Motivation = ValueString(value)
		}
		if f.Challenge == "" && (strings.Contains(lower, "challenge") || strings.Contains(lower, "difficult")) {
			f.Challenge = ValueString(value)
		}
	}

	return f
}

// MapSector normalizes a raw channel value to a coarse sector label.
// Unrecognized values map to "": a best-effort label, not an error.
func MapSector(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "university", "universities":
		return "Universities"
	case "syndicate", "syndicates":
		return "Syndicates"
	case "public_sector", "public sector", "public":
		return "Public Sector"
	case "ngo", "ngos":
		return "NGOs"
	case "employer", "employers", "company":
		return "Employers"
	default:
		return ""
	}
}

// Record projects a stored response into its analytics record. The sector
// comes from access_channel, falling back to utm_source.
func Record(resp models.SurveyResponse) models.AnalyticsRecord {
	f := Extract(resp.Answers)

	sector := MapSector(f.AccessChannel)
	if sector == "" && resp.UTMSource != nil {
		sector = MapSector(*resp.UTMSource)
	}

	return models.AnalyticsRecord{
		ID:               resp.ID,
		Email:            resp.RespondentEmail,
		Name:             resp.RespondentName,
		Phone:            resp.RespondentPhone,
		Region:           resp.GeoRegion,
		City:             resp.GeoCity,
		Source:           optional(sector),
		UTMSourceRaw:     resp.UTMSource,
		University:       optional(f.University),
		AgeRange:         optional(f.AgeRange),
		EmploymentStatus: optional(f.EmploymentStatus),
		Track:            optional(f.Track),
		Motivation:       optional(f.Motivation),
		Challenge:        optional(f.Challenge),
		Status:           resp.SubmissionStatus,
		CreatedAt:        resp.CreatedAt,
	}
}

// ValueString renders a scalar-or-list answer value as a single string.
// List elements are joined with ", ".
func ValueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, ValueString(item))
		}
		return strings.Join(parts, ", ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func stringAt(answers models.AnswerMap, key string) string {
	value, ok := answers.Get(key)
	if !ok {
		return ""
	}
	return ValueString(value)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
