package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"numu-analytics-backend/internal/models"
)

type fakeResponseSource struct {
	responses []models.SurveyResponse
}

func (f *fakeResponseSource) List(ctx context.Context, surveyID *string) ([]models.SurveyResponse, error) {
	if surveyID == nil {
		return f.responses, nil
	}
	var filtered []models.SurveyResponse
	for _, r := range f.responses {
		if r.SurveyID == *surveyID {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (f *fakeResponseSource) ListByEmail(ctx context.Context, email string) ([]models.SurveyResponse, error) {
	var matched []models.SurveyResponse
	for _, r := range f.responses {
		if r.RespondentEmail != nil && *r.RespondentEmail == email {
			matched = append(matched, r)
		}
	}
	// Newest first, per the ResponseSource contract.
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			if matched[j].CreatedAt.After(matched[i].CreatedAt) {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	return matched, nil
}

func strPtr(s string) *string { return &s }

func utmResponse(source, medium, campaign string) models.SurveyResponse {
	r := models.SurveyResponse{ID: source + medium + campaign, SurveyID: "s1"}
	if source != "" {
		r.UTMSource = strPtr(source)
	}
	if medium != "" {
		r.UTMMedium = strPtr(medium)
	}
	if campaign != "" {
		r.UTMCampaign = strPtr(campaign)
	}
	return r
}

func TestDissemination_GroupCounts(t *testing.T) {
	source := &fakeResponseSource{responses: []models.SurveyResponse{
		utmResponse("facebook", "cpc", "spring"),
		utmResponse("facebook", "cpc", "spring"),
		utmResponse("google", "organic", "none"),
	}}
	svc := NewService(source)

	m, err := svc.Dissemination(context.Background(), nil)
	if err != nil {
		t.Fatalf("Dissemination failed: %v", err)
	}

	if m.TotalResponses != 3 {
		t.Errorf("Expected total 3, got %d", m.TotalResponses)
	}
	if m.BySource["facebook"] != 2 || m.BySource["google"] != 1 {
		t.Errorf("Unexpected by_source: %v", m.BySource)
	}
	if m.ByMedium["cpc"] != 2 || m.ByMedium["organic"] != 1 {
		t.Errorf("Unexpected by_medium: %v", m.ByMedium)
	}
	if m.ByCampaign["spring"] != 2 {
		t.Errorf("Unexpected by_campaign: %v", m.ByCampaign)
	}
}

func TestDissemination_TopChannels(t *testing.T) {
	source := &fakeResponseSource{responses: []models.SurveyResponse{
		utmResponse("facebook", "cpc", ""),
		utmResponse("facebook", "cpc", ""),
		utmResponse("google", "organic", ""),
	}}
	svc := NewService(source)

	m, err := svc.Dissemination(context.Background(), nil)
	if err != nil {
		t.Fatalf("Dissemination failed: %v", err)
	}

	if len(m.TopChannels) != 2 {
		t.Fatalf("Expected 2 channels, got %d", len(m.TopChannels))
	}
	if m.TopChannels[0].Channel != "facebook / cpc" || m.TopChannels[0].Count != 2 {
		t.Errorf("Unexpected top channel: %+v", m.TopChannels[0])
	}
	if m.TopChannels[1].Channel != "google / organic" || m.TopChannels[1].Count != 1 {
		t.Errorf("Unexpected second channel: %+v", m.TopChannels[1])
	}
}

func TestDissemination_TopChannelsMissingComponentsAndLimit(t *testing.T) {
	var responses []models.SurveyResponse
	// Six distinct channels; one response each except the last.
	for _, source := range []string{"a", "b", "c", "d", "e"} {
		responses = append(responses, utmResponse(source, "m", ""))
	}
	responses = append(responses, utmResponse("", "", ""))
	responses = append(responses, utmResponse("", "", ""))

	svc := NewService(&fakeResponseSource{responses: responses})
	m, err := svc.Dissemination(context.Background(), nil)
	if err != nil {
		t.Fatalf("Dissemination failed: %v", err)
	}

	if len(m.TopChannels) != 5 {
		t.Fatalf("Expected top channels truncated to 5, got %d", len(m.TopChannels))
	}
	if m.TopChannels[0].Channel != "unknown / unknown" || m.TopChannels[0].Count != 2 {
		t.Errorf("Expected 'unknown / unknown' ranked first, got %+v", m.TopChannels[0])
	}
	// Ties keep first-occurrence order.
	if m.TopChannels[1].Channel != "a / m" {
		t.Errorf("Expected stable tie order, got %+v", m.TopChannels[1])
	}
}

func TestGeographic(t *testing.T) {
	mk := func(country, region, city string) models.SurveyResponse {
		return models.SurveyResponse{
			SurveyID:   "s1",
			GeoCountry: strPtr(country),
			GeoRegion:  strPtr(region),
			GeoCity:    strPtr(city),
		}
	}
	svc := NewService(&fakeResponseSource{responses: []models.SurveyResponse{
		mk("Lebanon", "Beirut", "Beirut"),
		mk("Lebanon", "Mount Lebanon", "Jounieh"),
		mk("Lebanon", "Beirut", "Beirut"),
	}})

	m, err := svc.Geographic(context.Background(), nil)
	if err != nil {
		t.Fatalf("Geographic failed: %v", err)
	}
	if m.TotalResponses != 3 {
		t.Errorf("Expected total 3, got %d", m.TotalResponses)
	}
	if m.ByCountry["Lebanon"] != 3 {
		t.Errorf("Unexpected by_country: %v", m.ByCountry)
	}
	if m.ByRegion["Beirut"] != 2 || m.ByRegion["Mount Lebanon"] != 1 {
		t.Errorf("Unexpected by_region: %v", m.ByRegion)
	}
	if m.ByCity["Beirut"] != 2 || m.ByCity["Jounieh"] != 1 {
		t.Errorf("Unexpected by_city: %v", m.ByCity)
	}
}

func answers(t *testing.T, raw string) models.AnswerMap {
	t.Helper()
	var m models.AnswerMap
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("Failed to build answer map: %v", err)
	}
	return m
}

func TestInterests(t *testing.T) {
	svc := NewService(&fakeResponseSource{responses: []models.SurveyResponse{
		{SurveyID: "s1", Answers: answers(t, `{"training_track":"AI Fundamentals","motivation_text":"Career"}`)},
		{SurveyID: "s1", Answers: answers(t, `{"training_track":"AI Fundamentals"}`)},
		{SurveyID: "s1", Answers: answers(t, `{"preferred_track":["Data Ethics","Cloud"],"motivation_text":"Curiosity"}`)},
	}})

	m, err := svc.Interests(context.Background(), nil)
	if err != nil {
		t.Fatalf("Interests failed: %v", err)
	}

	if len(m.ByTrack) != 2 {
		t.Fatalf("Expected 2 track entries, got %d", len(m.ByTrack))
	}
	if m.ByTrack[0].Value != "AI Fundamentals" || m.ByTrack[0].Count != 2 {
		t.Errorf("Unexpected top track: %+v", m.ByTrack[0])
	}
	if m.ByTrack[1].Value != "Data Ethics, Cloud" || m.ByTrack[1].Count != 1 {
		t.Errorf("Unexpected second track: %+v", m.ByTrack[1])
	}
	if len(m.ByMotivation) != 2 {
		t.Fatalf("Expected 2 motivation entries, got %d", len(m.ByMotivation))
	}
}

func TestInterests_FilteredBySurvey(t *testing.T) {
	svc := NewService(&fakeResponseSource{responses: []models.SurveyResponse{
		{SurveyID: "s1", Answers: answers(t, `{"training_track":"A"}`)},
		{SurveyID: "s2", Answers: answers(t, `{"training_track":"B"}`)},
	}})

	surveyID := "s2"
	m, err := svc.Interests(context.Background(), &surveyID)
	if err != nil {
		t.Fatalf("Interests failed: %v", err)
	}
	if len(m.ByTrack) != 1 || m.ByTrack[0].Value != "B" {
		t.Errorf("Expected only survey s2 tracks, got %+v", m.ByTrack)
	}
}

func TestLearnerProfile(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	svc := NewService(&fakeResponseSource{responses: []models.SurveyResponse{
		{
			ID: "r1", SurveyID: "s1",
			RespondentEmail: strPtr("a@x.com"),
			RespondentName:  strPtr("Old Name"),
			GeoCountry:      strPtr("Lebanon"), GeoRegion: strPtr("Bekaa"),
			SubmissionStatus: "completed",
			CreatedAt:        t1,
		},
		{
			ID: "r2", SurveyID: "s2",
			RespondentEmail: strPtr("a@x.com"),
			RespondentName:  strPtr("New Name"),
			RespondentPhone: strPtr("+961 70 123456"),
			GeoCountry:      strPtr("Lebanon"), GeoRegion: strPtr("Beirut"), GeoCity: strPtr("Beirut"),
			SubmissionStatus: "completed",
			UTMSource:        strPtr("facebook"),
			CreatedAt:        t2,
		},
	}})

	p, err := svc.LearnerProfile(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("LearnerProfile failed: %v", err)
	}

	if p.TotalSubmissions != 2 {
		t.Errorf("Expected 2 submissions, got %d", p.TotalSubmissions)
	}
	if p.Name == nil || *p.Name != "New Name" {
		t.Errorf("Expected latest name, got %v", p.Name)
	}
	if p.LatestLocation.Region == nil || *p.LatestLocation.Region != "Beirut" {
		t.Errorf("Expected latest region Beirut, got %v", p.LatestLocation.Region)
	}
	if len(p.SurveysTaken) != 2 {
		t.Errorf("Expected 2 distinct surveys, got %v", p.SurveysTaken)
	}
	if len(p.Timeline) != 2 {
		t.Fatalf("Expected 2 timeline entries, got %d", len(p.Timeline))
	}
	// Newest first: the T2 response leads the timeline.
	if p.Timeline[0].SurveyID != "s2" || !p.Timeline[0].SubmittedAt.Equal(t2) {
		t.Errorf("Expected newest entry first, got %+v", p.Timeline[0])
	}
	if p.Timeline[0].Source != "facebook" {
		t.Errorf("Expected facebook source, got %q", p.Timeline[0].Source)
	}
	if p.Timeline[1].Source != "organic" {
		t.Errorf("Expected organic default for missing attribution, got %q", p.Timeline[1].Source)
	}
}

func TestLearnerProfile_NotFound(t *testing.T) {
	svc := NewService(&fakeResponseSource{})
	_, err := svc.LearnerProfile(context.Background(), "nobody@x.com")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
}

func TestRecords_ProjectsEveryResponse(t *testing.T) {
	svc := NewService(&fakeResponseSource{responses: []models.SurveyResponse{
		{
			ID: "r1", SurveyID: "s1",
			RespondentEmail:  strPtr("a@x.com"),
			SubmissionStatus: "completed",
			Answers:          answers(t, `{"access_channel":"University","training_track":"AI Fundamentals"}`),
		},
	}})

	records, err := svc.Records(context.Background())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Source == nil || *rec.Source != "Universities" {
		t.Errorf("Expected sector Universities, got %v", rec.Source)
	}
	if rec.Track == nil || *rec.Track != "AI Fundamentals" {
		t.Errorf("Expected track, got %v", rec.Track)
	}
}
