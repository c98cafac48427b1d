package analytics

import (
	"sort"
	"strings"

	"numu-analytics-backend/internal/extract"
	"numu-analytics-backend/internal/models"
)

const topChannelLimit = 5

func computeDissemination(rows []models.SurveyResponse) models.DisseminationMetrics {
	channels := newCounter()
	for _, row := range rows {
		channels.add(orUnknown(row.UTMSource) + " / " + orUnknown(row.UTMMedium))
	}

	top := channels.sorted()
	if len(top) > topChannelLimit {
		top = top[:topChannelLimit]
	}
	topChannels := make([]models.ChannelCount, 0, len(top))
	for _, entry := range top {
		topChannels = append(topChannels, models.ChannelCount{Channel: entry.Value, Count: entry.Count})
	}

	return models.DisseminationMetrics{
		TotalResponses: len(rows),
		BySource:       countBy(rows, func(r models.SurveyResponse) *string { return r.UTMSource }),
		ByMedium:       countBy(rows, func(r models.SurveyResponse) *string { return r.UTMMedium }),
		ByCampaign:     countBy(rows, func(r models.SurveyResponse) *string { return r.UTMCampaign }),
		TopChannels:    topChannels,
	}
}

func computeGeographic(rows []models.SurveyResponse) models.GeographicMetrics {
	return models.GeographicMetrics{
		TotalResponses: len(rows),
		ByCountry:      countBy(rows, func(r models.SurveyResponse) *string { return r.GeoCountry }),
		ByRegion:       countBy(rows, func(r models.SurveyResponse) *string { return r.GeoRegion }),
		ByCity:         countBy(rows, func(r models.SurveyResponse) *string { return r.GeoCity }),
	}
}

// computeInterests scans every answer key of every response: keys
// containing "track" or "motivation" contribute their value to the
// matching frequency count.
func computeInterests(rows []models.SurveyResponse) models.InterestMetrics {
	tracks := newCounter()
	motivations := newCounter()

	for _, row := range rows {
		for _, key := range row.Answers.Keys() {
			lower := strings.ToLower(key)
			value, _ := row.Answers.Get(key)

			if strings.Contains(lower, "track") {
				tracks.add(extract.ValueString(value))
			}
			if strings.Contains(lower, "motivation") {
				motivations.add(extract.ValueString(value))
			}
		}
	}

	return models.InterestMetrics{
		ByTrack:      tracks.sorted(),
		ByMotivation: motivations.sorted(),
	}
}

// buildProfile assumes rows are ordered newest first (the ResponseSource
// contract for ListByEmail) and must be called with at least one row.
func buildProfile(email string, rows []models.SurveyResponse) models.LearnerProfile {
	latest := rows[0]

	seen := make(map[string]bool)
	var surveys []string
	timeline := make([]models.TimelineEntry, 0, len(rows))

	for _, row := range rows {
		if !seen[row.SurveyID] {
			seen[row.SurveyID] = true
			surveys = append(surveys, row.SurveyID)
		}

		source := "organic"
		if row.UTMSource != nil && *row.UTMSource != "" {
			source = *row.UTMSource
		}
		timeline = append(timeline, models.TimelineEntry{
			SurveyID:    row.SurveyID,
			SubmittedAt: row.CreatedAt,
			Status:      row.SubmissionStatus,
			Source:      source,
		})
	}

	return models.LearnerProfile{
		Email:            email,
		Name:             latest.RespondentName,
		Phone:            latest.RespondentPhone,
		TotalSubmissions: len(rows),
		SurveysTaken:     surveys,
		LatestLocation: models.LatestLocation{
			Country: latest.GeoCountry,
			Region:  latest.GeoRegion,
			City:    latest.GeoCity,
		},
		Timeline: timeline,
	}
}

// countBy groups responses by a nullable column; missing values count
// under the empty key.
func countBy(rows []models.SurveyResponse, key func(models.SurveyResponse) *string) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		k := ""
		if v := key(row); v != nil {
			k = *v
		}
		counts[k]++
	}
	return counts
}

func orUnknown(v *string) string {
	if v == nil || *v == "" {
		return "unknown"
	}
	return *v
}

// counter accumulates frequency counts and remembers first-occurrence
// order so ties in the ranking stay stable.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(value string) {
	if _, seen := c.counts[value]; !seen {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

// sorted returns entries descending by count; equal counts keep the order
// values were first seen in.
func (c *counter) sorted() []models.ValueCount {
	entries := make([]models.ValueCount, 0, len(c.order))
	for _, value := range c.order {
		entries = append(entries, models.ValueCount{Value: value, Count: c.counts[value]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
