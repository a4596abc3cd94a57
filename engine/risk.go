package engine

import (
	"strings"
	"time"

	"portfolio-machine/models"
)

// geoKeywords maps lower-cased risk keywords to their score weights.
// A keyword counts at most once per headline but accumulates across
// headlines.
var geoKeywords = map[string]int{
	"war":      30,
	"tariff":   25,
	"sanction": 25,
	"election": 15,
	"trade":    10,
}

// geoRiskThresholds: score < 30 STABLE, < 60 ELEVATED, otherwise CRITICAL.
const (
	geoElevatedThreshold = 30
	geoCriticalThreshold = 60
)

// CalendarWindowDays bounds the earnings calendar: an instrument appears
// iff its next earnings date falls within [0, 30] days of now.
const CalendarWindowDays = 30

// GeoRiskScore sums keyword weights over the given headlines,
// case-insensitively by substring match. Deterministic for a given
// headline list.
func GeoRiskScore(headlines []string) int {
	score := 0
	for _, headline := range headlines {
		lower := strings.ToLower(headline)
		for keyword, weight := range geoKeywords {
			if strings.Contains(lower, keyword) {
				score += weight
			}
		}
	}
	return score
}

// GeoStatusFor categorizes a risk score.
func GeoStatusFor(score int) models.GeoStatus {
	switch {
	case score < geoElevatedThreshold:
		return models.GeoStatusStable
	case score < geoCriticalThreshold:
		return models.GeoStatusElevated
	default:
		return models.GeoStatusCritical
	}
}

// AssessRisk builds the full risk assessment from headlines.
func AssessRisk(headlines []string) models.RiskAssessment {
	score := GeoRiskScore(headlines)
	return models.RiskAssessment{Score: score, Status: GeoStatusFor(score)}
}

// DaysUntil returns the whole-day difference between the target date and
// now, ignoring time-of-day. Today is 0.
func DaysUntil(target, now time.Time) int {
	t := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(n).Hours() / 24)
}

// EarningsWindow resolves the earnings date string and whether the
// instrument belongs in the 30-day calendar. A missing target date yields
// "TBD" and exclusion.
func EarningsWindow(target *time.Time, now time.Time) (dateStr string, daysLeft int, inCalendar bool) {
	if target == nil {
		return "TBD", 0, false
	}
	daysLeft = DaysUntil(*target, now)
	dateStr = target.Format("2006-01-02")
	return dateStr, daysLeft, daysLeft >= 0 && daysLeft <= CalendarWindowDays
}
