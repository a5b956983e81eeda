// Package scoring turns a day's per-category minute totals into the
// persona-weighted daily score and the streak condition.
package scoring

import (
	"math"

	"github.com/yungbote/hive-backend/internal/catalog"
)

// LogScale dampens outliers: X(c) = ln(1 + minutes). A single hour-long
// binge moves the score far less than spreading the time across categories.
func LogScale(totals map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(totals))
	for category, minutes := range totals {
		out[category] = math.Log(1 + minutes)
	}
	return out
}

// WeightedScore computes sum over categories of weight(c, role) * logScaled[c].
func WeightedScore(logScaled map[string]float64, personaRole string) float64 {
	var score float64
	for category, value := range logScaled {
		score += catalog.Weight(category, personaRole) * value
	}
	return score
}

// StreakMet reports whether the raw minutes over the role's positive-weight
// categories reach tMin. Productive time is persona-relative: a category
// counted here for one role may be neutral or negative for another.
func StreakMet(totals map[string]float64, tMin float64, personaRole string) bool {
	var productive float64
	for _, category := range catalog.PositiveCategories(personaRole) {
		productive += totals[category]
	}
	return productive >= tMin
}

// DailyScore is the full scoring pipeline output for one user and date.
type DailyScore struct {
	Totals        map[string]float64 `json:"totals"`
	LogScaled     map[string]float64 `json:"logScaled"`
	WeightedScore float64            `json:"weightedScore"`
	StreakMet     bool               `json:"streakMet"`
	PersonaRole   string             `json:"personaRole"`
}

// Compute runs log scaling, the weighted sum and the streak check in one pass.
func Compute(totals map[string]float64, tMin float64, personaRole string) DailyScore {
	logScaled := LogScale(totals)
	return DailyScore{
		Totals:        totals,
		LogScaled:     logScaled,
		WeightedScore: WeightedScore(logScaled, personaRole),
		StreakMet:     StreakMet(totals, tMin, personaRole),
		PersonaRole:   personaRole,
	}
}
