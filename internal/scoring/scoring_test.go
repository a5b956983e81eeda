package scoring

import (
	"math"
	"testing"

	"github.com/yungbote/hive-backend/internal/catalog"
)

func TestLogScaleZeroMinutes(t *testing.T) {
	got := LogScale(map[string]float64{catalog.CategoryDev: 0})
	if got[catalog.CategoryDev] != 0 {
		t.Fatalf("LogScale of 0 minutes: want 0 (ln 1), got %v", got[catalog.CategoryDev])
	}
}

func TestWeightedScoreEmpty(t *testing.T) {
	if got := WeightedScore(map[string]float64{}, catalog.RoleCS); got != 0 {
		t.Fatalf("WeightedScore of empty map: want 0, got %v", got)
	}
}

func TestWeightedScoreWorkedExample(t *testing.T) {
	// totals {DEV: 95, SOC: 30}, persona CS: 1.2*ln(96) - 0.6*ln(31) ~ 3.417
	totals := map[string]float64{
		catalog.CategoryDev: 95,
		catalog.CategorySoc: 30,
	}
	score := WeightedScore(LogScale(totals), catalog.RoleCS)
	want := 1.2*math.Log(96) - 0.6*math.Log(31)
	if math.Abs(score-want) > 1e-9 {
		t.Fatalf("WeightedScore: want %v, got %v", want, score)
	}
	if math.Abs(score-3.417) > 0.01 {
		t.Fatalf("WeightedScore: expected ~3.417, got %v", score)
	}
}

func TestStreakMetPersonaRelative(t *testing.T) {
	totals := map[string]float64{
		catalog.CategoryCP:  70,
		catalog.CategorySoc: 500,
	}
	// CP is positive for CS: 70 >= 60.
	if !StreakMet(totals, 60, catalog.RoleCS) {
		t.Fatalf("StreakMet for CS: want true")
	}
	// CP is negative for DESIGN, SOC never counts: 0 < 60.
	if StreakMet(totals, 60, catalog.RoleDesign) {
		t.Fatalf("StreakMet for DESIGN: want false")
	}
}

func TestComputePipeline(t *testing.T) {
	got := Compute(map[string]float64{catalog.CategoryDev: 95, catalog.CategorySoc: 30}, 60, catalog.RoleCS)
	if !got.StreakMet {
		t.Fatalf("Compute: 95 DEV minutes should meet a 60 minute streak floor")
	}
	if got.PersonaRole != catalog.RoleCS {
		t.Fatalf("Compute: persona role not carried through: %q", got.PersonaRole)
	}
	if math.Abs(got.WeightedScore-3.417) > 0.01 {
		t.Fatalf("Compute: weighted score ~3.417, got %v", got.WeightedScore)
	}
}
