package rating

import (
	"math"
	"testing"
)

func TestBayesianUpdateConfidentPriorDominates(t *testing.T) {
	// sigma -> 0: the observation barely moves the mean.
	mu, sigma := BayesianUpdate(12, 1e-9, 100, SigmaObs)
	if math.Abs(mu-12) > 1e-6 {
		t.Fatalf("confident prior: mu should stay ~12, got %v", mu)
	}
	if sigma > 1e-9 {
		t.Fatalf("sigma must not grow, got %v", sigma)
	}
}

func TestBayesianUpdateDiffusePriorFollowsObservation(t *testing.T) {
	// sigma >> sigmaObs: the posterior mean lands near the observation.
	mu, _ := BayesianUpdate(12, 1e6, 3.4, SigmaObs)
	if math.Abs(mu-3.4) > 1e-3 {
		t.Fatalf("diffuse prior: mu should approach the daily score, got %v", mu)
	}
}

func TestBayesianUpdateSigmaShrinks(t *testing.T) {
	mu, sigma := InitialMu, InitialSigma
	for i := 0; i < 10; i++ {
		prev := sigma
		mu, sigma = BayesianUpdate(mu, sigma, 5, SigmaObs)
		if sigma >= prev {
			t.Fatalf("sigma must shrink monotonically: step %d, %v -> %v", i, prev, sigma)
		}
	}
}

func TestBayesianUpdateClosedForm(t *testing.T) {
	mu, sigma := BayesianUpdate(12, 6, 3, 5)
	// (25*12 + 36*3) / 61 and sqrt(25*36/61)
	wantMu := (25.0*12 + 36.0*3) / 61.0
	wantSigma := math.Sqrt(25.0 * 36.0 / 61.0)
	if math.Abs(mu-wantMu) > 1e-12 || math.Abs(sigma-wantSigma) > 1e-12 {
		t.Fatalf("closed form mismatch: got (%v,%v) want (%v,%v)", mu, sigma, wantMu, wantSigma)
	}
}

func TestDisplayRating(t *testing.T) {
	if got := DisplayRating(12, 6); got != 0 {
		t.Fatalf("DisplayRating(12,6): want 0, got %v", got)
	}
}

func TestTierForMonotonic(t *testing.T) {
	order := map[string]int{
		TierBronze: 0, TierSilver: 1, TierGold: 2, TierPlatinum: 3, TierDiamond: 4,
	}
	prev := -1
	for p := 0.01; p <= 1.0; p += 0.01 {
		cur := order[TierFor(p)]
		if cur < prev {
			t.Fatalf("tier must not drop as percentile rises: p=%v", p)
		}
		prev = cur
	}
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		p    float64
		want string
	}{
		{0.95, TierDiamond},
		{0.949, TierPlatinum},
		{0.85, TierPlatinum},
		{0.65, TierGold},
		{0.40, TierSilver},
		{0.399, TierBronze},
		{0.01, TierBronze},
	}
	for _, c := range cases {
		if got := TierFor(c.p); got != c.want {
			t.Fatalf("TierFor(%v): want %s, got %s", c.p, c.want, got)
		}
	}
}
