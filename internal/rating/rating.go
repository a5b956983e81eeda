// Package rating implements the Bayesian skill posterior, the conservative
// display rating and the percentile tier ladder.
package rating

import "math"

// Defaults for a fresh user and the fixed observation noise.
const (
	InitialMu    = 12.0
	InitialSigma = 6.0
	SigmaObs     = 5.0
)

// Tier names, lowest to highest.
const (
	TierBronze   = "BRONZE"
	TierSilver   = "SILVER"
	TierGold     = "GOLD"
	TierPlatinum = "PLATINUM"
	TierDiamond  = "DIAMOND"
)

// Percentile floors per tier.
const (
	diamondFloor  = 0.95
	platinumFloor = 0.85
	goldFloor     = 0.65
	silverFloor   = 0.40
)

// BayesianUpdate merges the current posterior (mu, sigma) with one observed
// daily score under fixed observation noise sigmaObs:
//
//	mu'    = (sigmaObs^2*mu + sigma^2*score) / (sigmaObs^2 + sigma^2)
//	sigma' = sqrt(sigmaObs^2*sigma^2 / (sigmaObs^2 + sigma^2))
//
// sigma shrinks monotonically, so early observations move the estimate more
// than later ones.
func BayesianUpdate(mu, sigma, dailyScore, sigmaObs float64) (newMu, newSigma float64) {
	sigmaObsSq := sigmaObs * sigmaObs
	sigmaSq := sigma * sigma

	newMu = (sigmaObsSq*mu + sigmaSq*dailyScore) / (sigmaObsSq + sigmaSq)
	newSigma = math.Sqrt((sigmaObsSq * sigmaSq) / (sigmaObsSq + sigmaSq))
	return newMu, newSigma
}

// DisplayRating is the public-facing lower confidence bound mu - 2*sigma.
// Users with few observations (high sigma) are deliberately shown less than
// their mean estimate.
func DisplayRating(mu, sigma float64) float64 {
	return mu - 2*sigma
}

// TierFor maps a percentile in (0, 1] to a tier name.
func TierFor(percentile float64) string {
	switch {
	case percentile >= diamondFloor:
		return TierDiamond
	case percentile >= platinumFloor:
		return TierPlatinum
	case percentile >= goldFloor:
		return TierGold
	case percentile >= silverFloor:
		return TierSilver
	default:
		return TierBronze
	}
}
