package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/data/repos/activity"
	"github.com/yungbote/hive-backend/internal/data/repos/uncategorized"
	"github.com/yungbote/hive-backend/internal/data/repos/user"
	"github.com/yungbote/hive-backend/internal/domain"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/scoring"
)

type RatingView struct {
	Mu            float64 `json:"mu"`
	Sigma         float64 `json:"sigma"`
	DisplayRating float64 `json:"displayRating"`
	Tier          string  `json:"tier"`
	Streak        int     `json:"streak"`
	PersonaRole   string  `json:"personaRole"`
}

type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	DisplayRating float64 `json:"displayRating"`
	Tier          string  `json:"tier"`
	Streak        int     `json:"streak"`
}

type CategoryRanking struct {
	Percentile float64 `json:"percentile"`
	Rank       int     `json:"rank"`
	TotalUsers int     `json:"totalUsers"`
	LogScore   float64 `json:"logScore"`
}

type DomainRankings struct {
	Date     string                     `json:"date"`
	Rankings map[string]CategoryRanking `json:"rankings"`
}

type EODStanding struct {
	Percentile float64 `json:"percentile"`
	Rank       int     `json:"rank"`
	TotalUsers int     `json:"totalUsers"`
	Persona    string  `json:"persona,omitempty"`
}

type EODCategory struct {
	Category      string      `json:"category"`
	Minutes       float64     `json:"minutes"`
	Overall       EODStanding `json:"overall"`
	WithinPersona EODStanding `json:"withinPersona"`
}

type EODRating struct {
	Mu            float64 `json:"mu"`
	Sigma         float64 `json:"sigma"`
	DisplayRating float64 `json:"displayRating"`
	Tier          string  `json:"tier"`
	Streak        int     `json:"streak"`
}

type EODSummary struct {
	Date          string        `json:"date"`
	PersonaRole   string        `json:"personaRole"`
	TopCategories []EODCategory `json:"topCategories"`
	Rating        *EODRating    `json:"rating,omitempty"`
}

type ScoreService interface {
	ComputeUserDailyScore(ctx context.Context, userID uuid.UUID, date string) (*scoring.DailyScore, error)
	GetRating(ctx context.Context, userID uuid.UUID) (*RatingView, error)
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
	DomainRankings(ctx context.Context, userID uuid.UUID) (*DomainRankings, error)
	// BuildEODSummary recomputes the top-3 category standings for a date.
	// Returns nil with no error when the user had no activity that day.
	BuildEODSummary(ctx context.Context, userID uuid.UUID, date, personaRole string) (*EODSummary, error)
	// SummaryForDate is the read endpoint: recomputed standings plus the
	// stored rating.
	SummaryForDate(ctx context.Context, userID uuid.UUID, date string) (*EODSummary, error)
	UncategorizedApps(ctx context.Context) ([]domain.UncategorizedApp, error)
}

type scoreService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      user.UserRepo
	activityRepo  activity.ActivityRepo
	uncategorized uncategorized.UncategorizedRepo
	tMin          float64
}

func NewScoreService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo user.UserRepo,
	activityRepo activity.ActivityRepo,
	uncategorizedRepo uncategorized.UncategorizedRepo,
	tMin float64,
) ScoreService {
	return &scoreService{
		db:            db,
		log:           baseLog.With("service", "ScoreService"),
		userRepo:      userRepo,
		activityRepo:  activityRepo,
		uncategorized: uncategorizedRepo,
		tMin:          tMin,
	}
}

// TodayUTC is the ledger date for "now": UTC, YYYY-MM-DD.
func TodayUTC() string { return time.Now().UTC().Format("2006-01-02") }

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// countInclusive counts values <= v. Ties count in the user's favor, so two
// users with identical totals share the same percentile and rank.
func countInclusive(values []float64, v float64) int {
	n := 0
	for _, x := range values {
		if x <= v {
			n++
		}
	}
	return n
}

func (s *scoreService) ComputeUserDailyScore(ctx context.Context, userID uuid.UUID, date string) (*scoring.DailyScore, error) {
	u, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.activityRepo.DailyTotals(ctx, nil, userID, date)
	if err != nil {
		return nil, err
	}
	score := scoring.Compute(totals, s.tMin, u.PersonaRole)
	return &score, nil
}

func (s *scoreService) GetRating(ctx context.Context, userID uuid.UUID) (*RatingView, error) {
	u, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	return &RatingView{
		Mu:            u.Mu,
		Sigma:         u.Sigma,
		DisplayRating: u.DisplayRating,
		Tier:          u.Tier,
		Streak:        u.Streak,
		PersonaRole:   u.PersonaRole,
	}, nil
}

func (s *scoreService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	users, err := s.userRepo.ListByDisplayRating(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(users))
	for idx, u := range users {
		out = append(out, LeaderboardEntry{
			Rank:          idx + 1,
			DisplayRating: u.DisplayRating,
			Tier:          u.Tier,
			Streak:        u.Streak,
		})
	}
	return out, nil
}

func (s *scoreService) DomainRankings(ctx context.Context, userID uuid.UUID) (*DomainRankings, error) {
	today := TodayUTC()
	totals, err := s.activityRepo.DailyTotals(ctx, nil, userID, today)
	if err != nil {
		return nil, err
	}

	rankings := make(map[string]CategoryRanking, len(totals))
	logScaled := scoring.LogScale(totals)

	for category, userValue := range logScaled {
		allScores, err := s.activityRepo.CategoryScores(ctx, nil, today, category)
		if err != nil {
			return nil, err
		}
		nc := len(allScores)
		if nc == 0 {
			rankings[category] = CategoryRanking{}
			continue
		}

		allLog := make([]float64, nc)
		for i, m := range allScores {
			allLog[i] = math.Log(1 + m)
		}
		countBelow := countInclusive(allLog, userValue)

		rankings[category] = CategoryRanking{
			Percentile: roundTo(float64(countBelow)/float64(nc)*100, 2),
			Rank:       nc - countBelow + 1,
			TotalUsers: nc,
			LogScore:   roundTo(userValue, 3),
		}
	}

	return &DomainRankings{Date: today, Rankings: rankings}, nil
}

func (s *scoreService) BuildEODSummary(ctx context.Context, userID uuid.UUID, date, personaRole string) (*EODSummary, error) {
	totals, err := s.activityRepo.DailyTotals(ctx, nil, userID, date)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, nil
	}

	type catMinutes struct {
		category string
		minutes  float64
	}
	sorted := make([]catMinutes, 0, len(totals))
	for c, m := range totals {
		sorted = append(sorted, catMinutes{c, m})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].minutes > sorted[j].minutes })
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	summary := &EODSummary{Date: date, PersonaRole: personaRole}
	for _, cm := range sorted {
		allScores, err := s.activityRepo.CategoryScores(ctx, nil, date, cm.category)
		if err != nil {
			return nil, fmt.Errorf("category scores: %w", err)
		}
		personaScores, err := s.activityRepo.CategoryScoresByPersona(ctx, nil, date, cm.category, personaRole)
		if err != nil {
			return nil, fmt.Errorf("persona category scores: %w", err)
		}

		overall := standingFor(allScores, cm.minutes)
		persona := standingFor(personaScores, cm.minutes)
		persona.Persona = personaRole

		summary.TopCategories = append(summary.TopCategories, EODCategory{
			Category:      cm.category,
			Minutes:       roundTo(cm.minutes, 1),
			Overall:       overall,
			WithinPersona: persona,
		})
	}
	return summary, nil
}

func standingFor(values []float64, minutes float64) EODStanding {
	n := len(values)
	if n == 0 {
		return EODStanding{}
	}
	count := countInclusive(values, minutes)
	return EODStanding{
		Percentile: roundTo(float64(count)/float64(n)*100, 2),
		Rank:       n - count + 1,
		TotalUsers: n,
	}
}

func (s *scoreService) SummaryForDate(ctx context.Context, userID uuid.UUID, date string) (*EODSummary, error) {
	u, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	summary, err := s.BuildEODSummary(ctx, userID, date, u.PersonaRole)
	if err != nil || summary == nil {
		return summary, err
	}
	summary.Rating = &EODRating{
		Mu:            u.Mu,
		Sigma:         u.Sigma,
		DisplayRating: u.DisplayRating,
		Tier:          u.Tier,
		Streak:        u.Streak,
	}
	return summary, nil
}

func (s *scoreService) UncategorizedApps(ctx context.Context) ([]domain.UncategorizedApp, error) {
	return s.uncategorized.List(ctx, nil, 200)
}
