package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/data/repos/activity"
	"github.com/yungbote/hive-backend/internal/data/repos/user"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/rating"
	"github.com/yungbote/hive-backend/internal/scoring"
)

type EODService interface {
	// RunForDate settles one ledger day: daily scores, Bayesian rating
	// updates, percentile tiers, streaks, then summary pushes to connected
	// users. Per-user failures are logged and skipped.
	RunForDate(ctx context.Context, date string) error
	// StartScheduler fires RunForDate for the previous UTC day at every
	// UTC midnight until ctx is canceled.
	StartScheduler(ctx context.Context)
}

type eodService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     user.UserRepo
	activityRepo activity.ActivityRepo
	scoreService ScoreService
	liveService  LiveService
	tMin         float64
	sigmaObs     float64
}

func NewEODService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo user.UserRepo,
	activityRepo activity.ActivityRepo,
	scoreService ScoreService,
	liveService LiveService,
	tMin float64,
	sigmaObs float64,
) EODService {
	return &eodService{
		db:           db,
		log:          baseLog.With("service", "EODService"),
		userRepo:     userRepo,
		activityRepo: activityRepo,
		scoreService: scoreService,
		liveService:  liveService,
		tMin:         tMin,
		sigmaObs:     sigmaObs,
	}
}

type eodUser struct {
	userID      uuid.UUID
	newMu       float64
	newSigma    float64
	rating      float64
	tier        string
	newStreak   int
	personaRole string
}

func (s *eodService) RunForDate(ctx context.Context, date string) error {
	userIDs, err := s.activityRepo.ActiveUserIDs(ctx, nil, date)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		s.log.Info("No active users for end-of-day run", "date", date)
		return nil
	}

	scored := make([]eodUser, 0, len(userIDs))
	for _, userID := range userIDs {
		u, err := s.userRepo.GetByID(ctx, nil, userID)
		if err != nil {
			s.log.Warn("Skipping user in end-of-day run",
				"user_id", userID.String(),
				"error", err.Error(),
			)
			continue
		}
		totals, err := s.activityRepo.DailyTotals(ctx, nil, userID, date)
		if err != nil {
			s.log.Warn("Skipping user in end-of-day run",
				"user_id", userID.String(),
				"error", err.Error(),
			)
			continue
		}

		score := scoring.Compute(totals, s.tMin, u.PersonaRole)
		newMu, newSigma := rating.BayesianUpdate(u.Mu, u.Sigma, score.WeightedScore, s.sigmaObs)

		newStreak := 0
		if score.StreakMet {
			newStreak = u.Streak + 1
		}

		scored = append(scored, eodUser{
			userID:      userID,
			newMu:       newMu,
			newSigma:    newSigma,
			rating:      rating.DisplayRating(newMu, newSigma),
			newStreak:   newStreak,
			personaRole: u.PersonaRole,
		})
	}

	// One ascending sort sets everyone's percentile for the day.
	sort.Slice(scored, func(i, j int) bool { return scored[i].rating < scored[j].rating })
	total := len(scored)

	for idx := range scored {
		u := &scored[idx]
		percentile := float64(idx+1) / float64(total)
		u.tier = rating.TierFor(percentile)

		if err := s.userRepo.UpdateRating(ctx, nil, u.userID, u.newMu, u.newSigma, u.rating, u.tier); err != nil {
			s.log.Error("Failed to persist rating",
				"user_id", u.userID.String(),
				"error", err.Error(),
			)
			continue
		}
		if err := s.userRepo.UpdateStreak(ctx, nil, u.userID, u.newStreak); err != nil {
			s.log.Error("Failed to persist streak",
				"user_id", u.userID.String(),
				"error", err.Error(),
			)
		}
	}

	s.pushSummaries(ctx, date, scored)

	s.log.Info("End-of-day run complete", "date", date, "users", total)
	return nil
}

func (s *eodService) pushSummaries(ctx context.Context, date string, scored []eodUser) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i := range scored {
		u := scored[i]
		g.Go(func() error {
			summary, err := s.scoreService.BuildEODSummary(gctx, u.userID, date, u.personaRole)
			if err != nil {
				s.log.Warn("End-of-day summary failed",
					"user_id", u.userID.String(),
					"error", err.Error(),
				)
				return nil
			}
			if summary == nil {
				return nil
			}
			summary.Rating = &EODRating{
				Mu:            roundTo(u.newMu, 2),
				Sigma:         roundTo(u.newSigma, 2),
				DisplayRating: roundTo(u.rating, 2),
				Tier:          u.tier,
				Streak:        u.newStreak,
			}
			s.liveService.PushEODSummary(u.userID, summary)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *eodService) StartScheduler(ctx context.Context) {
	go func() {
		for {
			now := time.Now().UTC()
			next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
			timer := time.NewTimer(next.Sub(now))

			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			date := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
			runCtx, cancel := context.WithTimeout(ctx, 15*time.Minute)
			if err := s.RunForDate(runCtx, date); err != nil {
				s.log.Error("End-of-day run failed", "date", date, "error", err.Error())
			}
			cancel()
		}
	}()
}
