package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/categorize"
	"github.com/yungbote/hive-backend/internal/data/repos/activity"
	"github.com/yungbote/hive-backend/internal/data/repos/device"
	"github.com/yungbote/hive-backend/internal/domain"
	pkgerrors "github.com/yungbote/hive-backend/internal/pkg/errors"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/tracker"
)

// Categorizer is the slice of the categorize resolver the services need.
type Categorizer interface {
	Categorize(ctx context.Context, name, sourceKind string) categorize.Result
}

// LiveNotifier is poked after any session mutation so the live layer can
// rebuild and broadcast. Implementations must not block.
type LiveNotifier interface {
	NotifyChange()
}

// BrowserEventRequest is one extension event. Timestamp is the client's
// event time in milliseconds.
type BrowserEventRequest struct {
	DeviceID    string `json:"deviceId"`
	Site        string `json:"site"`
	State       string `json:"state"`
	IdleState   string `json:"idleState"`
	TimestampMs int64  `json:"timestamp"`
}

// FinalizedSession reports banked time from a closed session. Sessions under
// the minimum or over the stale threshold are discarded and reported nil.
type FinalizedSession struct {
	Site            string  `json:"site"`
	DurationMinutes float64 `json:"durationMinutes"`
	Category        string  `json:"category"`
	Method          string  `json:"method"`
}

type SessionView struct {
	Site        string `json:"site"`
	IdleState   string `json:"idleState"`
	StartedAtMs int64  `json:"startedAt"`
}

type BrowserEventResult struct {
	Message       string            `json:"message"`
	Finalized     *FinalizedSession `json:"finalized"`
	IdleState     string            `json:"idleState"`
	ActiveSession *SessionView      `json:"activeSession"`
}

type MobileApp struct {
	AppName    string `json:"appName"`
	DurationMs int64  `json:"durationMs"`
}

type MobileSyncRequest struct {
	DeviceID string      `json:"deviceId"`
	Date     string      `json:"date"`
	Apps     []MobileApp `json:"apps"`
}

type MobileAppResult struct {
	AppName         string  `json:"appName"`
	DurationMinutes float64 `json:"durationMinutes"`
	Category        string  `json:"category"`
	Method          string  `json:"method"`
}

type ActivityService interface {
	HandleBrowserEvent(ctx context.Context, req BrowserEventRequest) (*BrowserEventResult, error)
	HandleMobileSync(ctx context.Context, req MobileSyncRequest) ([]MobileAppResult, error)
}

type activityService struct {
	db           *gorm.DB
	log          *logger.Logger
	sessions     *tracker.Table
	deviceRepo   device.DeviceRepo
	activityRepo activity.ActivityRepo
	categorizer  Categorizer
	notifier     LiveNotifier

	minSessionMs int64
	staleMs      int64
}

func NewActivityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessions *tracker.Table,
	deviceRepo device.DeviceRepo,
	activityRepo activity.ActivityRepo,
	categorizer Categorizer,
	notifier LiveNotifier,
	minSessionSeconds int,
	staleSessionMs int64,
) ActivityService {
	return &activityService{
		db:           db,
		log:          baseLog.With("service", "ActivityService"),
		sessions:     sessions,
		deviceRepo:   deviceRepo,
		activityRepo: activityRepo,
		categorizer:  categorizer,
		notifier:     notifier,
		minSessionMs: int64(minSessionSeconds) * 1000,
		staleMs:      staleSessionMs,
	}
}

const (
	stateActive = "active"
	stateClosed = "closed"
)

func (s *activityService) HandleBrowserEvent(ctx context.Context, req BrowserEventRequest) (*BrowserEventResult, error) {
	if req.DeviceID == "" || req.State == "" || req.TimestampMs == 0 {
		return nil, fmt.Errorf("%w: deviceId, state and timestamp are required", pkgerrors.ErrInvalidArgument)
	}
	if req.State != stateActive && req.State != stateClosed {
		return nil, fmt.Errorf("%w: state must be %q or %q", pkgerrors.ErrInvalidArgument, stateActive, stateClosed)
	}
	idleState, ok := tracker.ParseIdleState(req.IdleState)
	if !ok {
		return nil, fmt.Errorf("%w: unknown idleState %q", pkgerrors.ErrInvalidArgument, req.IdleState)
	}

	userID, err := s.deviceRepo.GetUserID(ctx, nil, req.DeviceID)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, userID, req)

	// The event's idle signal and its state transition apply to the open
	// session as one atomic step; a site-less active event is an idle
	// transition alone.
	var finalized *FinalizedSession
	var mutated bool
	message := "Event processed"

	switch req.State {
	case stateActive:
		if req.Site == "" {
			mutated = s.sessions.ApplyIdle(req.DeviceID, idleState, req.TimestampMs)
			break
		}
		closed := s.sessions.Open(req.DeviceID, userID, req.Site, idleState, req.TimestampMs)
		if closed != nil {
			finalized = s.finalize(ctx, closed, req.TimestampMs)
		}
		mutated = true
	case stateClosed:
		closed := s.sessions.Close(req.DeviceID, idleState, req.TimestampMs)
		if closed == nil {
			return &BrowserEventResult{Message: "No active session to close, discarded", IdleState: string(idleState)}, nil
		}
		finalized = s.finalize(ctx, closed, req.TimestampMs)
		mutated = true
	}

	if mutated {
		s.notifier.NotifyChange()
	}

	var view *SessionView
	if cur := s.sessions.Get(req.DeviceID); cur != nil {
		view = &SessionView{Site: cur.Site, IdleState: string(cur.IdleState), StartedAtMs: cur.StartedAtMs}
	}
	return &BrowserEventResult{Message: message, Finalized: finalized, IdleState: string(idleState), ActiveSession: view}, nil
}

// finalize banks a closed session into the daily ledger. Invalid durations
// are discarded silently: too short to matter, non-positive (clock skew), or
// stale beyond the threshold (laptop lid closed for hours).
func (s *activityService) finalize(ctx context.Context, sess *tracker.Session, closeMs int64) *FinalizedSession {
	durationMs := sess.EffectiveDurationMs(closeMs)
	if durationMs <= 0 || durationMs < s.minSessionMs || durationMs > s.staleMs {
		s.log.Debug("Session discarded",
			"site", sess.Site,
			"duration_ms", durationMs,
		)
		return nil
	}

	durationMinutes := float64(durationMs) / 60000
	date := time.UnixMilli(sess.StartedAtMs).UTC().Format("2006-01-02")
	res := s.categorizer.Categorize(ctx, sess.Site, "browser")

	if err := s.activityRepo.AddCategoryTime(ctx, nil, sess.UserID, date, res.Category, durationMinutes); err != nil {
		s.log.Error("Failed to bank session time",
			"user_id", sess.UserID.String(),
			"site", sess.Site,
			"error", err.Error(),
		)
		return nil
	}

	return &FinalizedSession{
		Site:            sess.Site,
		DurationMinutes: durationMinutes,
		Category:        res.Category,
		Method:          res.Method,
	}
}

// audit appends the raw event row. Audit failures never block ingestion.
func (s *activityService) audit(ctx context.Context, userID uuid.UUID, req BrowserEventRequest) {
	ev := &domain.BrowserEvent{
		UserID:      userID,
		DeviceID:    req.DeviceID,
		Site:        req.Site,
		State:       req.State,
		IdleState:   req.IdleState,
		TimestampMs: req.TimestampMs,
	}
	if err := s.activityRepo.CreateBrowserEvent(ctx, nil, ev); err != nil {
		s.log.Warn("Failed to store browser event", "error", err.Error())
	}
}

func (s *activityService) HandleMobileSync(ctx context.Context, req MobileSyncRequest) ([]MobileAppResult, error) {
	if req.DeviceID == "" || req.Date == "" || req.Apps == nil {
		return nil, fmt.Errorf("%w: deviceId, date and apps are required", pkgerrors.ErrInvalidArgument)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", pkgerrors.ErrInvalidArgument)
	}

	userID, err := s.deviceRepo.GetUserID(ctx, nil, req.DeviceID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(req.Apps); err == nil {
		report := &domain.UsageReport{
			UserID:   userID,
			DeviceID: req.DeviceID,
			Date:     req.Date,
			Apps:     datatypes.JSON(raw),
		}
		if err := s.activityRepo.CreateUsageReport(ctx, nil, report); err != nil {
			s.log.Warn("Failed to store usage report", "error", err.Error())
		}
	}

	results := make([]MobileAppResult, 0, len(req.Apps))
	for _, app := range req.Apps {
		if app.AppName == "" || app.DurationMs <= 0 {
			continue
		}
		durationMinutes := float64(app.DurationMs) / 60000
		res := s.categorizer.Categorize(ctx, app.AppName, "mobile")

		if err := s.activityRepo.AddCategoryTime(ctx, nil, userID, req.Date, res.Category, durationMinutes); err != nil {
			s.log.Error("Failed to bank mobile time",
				"user_id", userID.String(),
				"error", err.Error(),
			)
			continue
		}
		results = append(results, MobileAppResult{
			AppName:         app.AppName,
			DurationMinutes: durationMinutes,
			Category:        res.Category,
			Method:          res.Method,
		})
	}
	return results, nil
}
