package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/hive-backend/internal/catalog"
	"github.com/yungbote/hive-backend/internal/data/repos/activity"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/realtime"
	"github.com/yungbote/hive-backend/internal/tracker"
)

type SiteCount struct {
	Site  string `json:"site"`
	Count int    `json:"count"`
}

// GlobalStats is the anonymous live picture every connected client shares.
// Category and site breakdowns only count sessions whose idle state is
// ACTIVE; idle and locked devices appear in their own counters.
type GlobalStats struct {
	TotalActive       int            `json:"totalActive"`
	TotalIdle         int            `json:"totalIdle"`
	TotalLocked       int            `json:"totalLocked"`
	CategoryBreakdown map[string]int `json:"categoryBreakdown"`
	TopSites          []SiteCount    `json:"topSites"`
}

type LiveRankingEntry struct {
	YourMinutes     float64 `json:"yourMinutes"`
	Rank            int     `json:"rank"`
	TotalUsers      int     `json:"totalUsers"`
	Percentile      float64 `json:"percentile"`
	CurrentlyActive int     `json:"currentlyActive"`
}

type LiveStatsPayload struct {
	TimestampMs int64       `json:"timestamp"`
	Global      GlobalStats `json:"global"`
	You         struct {
		LiveRanking map[string]LiveRankingEntry `json:"liveRanking"`
	} `json:"you"`
}

type EODSummaryPayload struct {
	TimestampMs int64       `json:"timestamp"`
	Summary     *EODSummary `json:"summary"`
}

type LiveService interface {
	LiveNotifier
	// Connect registers a websocket client for a user, subscribed to the
	// global channel and the user's own channel.
	Connect(userID uuid.UUID) *realtime.Client
	Hub() *realtime.Hub
	BuildGlobalStats() GlobalStats
	BuildLiveRanking(ctx context.Context, userID uuid.UUID) (map[string]LiveRankingEntry, error)
	Snapshot(ctx context.Context, userID uuid.UUID) *LiveStatsPayload
	PushEODSummary(userID uuid.UUID, summary *EODSummary)
	// Start runs the coalesced broadcast loop until ctx is canceled.
	Start(ctx context.Context)
}

type liveService struct {
	log          *logger.Logger
	sessions     *tracker.Table
	activityRepo activity.ActivityRepo
	hub          *realtime.Hub

	// send delivers an outgoing message. Single-instance deployments send
	// straight to the hub; multi-instance ones publish through the bus and
	// let the forwarder apply messages to every hub.
	send func(realtime.Message)

	// 1-slot channel: a burst of notifications while a rebuild is running
	// collapses into a single follow-up rebuild.
	notify chan struct{}
}

func NewLiveService(
	baseLog *logger.Logger,
	sessions *tracker.Table,
	activityRepo activity.ActivityRepo,
	hub *realtime.Hub,
	send func(realtime.Message),
) LiveService {
	if send == nil {
		send = hub.Broadcast
	}
	return &liveService{
		log:          baseLog.With("service", "LiveService"),
		sessions:     sessions,
		activityRepo: activityRepo,
		hub:          hub,
		send:         send,
		notify:       make(chan struct{}, 1),
	}
}

func (s *liveService) Hub() *realtime.Hub { return s.hub }

func (s *liveService) Connect(userID uuid.UUID) *realtime.Client {
	client := s.hub.NewClient(userID)
	s.hub.AddChannel(client, realtime.ChannelGlobal)
	s.hub.AddChannel(client, realtime.UserChannel(userID.String()))
	return client
}

func (s *liveService) NotifyChange() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *liveService) BuildGlobalStats() GlobalStats {
	stats := GlobalStats{CategoryBreakdown: make(map[string]int)}
	siteCounts := make(map[string]int)

	for _, sess := range s.sessions.Snapshot() {
		switch sess.IdleState {
		case tracker.IdleIdle:
			stats.TotalIdle++
		case tracker.IdleLocked:
			stats.TotalLocked++
		default:
			stats.TotalActive++
			stats.CategoryBreakdown[catalog.QuickCategory(sess.Site)]++
			siteCounts[sess.Site]++
		}
	}

	sites := make([]SiteCount, 0, len(siteCounts))
	for site, count := range siteCounts {
		sites = append(sites, SiteCount{Site: site, Count: count})
	}
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Count != sites[j].Count {
			return sites[i].Count > sites[j].Count
		}
		return sites[i].Site < sites[j].Site
	})
	if len(sites) > 5 {
		sites = sites[:5]
	}
	stats.TopSites = sites
	return stats
}

func (s *liveService) BuildLiveRanking(ctx context.Context, userID uuid.UUID) (map[string]LiveRankingEntry, error) {
	today := TodayUTC()
	totals, err := s.activityRepo.DailyTotals(ctx, nil, userID, today)
	if err != nil {
		return nil, err
	}

	// Active-session categories computed once per rebuild, not per ledger
	// category.
	activeByCategory := make(map[string]int)
	for _, sess := range s.sessions.Snapshot() {
		if sess.IdleState == tracker.IdleActive {
			activeByCategory[catalog.QuickCategory(sess.Site)]++
		}
	}

	rankings := make(map[string]LiveRankingEntry, len(totals))
	for category, minutes := range totals {
		allScores, err := s.activityRepo.CategoryScores(ctx, nil, today, category)
		if err != nil {
			return nil, err
		}
		nc := len(allScores)
		if nc == 0 {
			continue
		}
		count := countInclusive(allScores, minutes)

		rankings[category] = LiveRankingEntry{
			YourMinutes:     roundTo(minutes, 1),
			Rank:            nc - count + 1,
			TotalUsers:      nc,
			Percentile:      roundTo(float64(count)/float64(nc)*100, 2),
			CurrentlyActive: activeByCategory[category],
		}
	}
	return rankings, nil
}

func (s *liveService) Snapshot(ctx context.Context, userID uuid.UUID) *LiveStatsPayload {
	payload := &LiveStatsPayload{
		TimestampMs: time.Now().UnixMilli(),
		Global:      s.BuildGlobalStats(),
	}
	ranking, err := s.BuildLiveRanking(ctx, userID)
	if err != nil {
		s.log.Warn("Live ranking failed", "user_id", userID.String(), "error", err.Error())
		ranking = map[string]LiveRankingEntry{}
	}
	payload.You.LiveRanking = ranking
	return payload
}

func (s *liveService) PushEODSummary(userID uuid.UUID, summary *EODSummary) {
	s.send(realtime.Message{
		Channel: realtime.UserChannel(userID.String()),
		Event:   realtime.EventEODSummary,
		Data: EODSummaryPayload{
			TimestampMs: time.Now().UnixMilli(),
			Summary:     summary,
		},
	})
}

func (s *liveService) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.notify:
				s.broadcast(ctx)
			}
		}
	}()
}

// broadcast rebuilds global stats once and a personalized ranking per
// connected user. A per-user failure degrades that user's payload only.
func (s *liveService) broadcast(ctx context.Context) {
	global := s.BuildGlobalStats()
	now := time.Now().UnixMilli()

	for _, userID := range s.hub.Users() {
		ranking, err := s.BuildLiveRanking(ctx, userID)
		if err != nil {
			s.log.Warn("Live ranking failed during broadcast",
				"user_id", userID.String(),
				"error", err.Error(),
			)
			ranking = map[string]LiveRankingEntry{}
		}

		payload := &LiveStatsPayload{TimestampMs: now, Global: global}
		payload.You.LiveRanking = ranking

		s.send(realtime.Message{
			Channel: realtime.UserChannel(userID.String()),
			Event:   realtime.EventLiveStats,
			Data:    payload,
		})
	}
}
