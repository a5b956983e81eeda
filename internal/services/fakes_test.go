package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/catalog"
	"github.com/yungbote/hive-backend/internal/categorize"
	"github.com/yungbote/hive-backend/internal/domain"
	pkgerrors "github.com/yungbote/hive-backend/internal/pkg/errors"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type fakeDeviceRepo struct {
	links map[string]uuid.UUID
}

func (f *fakeDeviceRepo) Link(ctx context.Context, tx *gorm.DB, deviceID string, userID uuid.UUID, deviceType string) error {
	f.links[deviceID] = userID
	return nil
}

func (f *fakeDeviceRepo) GetUserID(ctx context.Context, tx *gorm.DB, deviceID string) (uuid.UUID, error) {
	id, ok := f.links[deviceID]
	if !ok {
		return uuid.Nil, pkgerrors.ErrDeviceNotLinked
	}
	return id, nil
}

type ledgerKey struct {
	userID   uuid.UUID
	date     string
	category string
}

type fakeActivityRepo struct {
	mu        sync.Mutex
	ledger    map[ledgerKey]float64
	personaOf map[uuid.UUID]string
	events    []*domain.BrowserEvent
	reports   []*domain.UsageReport
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{
		ledger:    make(map[ledgerKey]float64),
		personaOf: make(map[uuid.UUID]string),
	}
}

func (f *fakeActivityRepo) AddCategoryTime(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, category string, minutes float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ledger[ledgerKey{userID, date, category}] += minutes
	return nil
}

func (f *fakeActivityRepo) DailyTotals(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]float64)
	for k, v := range f.ledger {
		if k.userID == userID && k.date == date {
			out[k.category] = v
		}
	}
	return out, nil
}

func (f *fakeActivityRepo) ActiveUserIDs(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for k := range f.ledger {
		if k.date == date && !seen[k.userID] {
			seen[k.userID] = true
			out = append(out, k.userID)
		}
	}
	return out, nil
}

func (f *fakeActivityRepo) CategoryScores(ctx context.Context, tx *gorm.DB, date, category string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []float64
	for k, v := range f.ledger {
		if k.date == date && k.category == category {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out, nil
}

func (f *fakeActivityRepo) CategoryScoresByPersona(ctx context.Context, tx *gorm.DB, date, category, personaRole string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []float64
	for k, v := range f.ledger {
		if k.date == date && k.category == category && f.personaOf[k.userID] == personaRole {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out, nil
}

func (f *fakeActivityRepo) CreateBrowserEvent(ctx context.Context, tx *gorm.DB, ev *domain.BrowserEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeActivityRepo) CreateUsageReport(ctx context.Context, tx *gorm.DB, r *domain.UsageReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeActivityRepo) minutes(userID uuid.UUID, date, category string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger[ledgerKey{userID, date, category}]
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, u *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) UpdateRating(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mu, sigma, displayRating float64, tier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	u.Mu, u.Sigma, u.DisplayRating, u.Tier = mu, sigma, displayRating, tier
	return nil
}

func (f *fakeUserRepo) UpdateStreak(ctx context.Context, tx *gorm.DB, userID uuid.UUID, streak int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID].Streak = streak
	return nil
}

func (f *fakeUserRepo) UpdatePersona(ctx context.Context, tx *gorm.DB, userID uuid.UUID, personaRole string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID].PersonaRole = personaRole
	return nil
}

func (f *fakeUserRepo) ListByDisplayRating(ctx context.Context, tx *gorm.DB) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayRating > out[j].DisplayRating })
	return out, nil
}

// fakeCategorizer maps names to categories, defaulting to UNCAT.
type fakeCategorizer struct {
	known map[string]string
}

func (f *fakeCategorizer) Categorize(ctx context.Context, name, sourceKind string) categorize.Result {
	if cat, ok := f.known[name]; ok {
		return categorize.Result{Category: cat, Confidence: 1, Method: categorize.MethodExact}
	}
	return categorize.Result{Category: catalog.CategoryUncat, Confidence: 0, Method: categorize.MethodBelowThreshold}
}

type fakeNotifier struct {
	mu    sync.Mutex
	count int
}

func (f *fakeNotifier) NotifyChange() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
}

func (f *fakeNotifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}
