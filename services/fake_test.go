package services

import (
	"context"
	"sync"
	"time"

	"github.com/Dosada05/prediction-league/cache"
	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
)

// FakeTx runs fn immediately with a nil executor.
type FakeTx struct {
	calls int
}

func (f *FakeTx) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

type FakeStageRepository struct {
	CreateFunc     func(ctx context.Context, stage *models.Stage) error
	GetByIDFunc    func(ctx context.Context, id int) (*models.Stage, error)
	ListFunc       func(ctx context.Context) ([]models.Stage, error)
	UpdateFunc     func(ctx context.Context, stage *models.Stage) error
	DeleteFunc     func(ctx context.Context, id int) error
	HasMatchesFunc func(ctx context.Context, id int) (bool, error)
}

func (f *FakeStageRepository) Create(ctx context.Context, stage *models.Stage) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, stage)
	}
	return nil
}

func (f *FakeStageRepository) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return &models.Stage{ID: id}, nil
}

func (f *FakeStageRepository) List(ctx context.Context) ([]models.Stage, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	return nil, nil
}

func (f *FakeStageRepository) Update(ctx context.Context, stage *models.Stage) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, stage)
	}
	return nil
}

func (f *FakeStageRepository) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

func (f *FakeStageRepository) HasMatches(ctx context.Context, id int) (bool, error) {
	if f.HasMatchesFunc != nil {
		return f.HasMatchesFunc(ctx, id)
	}
	return false, nil
}

type FakeTeamRepository struct {
	CreateFunc     func(ctx context.Context, team *models.Team) error
	GetByIDFunc    func(ctx context.Context, id int) (*models.Team, error)
	ListFunc       func(ctx context.Context) ([]models.Team, error)
	UpdateLogoFunc func(ctx context.Context, teamID int, logoKey *string) error
}

func (f *FakeTeamRepository) Create(ctx context.Context, team *models.Team) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, team)
	}
	return nil
}

func (f *FakeTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return &models.Team{ID: id}, nil
}

func (f *FakeTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	return nil, nil
}

func (f *FakeTeamRepository) UpdateLogo(ctx context.Context, teamID int, logoKey *string) error {
	if f.UpdateLogoFunc != nil {
		return f.UpdateLogoFunc(ctx, teamID, logoKey)
	}
	return nil
}

type FakeMatchRepository struct {
	CreateFunc           func(ctx context.Context, match *models.Match) error
	GetByIDFunc          func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error)
	ListByStageFunc      func(ctx context.Context, stageID int) ([]models.Match, error)
	ListByDayFunc        func(ctx context.Context, from, to time.Time) ([]models.Match, error)
	ListFunc             func(ctx context.Context) ([]models.Match, error)
	RecordFinalScoreFunc func(ctx context.Context, exec repositories.SQLExecutor, id, home, away int) error
}

func (f *FakeMatchRepository) Create(ctx context.Context, match *models.Match) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, match)
	}
	return nil
}

func (f *FakeMatchRepository) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *FakeMatchRepository) ListByStage(ctx context.Context, stageID int) ([]models.Match, error) {
	if f.ListByStageFunc != nil {
		return f.ListByStageFunc(ctx, stageID)
	}
	return nil, nil
}

func (f *FakeMatchRepository) ListByDay(ctx context.Context, from, to time.Time) ([]models.Match, error) {
	if f.ListByDayFunc != nil {
		return f.ListByDayFunc(ctx, from, to)
	}
	return nil, nil
}

func (f *FakeMatchRepository) List(ctx context.Context) ([]models.Match, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	return nil, nil
}

func (f *FakeMatchRepository) RecordFinalScore(ctx context.Context, exec repositories.SQLExecutor, id, home, away int) error {
	if f.RecordFinalScoreFunc != nil {
		return f.RecordFinalScoreFunc(ctx, exec, id, home, away)
	}
	return nil
}

type FakeBetRepository struct {
	UpsertFunc            func(ctx context.Context, bet *models.Bet) (bool, error)
	GetByIDFunc           func(ctx context.Context, id int) (*models.Bet, error)
	GetByUserAndMatchFunc func(ctx context.Context, userID, matchID int) (*models.Bet, error)
	UpdatePredictionFunc  func(ctx context.Context, id, home, away int) error
	ListByUserFunc        func(ctx context.Context, userID int) ([]models.Bet, error)
	ListByStageFunc       func(ctx context.Context, stageID int) ([]models.Bet, error)
	ListByMatchFunc       func(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]models.Bet, error)
	ListFinishedFunc      func(ctx context.Context, exec repositories.SQLExecutor) ([]models.Bet, error)
	SetPointsFunc         func(ctx context.Context, exec repositories.SQLExecutor, id, points int) error
}

func (f *FakeBetRepository) Upsert(ctx context.Context, bet *models.Bet) (bool, error) {
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, bet)
	}
	return true, nil
}

func (f *FakeBetRepository) GetByID(ctx context.Context, id int) (*models.Bet, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrBetNotFound
}

func (f *FakeBetRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Bet, error) {
	if f.GetByUserAndMatchFunc != nil {
		return f.GetByUserAndMatchFunc(ctx, userID, matchID)
	}
	return nil, repositories.ErrBetNotFound
}

func (f *FakeBetRepository) UpdatePrediction(ctx context.Context, id, home, away int) error {
	if f.UpdatePredictionFunc != nil {
		return f.UpdatePredictionFunc(ctx, id, home, away)
	}
	return nil
}

func (f *FakeBetRepository) ListByUser(ctx context.Context, userID int) ([]models.Bet, error) {
	if f.ListByUserFunc != nil {
		return f.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeBetRepository) ListByStage(ctx context.Context, stageID int) ([]models.Bet, error) {
	if f.ListByStageFunc != nil {
		return f.ListByStageFunc(ctx, stageID)
	}
	return nil, nil
}

func (f *FakeBetRepository) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]models.Bet, error) {
	if f.ListByMatchFunc != nil {
		return f.ListByMatchFunc(ctx, exec, matchID)
	}
	return nil, nil
}

func (f *FakeBetRepository) ListFinished(ctx context.Context, exec repositories.SQLExecutor) ([]models.Bet, error) {
	if f.ListFinishedFunc != nil {
		return f.ListFinishedFunc(ctx, exec)
	}
	return nil, nil
}

func (f *FakeBetRepository) SetPoints(ctx context.Context, exec repositories.SQLExecutor, id, points int) error {
	if f.SetPointsFunc != nil {
		return f.SetPointsFunc(ctx, exec, id, points)
	}
	return nil
}

type FakeUserRepository struct {
	CreateFunc        func(ctx context.Context, user *models.User) error
	GetByIDFunc       func(ctx context.Context, id int) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	UpdateFunc        func(ctx context.Context, user *models.User) error
	ListFunc          func(ctx context.Context, exec repositories.SQLExecutor) ([]models.User, error)
	UpdateScoresFunc  func(ctx context.Context, exec repositories.SQLExecutor, scores map[int]int) error
}

func (f *FakeUserRepository) Create(ctx context.Context, user *models.User) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, user)
	}
	return nil
}

func (f *FakeUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrUserNotFound
}

func (f *FakeUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.GetByUsernameFunc != nil {
		return f.GetByUsernameFunc(ctx, username)
	}
	return nil, repositories.ErrUserNotFound
}

func (f *FakeUserRepository) Update(ctx context.Context, user *models.User) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, user)
	}
	return nil
}

func (f *FakeUserRepository) List(ctx context.Context, exec repositories.SQLExecutor) ([]models.User, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, exec)
	}
	return nil, nil
}

func (f *FakeUserRepository) UpdateScores(ctx context.Context, exec repositories.SQLExecutor, scores map[int]int) error {
	if f.UpdateScoresFunc != nil {
		return f.UpdateScoresFunc(ctx, exec, scores)
	}
	return nil
}

// fakeCache is an in-memory cache.Cache.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type fakeBroadcaster struct {
	rooms []string
	msgs  []live.Message
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, msg live.Message) {
	b.rooms = append(b.rooms, roomID)
	b.msgs = append(b.msgs, msg)
}

func (b *fakeBroadcaster) BroadcastAll(msg live.Message) {
	b.rooms = append(b.rooms, "*")
	b.msgs = append(b.msgs, msg)
}

type fakeMetrics struct {
	created, updated, locked, finals int
}

func (m *fakeMetrics) BetPlaced(created bool) {
	if created {
		m.created++
	} else {
		m.updated++
	}
}

func (m *fakeMetrics) BetRejectedLocked()  { m.locked++ }
func (m *fakeMetrics) FinalScoreRecorded() { m.finals++ }
