//go:build integration

package repositories_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Dosada05/prediction-league/db"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("league"),
		postgres.WithUsername("league"),
		postgres.WithPassword("league"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err == nil {
		testDB, err = db.Connect(dsn, 30*time.Second)
	}
	if err == nil {
		err = db.Migrate(testDB)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare database: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	_ = testDB.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func resetDB(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(`TRUNCATE bets, matches, teams, stages, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

type fixture struct {
	users   repositories.UserRepository
	stages  repositories.StageRepository
	teams   repositories.TeamRepository
	matches repositories.MatchRepository
	bets    repositories.BetRepository
	tx      repositories.TxRunner

	alice, bob *models.User
	match      *models.Match
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	resetDB(t)
	ctx := context.Background()

	f := &fixture{
		users:   repositories.NewPostgresUserRepository(testDB),
		stages:  repositories.NewPostgresStageRepository(testDB),
		teams:   repositories.NewPostgresTeamRepository(testDB),
		matches: repositories.NewPostgresMatchRepository(testDB),
		bets:    repositories.NewPostgresBetRepository(testDB),
		tx:      repositories.NewTxRunner(testDB),
	}

	f.alice = &models.User{Username: "alice", PasswordHash: "x"}
	f.bob = &models.User{Username: "bob", PasswordHash: "x"}
	require.NoError(t, f.users.Create(ctx, f.alice))
	require.NoError(t, f.users.Create(ctx, f.bob))

	stage := &models.Stage{Name: "Тур 1", Date: time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, f.stages.Create(ctx, stage))

	home := &models.Team{Name: "Спартак"}
	away := &models.Team{Name: "Зенит"}
	require.NoError(t, f.teams.Create(ctx, home))
	require.NoError(t, f.teams.Create(ctx, away))

	f.match = &models.Match{
		StageID:   stage.ID,
		HomeTeam:  *home,
		AwayTeam:  *away,
		KickoffAt: time.Date(2025, 4, 12, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.matches.Create(ctx, f.match))
	return f
}

func TestUserConflicts(t *testing.T) {
	f := newFixture(t)
	err := f.users.Create(context.Background(), &models.User{Username: "alice", PasswordHash: "y"})
	assert.ErrorIs(t, err, repositories.ErrUserUsernameConflict)
}

func TestMatchConstraints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	same := &models.Match{StageID: f.match.StageID, HomeTeam: f.match.HomeTeam, AwayTeam: f.match.HomeTeam, KickoffAt: f.match.KickoffAt}
	assert.ErrorIs(t, f.matches.Create(ctx, same), repositories.ErrMatchSameTeams)

	orphan := &models.Match{StageID: 999, HomeTeam: f.match.HomeTeam, AwayTeam: f.match.AwayTeam, KickoffAt: f.match.KickoffAt}
	assert.ErrorIs(t, f.matches.Create(ctx, orphan), repositories.ErrMatchInvalidRefs)

	has, err := f.stages.HasMatches(ctx, f.match.StageID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestBetUpsertKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bet := &models.Bet{UserID: f.alice.ID, MatchID: f.match.ID, HomeScorePrediction: 1, AwayScorePrediction: 0}
	created, err := f.bets.Upsert(ctx, bet)
	require.NoError(t, err)
	assert.True(t, created)
	firstID := bet.ID

	again := &models.Bet{UserID: f.alice.ID, MatchID: f.match.ID, HomeScorePrediction: 2, AwayScorePrediction: 2}
	created, err = f.bets.Upsert(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, firstID, again.ID)

	stored, err := f.bets.GetByUserAndMatch(ctx, f.alice.ID, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.HomeScorePrediction)
	assert.Equal(t, 2, stored.AwayScorePrediction)
	require.NotNil(t, stored.Match)
	assert.Equal(t, "Спартак", stored.Match.HomeTeam.Name)

	byMatch, err := f.bets.ListByMatch(ctx, nil, f.match.ID)
	require.NoError(t, err)
	assert.Len(t, byMatch, 1)
}

func TestRecordFinalScoreOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.matches.RecordFinalScore(ctx, nil, f.match.ID, 2, 1))

	err := f.matches.RecordFinalScore(ctx, nil, f.match.ID, 3, 3)
	assert.ErrorIs(t, err, repositories.ErrMatchAlreadyFinished)

	err = f.matches.RecordFinalScore(ctx, nil, 999, 0, 0)
	assert.ErrorIs(t, err, repositories.ErrMatchNotFound)

	m, err := f.matches.GetByID(ctx, nil, f.match.ID)
	require.NoError(t, err)
	require.True(t, m.IsFinished())
	assert.Equal(t, 2, *m.HomeScore)
	assert.Equal(t, 1, *m.AwayScore)
}

func TestListByDayHalfOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC)

	got, err := f.matches.ListByDay(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = f.matches.ListByDay(ctx, day.Add(24*time.Hour), day.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScoresInTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bet := &models.Bet{UserID: f.alice.ID, MatchID: f.match.ID, HomeScorePrediction: 2, AwayScorePrediction: 1}
	_, err := f.bets.Upsert(ctx, bet)
	require.NoError(t, err)

	errBoom := errors.New("boom")
	err = f.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		require.NoError(t, f.matches.RecordFinalScore(ctx, exec, f.match.ID, 2, 1))
		require.NoError(t, f.bets.SetPoints(ctx, exec, bet.ID, 3))
		require.NoError(t, f.users.UpdateScores(ctx, exec, map[int]int{f.alice.ID: 3}))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	m, err := f.matches.GetByID(ctx, nil, f.match.ID)
	require.NoError(t, err)
	assert.False(t, m.IsFinished(), "rolled back")

	err = f.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := f.matches.RecordFinalScore(ctx, exec, f.match.ID, 2, 1); err != nil {
			return err
		}
		if err := f.bets.SetPoints(ctx, exec, bet.ID, 3); err != nil {
			return err
		}
		return f.users.UpdateScores(ctx, exec, map[int]int{f.alice.ID: 3})
	})
	require.NoError(t, err)

	users, err := f.users.List(ctx, nil)
	require.NoError(t, err)
	scores := map[string]int{}
	for _, u := range users {
		scores[u.Username] = u.Score
	}
	assert.Equal(t, map[string]int{"alice": 3, "bob": 0}, scores)

	finished, err := f.bets.ListFinished(ctx, nil)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, 3, finished[0].PointsAwarded)
}

func TestStageDeleteAndConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.stages.Create(ctx, &models.Stage{Name: "Тур 1", Date: time.Now()})
	assert.ErrorIs(t, err, repositories.ErrStageNameConflict)

	empty := &models.Stage{Name: "Тур 2", Date: time.Date(2025, 4, 19, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, f.stages.Create(ctx, empty))
	require.NoError(t, f.stages.Delete(ctx, empty.ID))
	assert.ErrorIs(t, f.stages.Delete(ctx, empty.ID), repositories.ErrStageNotFound)
}
