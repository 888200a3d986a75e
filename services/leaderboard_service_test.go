package services

import (
	"context"
	"testing"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard(t *testing.T) {
	m1 := &models.Match{ID: 1, HomeScore: ip(2), AwayScore: ip(0)}
	m2 := &models.Match{ID: 2, HomeScore: ip(1), AwayScore: ip(1)}

	phone := "+7 700 111 22 33"
	loads := 0
	userRepo := &FakeUserRepository{
		ListFunc: func(context.Context, repositories.SQLExecutor) ([]models.User, error) {
			loads++
			return []models.User{
				{ID: 1, Username: "ana", PasswordHash: "secret", Phone: &phone},
				{ID: 2, Username: "bruno"},
				{ID: 3, Username: "idle"},
			}, nil
		},
	}
	betRepo := &FakeBetRepository{
		ListFinishedFunc: func(context.Context, repositories.SQLExecutor) ([]models.Bet, error) {
			return []models.Bet{
				{UserID: 1, MatchID: 1, HomeScorePrediction: 1, AwayScorePrediction: 0, Match: m1},
				{UserID: 2, MatchID: 1, HomeScorePrediction: 2, AwayScorePrediction: 0, Match: m1},
				{UserID: 2, MatchID: 2, HomeScorePrediction: 0, AwayScorePrediction: 3, Match: m2},
			}, nil
		},
	}

	svc := NewLeaderboardService(userRepo, betRepo, newFakeCache(), nil, 0, testLogger)

	standings, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 3)

	assert.Equal(t, "bruno", standings[0].User.Username)
	assert.Equal(t, 3, standings[0].Score)
	assert.Equal(t, 1, standings[0].Counters.Perfect)
	assert.Equal(t, 1, standings[0].Counters.Wrong)
	assert.Equal(t, "ana", standings[1].User.Username)
	assert.Empty(t, standings[1].User.PasswordHash)
	assert.Nil(t, standings[1].User.Phone)
	assert.Equal(t, "idle", standings[2].User.Username)
	assert.Equal(t, 3, standings[2].Rank)

	again, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, standings, again)
	assert.Equal(t, 1, loads, "second call is served from cache")
}

func TestLeaderboardReloadsAfterUserWrites(t *testing.T) {
	users := []models.User{{ID: 1, Username: "ana"}}
	userRepo := &FakeUserRepository{
		ListFunc: func(context.Context, repositories.SQLExecutor) ([]models.User, error) {
			return append([]models.User(nil), users...), nil
		},
		CreateFunc: func(_ context.Context, u *models.User) error {
			u.ID = len(users) + 1
			users = append(users, *u)
			return nil
		},
		GetByIDFunc: func(_ context.Context, id int) (*models.User, error) {
			for _, u := range users {
				if u.ID == id {
					cp := u
					return &cp, nil
				}
			}
			return nil, repositories.ErrUserNotFound
		},
		UpdateFunc: func(_ context.Context, u *models.User) error {
			for i := range users {
				if users[i].ID == u.ID {
					users[i] = *u
				}
			}
			return nil
		},
	}
	betRepo := &FakeBetRepository{
		ListFinishedFunc: func(context.Context, repositories.SQLExecutor) ([]models.Bet, error) {
			return nil, nil
		},
	}

	c := newFakeCache()
	leaderboard := NewLeaderboardService(userRepo, betRepo, c, nil, 0, testLogger)
	auth := NewAuthService(userRepo, c, testLogger)
	profiles := NewUserService(userRepo, c, testLogger)
	ctx := context.Background()

	standings, err := leaderboard.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 1)

	_, err = auth.Register(ctx, RegisterInput{Username: "bruno", Password: "hunter22"})
	require.NoError(t, err)

	standings, err = leaderboard.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 2, "registered user appears without waiting for the TTL")

	renamed := "ana-maria"
	_, err = profiles.UpdateUser(ctx, 1, UpdateUserInput{Username: &renamed})
	require.NoError(t, err)

	standings, err = leaderboard.Leaderboard(ctx)
	require.NoError(t, err)
	names := []string{standings[0].User.Username, standings[1].User.Username}
	assert.ElementsMatch(t, []string{"ana-maria", "bruno"}, names)
}
