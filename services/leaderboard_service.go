package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/prediction-league/cache"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/scoring"
)

type LeaderboardService interface {
	Leaderboard(ctx context.Context) ([]scoring.Standing, error)
}

type leaderboardService struct {
	userRepo repositories.UserRepository
	betRepo  repositories.BetRepository
	cache    cache.Cache
	cacheObs cache.Observer
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewLeaderboardService(
	userRepo repositories.UserRepository,
	betRepo repositories.BetRepository,
	c cache.Cache,
	obs cache.Observer,
	ttl time.Duration,
	logger *slog.Logger,
) LeaderboardService {
	if c == nil {
		c = cache.NopCache{}
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &leaderboardService{
		userRepo: userRepo,
		betRepo:  betRepo,
		cache:    c,
		cacheObs: obs,
		cacheTTL: ttl,
		logger:   logger,
	}
}

func (s *leaderboardService) Leaderboard(ctx context.Context) ([]scoring.Standing, error) {
	return cache.ReadThrough(ctx, s.cache, s.logger, s.cacheObs, cache.KeyLeaderboard, s.cacheTTL, s.build)
}

func (s *leaderboardService) build(ctx context.Context) ([]scoring.Standing, error) {
	users, err := s.userRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	bets, err := s.betRepo.ListFinished(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished bets: %w", err)
	}

	byUser := make(map[int][]models.Bet, len(users))
	for _, b := range bets {
		byUser[b.UserID] = append(byUser[b.UserID], b)
	}

	entries := make([]scoring.UserBets, 0, len(users))
	for _, u := range users {
		u.PasswordHash = ""
		u.Phone = nil
		entries = append(entries, scoring.UserBets{User: u, Bets: byUser[u.ID]})
	}

	standings, err := scoring.RankUsers(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to rank users: %w", err)
	}
	return standings, nil
}
