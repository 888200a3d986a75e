package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/prediction-league/cache"
	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/scoring"
	"github.com/Dosada05/prediction-league/storage"
	"github.com/jonboulle/clockwork"
)

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	// ListMatches возвращает все матчи либо, если day задан, матчи этого дня (UTC).
	ListMatches(ctx context.Context, day *time.Time) ([]models.Match, error)
	RecordFinalScore(ctx context.Context, matchID int, input FinalScoreInput) (*models.Match, error)
	// RecomputeAll пересчитывает очки всех ставок на завершённые матчи и суммы пользователей.
	RecomputeAll(ctx context.Context) (int, error)
}

type CreateMatchInput struct {
	StageID    int       `json:"stage_id"`
	HomeTeamID int       `json:"home_team_id"`
	AwayTeamID int       `json:"away_team_id"`
	KickoffAt  time.Time `json:"kickoff_at"`
	Place      *string   `json:"place,omitempty"`
}

type FinalScoreInput struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

// MatchFinishedPayload рассылается в комнату тура после записи счёта.
type MatchFinishedPayload struct {
	Match      *models.Match `json:"match"`
	BetsScored int           `json:"bets_scored"`
}

type matchService struct {
	tx        repositories.TxRunner
	matchRepo repositories.MatchRepository
	stageRepo repositories.StageRepository
	teamRepo  repositories.TeamRepository
	betRepo   repositories.BetRepository
	userRepo  repositories.UserRepository
	cache     cache.Cache
	hub       live.Broadcaster
	uploader  storage.FileUploader
	metrics   Metrics
	clock     clockwork.Clock
	logger    *slog.Logger
}

type MatchServiceDeps struct {
	Tx        repositories.TxRunner
	MatchRepo repositories.MatchRepository
	StageRepo repositories.StageRepository
	TeamRepo  repositories.TeamRepository
	BetRepo   repositories.BetRepository
	UserRepo  repositories.UserRepository
	Cache     cache.Cache
	Hub       live.Broadcaster
	Uploader  storage.FileUploader
	Metrics   Metrics
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

func NewMatchService(deps MatchServiceDeps) MatchService {
	s := &matchService{
		tx:        deps.Tx,
		matchRepo: deps.MatchRepo,
		stageRepo: deps.StageRepo,
		teamRepo:  deps.TeamRepo,
		betRepo:   deps.BetRepo,
		userRepo:  deps.UserRepo,
		cache:     deps.Cache,
		hub:       deps.Hub,
		uploader:  deps.Uploader,
		metrics:   metricsOrNop(deps.Metrics),
		clock:     deps.Clock,
		logger:    deps.Logger,
	}
	if s.cache == nil {
		s.cache = cache.NopCache{}
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrMatchSameTeams
	}
	if input.KickoffAt.IsZero() {
		return nil, ErrKickoffRequired
	}

	if _, err := s.stageRepo.GetByID(ctx, input.StageID); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage %d: %w", input.StageID, err)
	}
	for _, teamID := range []int{input.HomeTeamID, input.AwayTeamID} {
		if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrTeamNotFound, teamID)
			}
			return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
		}
	}

	match := &models.Match{
		StageID:   input.StageID,
		HomeTeam:  models.Team{ID: input.HomeTeamID},
		AwayTeam:  models.Team{ID: input.AwayTeamID},
		KickoffAt: input.KickoffAt.UTC(),
		Place:     input.Place,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchSameTeams):
			return nil, ErrMatchSameTeams
		case errors.Is(err, repositories.ErrMatchInvalidRefs):
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		default:
			return nil, fmt.Errorf("failed to create match: %w", err)
		}
	}
	// Состав тура изменился: кэш списка туров больше не актуален.
	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyStagesList)

	return s.GetMatch(ctx, match.ID)
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	decorateMatch(match, s.uploader, s.clock.Now())
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, day *time.Time) ([]models.Match, error) {
	var (
		matches []models.Match
		err     error
	)
	if day != nil {
		from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		matches, err = s.matchRepo.ListByDay(ctx, from, from.AddDate(0, 0, 1))
	} else {
		matches, err = s.matchRepo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	now := s.clock.Now()
	for i := range matches {
		decorateMatch(&matches[i], s.uploader, now)
	}
	return matches, nil
}

func (s *matchService) RecordFinalScore(ctx context.Context, matchID int, input FinalScoreInput) (*models.Match, error) {
	if err := validateScores(input.HomeScore, input.AwayScore); err != nil {
		return nil, err
	}

	var (
		match  *models.Match
		scored int
	)
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if current.IsFinished() {
			return repositories.ErrMatchAlreadyFinished
		}
		if s.clock.Now().Before(current.KickoffAt) {
			return ErrMatchNotStarted
		}

		if err := s.matchRepo.RecordFinalScore(ctx, exec, matchID, input.HomeScore, input.AwayScore); err != nil {
			return err
		}
		current.HomeScore = &input.HomeScore
		current.AwayScore = &input.AwayScore
		match = current

		bets, err := s.betRepo.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return fmt.Errorf("failed to list bets of match %d: %w", matchID, err)
		}
		result := scoring.ResultOf(*match)
		for _, b := range bets {
			points, err := scoring.ComputePoints(scoring.PredictionOf(b), result)
			if err != nil {
				return fmt.Errorf("failed to score bet %d: %w", b.ID, err)
			}
			if err := s.betRepo.SetPoints(ctx, exec, b.ID, points); err != nil {
				return err
			}
		}
		scored = len(bets)

		return s.recomputeUserScores(ctx, exec)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		case errors.Is(err, repositories.ErrMatchAlreadyFinished):
			return nil, ErrMatchAlreadyFinished
		case errors.Is(err, ErrMatchNotStarted):
			return nil, err
		default:
			return nil, fmt.Errorf("failed to record final score of match %d: %w", matchID, err)
		}
	}

	s.metrics.FinalScoreRecorded()
	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyLeaderboard)
	s.logger.InfoContext(ctx, "final score recorded",
		slog.Int("match_id", matchID),
		slog.Int("home_score", input.HomeScore),
		slog.Int("away_score", input.AwayScore),
		slog.Int("bets_scored", scored),
	)

	decorateMatch(match, s.uploader, s.clock.Now())
	if s.hub != nil {
		s.hub.BroadcastToRoom(live.StageRoom(match.StageID), live.Message{
			Type:    live.TypeMatchFinished,
			Payload: MatchFinishedPayload{Match: match, BetsScored: scored},
		})
		s.hub.BroadcastAll(live.Message{Type: live.TypeLeaderboardUpdated})
	}
	return match, nil
}

func (s *matchService) RecomputeAll(ctx context.Context) (int, error) {
	var rescored int
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		bets, err := s.betRepo.ListFinished(ctx, exec)
		if err != nil {
			return fmt.Errorf("failed to list finished bets: %w", err)
		}
		for _, b := range bets {
			points, err := scoring.PointsForBet(b)
			if err != nil {
				return fmt.Errorf("failed to score bet %d: %w", b.ID, err)
			}
			if points == b.PointsAwarded {
				continue
			}
			if err := s.betRepo.SetPoints(ctx, exec, b.ID, points); err != nil {
				return err
			}
			rescored++
		}
		return s.recomputeUserScores(ctx, exec)
	})
	if err != nil {
		return 0, err
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyLeaderboard)
	s.logger.InfoContext(ctx, "scores recomputed", slog.Int("bets_changed", rescored))
	return rescored, nil
}

// recomputeUserScores пересчитывает суммы по всей истории завершённых ставок.
func (s *matchService) recomputeUserScores(ctx context.Context, exec repositories.SQLExecutor) error {
	bets, err := s.betRepo.ListFinished(ctx, exec)
	if err != nil {
		return fmt.Errorf("failed to list finished bets: %w", err)
	}

	byUser := make(map[int][]models.Bet)
	for _, b := range bets {
		byUser[b.UserID] = append(byUser[b.UserID], b)
	}

	scores := make(map[int]int, len(byUser))
	for userID, userBets := range byUser {
		total, err := scoring.Aggregate(userBets)
		if err != nil {
			return fmt.Errorf("failed to aggregate score of user %d: %w", userID, err)
		}
		scores[userID] = total
	}

	if err := s.userRepo.UpdateScores(ctx, exec, scores); err != nil {
		return fmt.Errorf("failed to update user scores: %w", err)
	}
	return nil
}
