package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/scoring"
	"github.com/jonboulle/clockwork"
)

type BetService interface {
	// PlaceBet создаёт ставку или обновляет существующую ставку пользователя на матч.
	PlaceBet(ctx context.Context, userID int, input PlaceBetInput) (*models.Bet, bool, error)
	UpdateBet(ctx context.Context, betID, userID int, input PredictionInput) (*models.Bet, error)
	GetBet(ctx context.Context, betID, viewerID int) (*models.Bet, error)
	ListUserBets(ctx context.Context, userID, viewerID int) ([]models.Bet, error)
	ListStageBets(ctx context.Context, stageID, viewerID int) ([]models.Bet, error)
}

type PredictionInput struct {
	HomeScorePrediction int `json:"home_score_prediction"`
	AwayScorePrediction int `json:"away_score_prediction"`
}

type PlaceBetInput struct {
	MatchID int `json:"match_id"`
	PredictionInput
}

type betService struct {
	betRepo   repositories.BetRepository
	matchRepo repositories.MatchRepository
	stageRepo repositories.StageRepository
	metrics   Metrics
	clock     clockwork.Clock
	logger    *slog.Logger
}

func NewBetService(
	betRepo repositories.BetRepository,
	matchRepo repositories.MatchRepository,
	stageRepo repositories.StageRepository,
	metrics Metrics,
	clock clockwork.Clock,
	logger *slog.Logger,
) BetService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &betService{
		betRepo:   betRepo,
		matchRepo: matchRepo,
		stageRepo: stageRepo,
		metrics:   metricsOrNop(metrics),
		clock:     clock,
		logger:    logger,
	}
}

// checkEditable читает часы в момент вызова: блокировка никогда не берётся из кэша.
func (s *betService) checkEditable(ctx context.Context, match models.Match) error {
	if err := scoring.CanEdit(match, s.clock.Now()); err != nil {
		s.metrics.BetRejectedLocked()
		s.logger.InfoContext(ctx, "bet rejected: match locked", slog.Int("match_id", match.ID))
		return ErrBetLocked
	}
	return nil
}

func (s *betService) PlaceBet(ctx context.Context, userID int, input PlaceBetInput) (*models.Bet, bool, error) {
	if err := validateScores(input.HomeScorePrediction, input.AwayScorePrediction); err != nil {
		return nil, false, err
	}

	match, err := s.matchRepo.GetByID(ctx, nil, input.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, false, ErrMatchNotFound
		}
		return nil, false, fmt.Errorf("failed to get match %d: %w", input.MatchID, err)
	}
	if err := s.checkEditable(ctx, *match); err != nil {
		return nil, false, err
	}

	bet := &models.Bet{
		UserID:              userID,
		MatchID:             input.MatchID,
		HomeScorePrediction: input.HomeScorePrediction,
		AwayScorePrediction: input.AwayScorePrediction,
	}
	created, err := s.betRepo.Upsert(ctx, bet)
	if err != nil {
		if errors.Is(err, repositories.ErrBetInvalidRefs) {
			return nil, false, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, false, fmt.Errorf("failed to save bet: %w", err)
	}

	s.metrics.BetPlaced(created)
	bet.Match = match
	return bet, created, nil
}

func (s *betService) UpdateBet(ctx context.Context, betID, userID int, input PredictionInput) (*models.Bet, error) {
	if err := validateScores(input.HomeScorePrediction, input.AwayScorePrediction); err != nil {
		return nil, err
	}

	bet, err := s.getBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if bet.UserID != userID {
		return nil, ErrForbiddenOperation
	}
	if err := s.checkEditable(ctx, *bet.Match); err != nil {
		return nil, err
	}

	if err := s.betRepo.UpdatePrediction(ctx, betID, input.HomeScorePrediction, input.AwayScorePrediction); err != nil {
		if errors.Is(err, repositories.ErrBetNotFound) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to update bet %d: %w", betID, err)
	}

	s.metrics.BetPlaced(false)
	bet.HomeScorePrediction = input.HomeScorePrediction
	bet.AwayScorePrediction = input.AwayScorePrediction
	bet.UpdatedAt = s.clock.Now()
	return bet, nil
}

func (s *betService) GetBet(ctx context.Context, betID, viewerID int) (*models.Bet, error) {
	bet, err := s.getBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	out := []models.Bet{*bet}
	hideForeignPredictions(out, viewerID, s.clock.Now())
	return &out[0], nil
}

func (s *betService) ListUserBets(ctx context.Context, userID, viewerID int) ([]models.Bet, error) {
	bets, err := s.betRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets of user %d: %w", userID, err)
	}
	hideForeignPredictions(bets, viewerID, s.clock.Now())
	return bets, nil
}

func (s *betService) ListStageBets(ctx context.Context, stageID, viewerID int) ([]models.Bet, error) {
	if _, err := s.stageRepo.GetByID(ctx, stageID); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage %d: %w", stageID, err)
	}

	bets, err := s.betRepo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets of stage %d: %w", stageID, err)
	}
	hideForeignPredictions(bets, viewerID, s.clock.Now())
	return bets, nil
}

func (s *betService) getBet(ctx context.Context, betID int) (*models.Bet, error) {
	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		if errors.Is(err, repositories.ErrBetNotFound) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to get bet %d: %w", betID, err)
	}
	return bet, nil
}

// hideForeignPredictions скрывает чужие прогнозы, пока матч не начался.
func hideForeignPredictions(bets []models.Bet, viewerID int, now time.Time) {
	for i := range bets {
		b := &bets[i]
		if b.UserID == viewerID || b.Match == nil {
			continue
		}
		if scoring.StateOf(*b.Match, now) == scoring.StatePredicted {
			b.HomeScorePrediction = 0
			b.AwayScorePrediction = 0
			b.Hidden = true
		}
	}
}
