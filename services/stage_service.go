package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/prediction-league/cache"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/stages"
	"github.com/Dosada05/prediction-league/storage"
	"github.com/jonboulle/clockwork"
)

type StageService interface {
	ListStages(ctx context.Context) ([]models.Stage, error)
	GetStage(ctx context.Context, id int) (*models.Stage, error)
	CreateStage(ctx context.Context, input StageInput) (*models.Stage, error)
	UpdateStage(ctx context.Context, id int, input StageInput) (*models.Stage, error)
	DeleteStage(ctx context.Context, id int) error
	ListStageMatches(ctx context.Context, stageID int) ([]models.Match, error)
	Classify(ctx context.Context, mode stages.Mode) (stages.Analysis, error)

	stages.MatchSource
}

type StageInput struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

type stageService struct {
	stageRepo  repositories.StageRepository
	matchRepo  repositories.MatchRepository
	cache      cache.Cache
	cacheObs   cache.Observer
	cacheTTL   time.Duration
	uploader   storage.FileUploader
	clock      clockwork.Clock
	logger     *slog.Logger
	classifier *stages.Classifier
}

type StageServiceConfig struct {
	Cache          cache.Cache
	CacheObserver  cache.Observer
	CacheTTL       time.Duration
	Uploader       storage.FileUploader
	Clock          clockwork.Clock
	Logger         *slog.Logger
	ClassifierOpts []stages.Option
}

func NewStageService(stageRepo repositories.StageRepository, matchRepo repositories.MatchRepository, cfg StageServiceConfig) StageService {
	s := &stageService{
		stageRepo: stageRepo,
		matchRepo: matchRepo,
		cache:     cfg.Cache,
		cacheObs:  cfg.CacheObserver,
		cacheTTL:  cfg.CacheTTL,
		uploader:  cfg.Uploader,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
	if s.cache == nil {
		s.cache = cache.NopCache{}
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = cache.DefaultTTL
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.classifier = stages.NewClassifier(s, s.logger, cfg.ClassifierOpts...)
	return s
}

func (s *stageService) ListStages(ctx context.Context) ([]models.Stage, error) {
	return cache.ReadThrough(ctx, s.cache, s.logger, s.cacheObs, cache.KeyStagesList, s.cacheTTL,
		func(ctx context.Context) ([]models.Stage, error) {
			list, err := s.stageRepo.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list stages: %w", err)
			}
			return list, nil
		})
}

func (s *stageService) GetStage(ctx context.Context, id int) (*models.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage %d: %w", id, err)
	}
	return stage, nil
}

func validateStageInput(input StageInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", ErrStageNameRequired
	}
	if input.Date.IsZero() {
		return "", ErrStageDateRequired
	}
	return name, nil
}

func (s *stageService) CreateStage(ctx context.Context, input StageInput) (*models.Stage, error) {
	name, err := validateStageInput(input)
	if err != nil {
		return nil, err
	}

	stage := &models.Stage{Name: name, Date: input.Date}
	if err := s.stageRepo.Create(ctx, stage); err != nil {
		if errors.Is(err, repositories.ErrStageNameConflict) {
			return nil, ErrStageNameConflict
		}
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyStagesList)
	return stage, nil
}

func (s *stageService) UpdateStage(ctx context.Context, id int, input StageInput) (*models.Stage, error) {
	name, err := validateStageInput(input)
	if err != nil {
		return nil, err
	}

	stage, err := s.GetStage(ctx, id)
	if err != nil {
		return nil, err
	}
	stage.Name = name
	stage.Date = input.Date

	if err := s.stageRepo.Update(ctx, stage); err != nil {
		switch {
		case errors.Is(err, repositories.ErrStageNotFound):
			return nil, ErrStageNotFound
		case errors.Is(err, repositories.ErrStageNameConflict):
			return nil, ErrStageNameConflict
		default:
			return nil, fmt.Errorf("failed to update stage %d: %w", id, err)
		}
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyStagesList)
	return stage, nil
}

func (s *stageService) DeleteStage(ctx context.Context, id int) error {
	hasMatches, err := s.stageRepo.HasMatches(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check matches of stage %d: %w", id, err)
	}
	if hasMatches {
		return ErrStageHasMatches
	}

	if err := s.stageRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("failed to delete stage %d: %w", id, err)
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyStagesList)
	return nil
}

// ListMatchesForStage отдаёт сырые матчи тура для классификатора.
func (s *stageService) ListMatchesForStage(ctx context.Context, stageID int) ([]models.Match, error) {
	return s.matchRepo.ListByStage(ctx, stageID)
}

func (s *stageService) ListStageMatches(ctx context.Context, stageID int) ([]models.Match, error) {
	if _, err := s.GetStage(ctx, stageID); err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of stage %d: %w", stageID, err)
	}

	now := s.clock.Now()
	for i := range matches {
		decorateMatch(&matches[i], s.uploader, now)
	}
	return matches, nil
}

func (s *stageService) Classify(ctx context.Context, mode stages.Mode) (stages.Analysis, error) {
	list, err := s.ListStages(ctx)
	if err != nil {
		return stages.Analysis{}, err
	}

	analysis, err := s.classifier.Classify(ctx, list, mode, s.clock.Now())
	if err != nil {
		if errors.Is(err, stages.ErrUnknownMode) {
			return stages.Analysis{}, fmt.Errorf("%w: %q", ErrInvalidClassifyMode, mode)
		}
		return stages.Analysis{}, err
	}
	return analysis, nil
}
