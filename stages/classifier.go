// Package stages decides which stage of the league is shown by default
// ("upcoming") and which stages are already concluded ("past").
package stages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"golang.org/x/sync/errgroup"
)

// StageBuffer is added to a stage date to tolerate matches scheduled after it.
const StageBuffer = 3 * 24 * time.Hour

// DefaultMaxConcurrentFetches bounds remote calls made by ClassifyByMatches.
const DefaultMaxConcurrentFetches = 4

var ErrUnknownMode = errors.New("unknown stage classification mode")

type Mode string

const (
	ByDate    Mode = "date"
	ByMatches Mode = "matches"
)

// ParseMode parses "date" or "matches"; an empty string yields ByDate.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ByDate:
		return ByDate, nil
	case ByMatches:
		return ByMatches, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Analysis is the result of a classification. UpcomingStageID is nil only
// when there were no stages at all.
type Analysis struct {
	UpcomingStageID *int
	PastStageIDs    map[int]struct{}
}

func newAnalysis() Analysis {
	return Analysis{PastStageIDs: make(map[int]struct{})}
}

func (a Analysis) IsPast(stageID int) bool {
	_, ok := a.PastStageIDs[stageID]
	return ok
}

// PastIDs returns the past stage ids in ascending order.
func (a Analysis) PastIDs() []int {
	ids := make([]int, 0, len(a.PastStageIDs))
	for id := range a.PastStageIDs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (a *Analysis) setUpcoming(id int) {
	a.UpcomingStageID = &id
	delete(a.PastStageIDs, id)
}

// MatchSource returns the matches of one stage.
type MatchSource interface {
	ListMatchesForStage(ctx context.Context, stageID int) ([]models.Match, error)
}

// FailureRecorder receives per-stage fetch failures.
type FailureRecorder interface {
	StageFetchFailed(stageID int)
}

// ClassifyByDate classifies stages using only their dates. The caller's
// slice is not reordered.
func ClassifyByDate(stages []models.Stage, now time.Time) Analysis {
	result := newAnalysis()
	if len(stages) == 0 {
		return result
	}

	sorted := make([]models.Stage, len(stages))
	copy(sorted, stages)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	found := false
	for _, stage := range sorted {
		effectiveEnd := stage.Date.Add(StageBuffer)
		if effectiveEnd.Before(now) {
			result.PastStageIDs[stage.ID] = struct{}{}
			continue
		}
		if !found {
			result.setUpcoming(stage.ID)
			found = true
		}
	}

	if !found {
		result.setUpcoming(sorted[len(sorted)-1].ID)
	}
	return result
}

// Classifier runs the match-inspection strategy against a MatchSource.
type Classifier struct {
	source         MatchSource
	logger         *slog.Logger
	failures       FailureRecorder
	maxConcurrency int
}

type Option func(*Classifier)

func WithFailureRecorder(r FailureRecorder) Option {
	return func(c *Classifier) { c.failures = r }
}

func WithMaxConcurrency(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

func NewClassifier(source MatchSource, logger *slog.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Classifier{
		source:         source,
		logger:         logger,
		maxConcurrency: DefaultMaxConcurrentFetches,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify dispatches to the strategy named by mode.
func (c *Classifier) Classify(ctx context.Context, stages []models.Stage, mode Mode, now time.Time) (Analysis, error) {
	switch mode {
	case ByDate:
		return ClassifyByDate(stages, now), nil
	case ByMatches:
		return c.ClassifyByMatches(ctx, stages, now), nil
	default:
		return Analysis{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

type stageFetch struct {
	matches []models.Match
	err     error
}

// ClassifyByMatches inspects the matches of every stage. Fetches run
// concurrently, a failed fetch only excludes its own stage, and the
// upcoming stage is picked in input order once every fetch has returned.
func (c *Classifier) ClassifyByMatches(ctx context.Context, stages []models.Stage, now time.Time) Analysis {
	result := newAnalysis()
	if len(stages) == 0 {
		return result
	}

	fetched := make([]stageFetch, len(stages))

	// Горутины всегда возвращают nil: ошибка одного тура не должна отменять остальные.
	var g errgroup.Group
	g.SetLimit(c.maxConcurrency)
	for i, stage := range stages {
		g.Go(func() error {
			matches, err := c.source.ListMatchesForStage(ctx, stage.ID)
			fetched[i] = stageFetch{matches: matches, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, stage := range stages {
		f := fetched[i]
		if f.err != nil {
			c.logger.WarnContext(ctx, "failed to load matches for stage",
				slog.Int("stage_id", stage.ID),
				slog.Any("error", f.err))
			if c.failures != nil {
				c.failures.StageFetchFailed(stage.ID)
			}
			continue
		}
		if len(f.matches) == 0 {
			continue
		}

		if allMatchesFinished(f.matches, now) {
			result.PastStageIDs[stage.ID] = struct{}{}
			continue
		}
		if result.UpcomingStageID == nil && anyMatchAhead(f.matches, now) {
			result.setUpcoming(stage.ID)
		}
	}

	if result.UpcomingStageID == nil {
		result.setUpcoming(stages[len(stages)-1].ID)
	}
	return result
}

func allMatchesFinished(matches []models.Match, now time.Time) bool {
	for i := range matches {
		if !matches[i].KickoffAt.Before(now) || !matches[i].IsFinished() {
			return false
		}
	}
	return true
}

func anyMatchAhead(matches []models.Match, now time.Time) bool {
	for i := range matches {
		if matches[i].KickoffAt.After(now) {
			return true
		}
	}
	return false
}
