package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/stages"
)

const LiveMatchesJobName = "live-matches"

// StageMatches - то, что задаче нужно от сервиса туров.
type StageMatches interface {
	Classify(ctx context.Context, mode stages.Mode) (stages.Analysis, error)
	ListStageMatches(ctx context.Context, stageID int) ([]models.Match, error)
}

type LiveMatchesPayload struct {
	StageID int            `json:"stage_id"`
	Matches []models.Match `json:"matches"`
}

// LiveMatchesJob рассылает список идущих матчей текущего тура, когда он меняется.
type LiveMatchesJob struct {
	stages StageMatches
	hub    live.Broadcaster
	logger *slog.Logger

	mu   sync.Mutex
	last map[int]string
}

func NewLiveMatchesJob(stageSvc StageMatches, hub live.Broadcaster, logger *slog.Logger) *LiveMatchesJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveMatchesJob{
		stages: stageSvc,
		hub:    hub,
		logger: logger,
		last:   make(map[int]string),
	}
}

func (j *LiveMatchesJob) Run(ctx context.Context) error {
	analysis, err := j.stages.Classify(ctx, stages.ByDate)
	if err != nil {
		return fmt.Errorf("failed to classify stages: %w", err)
	}
	if analysis.UpcomingStageID == nil {
		return nil
	}
	stageID := *analysis.UpcomingStageID

	matches, err := j.stages.ListStageMatches(ctx, stageID)
	if err != nil {
		return fmt.Errorf("failed to list matches of stage %d: %w", stageID, err)
	}

	liveMatches := make([]models.Match, 0)
	for _, m := range matches {
		if m.Status == models.MatchStatusLive {
			liveMatches = append(liveMatches, m)
		}
	}

	fingerprint := liveFingerprint(liveMatches)
	j.mu.Lock()
	prev, seen := j.last[stageID]
	j.last[stageID] = fingerprint
	j.mu.Unlock()
	if seen && prev == fingerprint {
		return nil
	}
	if !seen && len(liveMatches) == 0 {
		return nil
	}

	j.hub.BroadcastToRoom(live.StageRoom(stageID), live.Message{
		Type:    live.TypeMatchesLive,
		Payload: LiveMatchesPayload{StageID: stageID, Matches: liveMatches},
	})
	j.logger.DebugContext(ctx, "live matches broadcast", slog.Int("stage_id", stageID), slog.Int("live", len(liveMatches)))
	return nil
}

func liveFingerprint(matches []models.Match) string {
	ids := make([]int, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	sort.Ints(ids)
	return fmt.Sprint(ids)
}
