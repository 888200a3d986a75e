// Package scoring turns predictions and final results into points and
// orders users into a leaderboard.
package scoring

import (
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
)

const (
	PointsPerfect       = 3
	PointsCorrectWinner = 1
	PointsWrong         = 0
)

var (
	// ErrNotFinished is returned when points are requested for a match
	// without a recorded final score. It signals a caller bug, never a zero.
	ErrNotFinished  = errors.New("match is not finished")
	ErrMissingMatch = errors.New("bet has no match attached")
)

// Outcome is the sign of home minus away goals.
type Outcome int

const (
	AwayWin Outcome = -1
	Draw    Outcome = 0
	HomeWin Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "home_win"
	case AwayWin:
		return "away_win"
	default:
		return "draw"
	}
}

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

type Prediction struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Result is a final score; nil fields mean it has not been recorded.
type Result struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func (r Result) Finished() bool {
	return r.Home != nil && r.Away != nil
}

func ResultOf(m models.Match) Result {
	return Result{Home: m.HomeScore, Away: m.AwayScore}
}

func PredictionOf(b models.Bet) Prediction {
	return Prediction{Home: b.HomeScorePrediction, Away: b.AwayScorePrediction}
}

// ComputePoints returns 3 for an exact score, 1 for the right outcome and
// 0 otherwise.
func ComputePoints(p Prediction, r Result) (int, error) {
	if !r.Finished() {
		return 0, ErrNotFinished
	}
	actualHome, actualAway := *r.Home, *r.Away

	if p.Home == actualHome && p.Away == actualAway {
		return PointsPerfect, nil
	}
	if OutcomeOf(p.Home, p.Away) == OutcomeOf(actualHome, actualAway) {
		return PointsCorrectWinner, nil
	}
	return PointsWrong, nil
}

// PointsForBet scores a bet against the match attached to it.
func PointsForBet(b models.Bet) (int, error) {
	if b.Match == nil {
		return 0, fmt.Errorf("%w: bet %d", ErrMissingMatch, b.ID)
	}
	pts, err := ComputePoints(PredictionOf(b), ResultOf(*b.Match))
	if err != nil {
		return 0, fmt.Errorf("bet %d on match %d: %w", b.ID, b.MatchID, err)
	}
	return pts, nil
}

// Aggregate sums the points of bets on finished matches. Bets on matches
// still pending contribute nothing.
func Aggregate(bets []models.Bet) (int, error) {
	total := 0
	for _, b := range bets {
		if b.Match == nil {
			return 0, fmt.Errorf("%w: bet %d", ErrMissingMatch, b.ID)
		}
		if !b.Match.IsFinished() {
			continue
		}
		pts, err := PointsForBet(b)
		if err != nil {
			return 0, err
		}
		total += pts
	}
	return total, nil
}
