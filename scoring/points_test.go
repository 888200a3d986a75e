package scoring

import (
	"testing"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(v int) *int { return &v }

func result(home, away int) Result { return Result{Home: ip(home), Away: ip(away)} }

func TestComputePoints(t *testing.T) {
	tests := []struct {
		name   string
		pred   Prediction
		actual Result
		want   int
	}{
		{"perfect prediction", Prediction{2, 1}, result(2, 1), 3},
		{"same winner different score", Prediction{2, 1}, result(3, 0), 1},
		{"wrong winner", Prediction{2, 1}, result(1, 2), 0},
		{"both draws different score", Prediction{1, 1}, result(2, 2), 1},
		{"goalless draw exact", Prediction{0, 0}, result(0, 0), 3},
		{"predicted draw but home won", Prediction{1, 1}, result(1, 0), 0},
		{"away win exact", Prediction{0, 3}, result(0, 3), 3},
		{"away win different score", Prediction{0, 1}, result(2, 4), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputePoints(tt.pred, tt.actual)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputePointsNotFinished(t *testing.T) {
	for _, r := range []Result{{}, {Home: ip(1)}, {Away: ip(0)}} {
		pts, err := ComputePoints(Prediction{1, 0}, r)
		assert.ErrorIs(t, err, ErrNotFinished)
		assert.Zero(t, pts)
	}
}

func TestComputePointsProperties(t *testing.T) {
	for ph := 0; ph <= 4; ph++ {
		for pa := 0; pa <= 4; pa++ {
			exact, err := ComputePoints(Prediction{ph, pa}, result(ph, pa))
			require.NoError(t, err)
			assert.Equal(t, PointsPerfect, exact)

			for ah := 0; ah <= 4; ah++ {
				for aa := 0; aa <= 4; aa++ {
					straight, err := ComputePoints(Prediction{ph, pa}, result(ah, aa))
					require.NoError(t, err)
					swapped, err := ComputePoints(Prediction{pa, ph}, result(aa, ah))
					require.NoError(t, err)
					assert.Equal(t, straight, swapped, "pred %d-%d actual %d-%d", ph, pa, ah, aa)
				}
			}
		}
	}
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, HomeWin, OutcomeOf(2, 0))
	assert.Equal(t, AwayWin, OutcomeOf(0, 2))
	assert.Equal(t, Draw, OutcomeOf(3, 3))
	assert.Equal(t, "draw", Draw.String())
}

func TestAggregate(t *testing.T) {
	finishedMatch := &models.Match{ID: 1, HomeScore: ip(2), AwayScore: ip(1)}
	otherFinished := &models.Match{ID: 2, HomeScore: ip(0), AwayScore: ip(0)}
	pendingMatch := &models.Match{ID: 3, KickoffAt: time.Now().Add(time.Hour)}

	bets := []models.Bet{
		{ID: 1, MatchID: 1, HomeScorePrediction: 2, AwayScorePrediction: 1, Match: finishedMatch},
		{ID: 2, MatchID: 2, HomeScorePrediction: 1, AwayScorePrediction: 1, Match: otherFinished},
		{ID: 3, MatchID: 3, HomeScorePrediction: 5, AwayScorePrediction: 0, Match: pendingMatch},
	}

	total, err := Aggregate(bets)
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	_, err = Aggregate([]models.Bet{{ID: 9}})
	assert.ErrorIs(t, err, ErrMissingMatch)
}

func TestBetLifecycle(t *testing.T) {
	kickoff := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	m := models.Match{KickoffAt: kickoff}

	assert.Equal(t, StatePredicted, StateOf(m, kickoff.Add(-time.Second)))
	assert.NoError(t, CanEdit(m, kickoff.Add(-time.Second)))

	assert.Equal(t, StateLocked, StateOf(m, kickoff))
	assert.ErrorIs(t, CanEdit(m, kickoff), ErrBetLocked)

	m.HomeScore, m.AwayScore = ip(1), ip(1)
	assert.Equal(t, StateScored, StateOf(m, kickoff.Add(3*time.Hour)))
	assert.ErrorIs(t, CanEdit(m, kickoff.Add(3*time.Hour)), ErrBetLocked)
}
