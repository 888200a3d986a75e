package scoring

import (
	"errors"
	"time"

	"github.com/Dosada05/prediction-league/models"
)

var ErrBetLocked = errors.New("bet is locked: match has already kicked off")

// BetState is where a bet is in its lifecycle: predicted, locked at kickoff,
// scored once the match is finished. No transition goes backwards.
type BetState string

const (
	StatePredicted BetState = "predicted"
	StateLocked    BetState = "locked"
	StateScored    BetState = "scored"
)

func StateOf(m models.Match, now time.Time) BetState {
	switch {
	case m.IsFinished():
		return StateScored
	case now.Before(m.KickoffAt):
		return StatePredicted
	default:
		return StateLocked
	}
}

// CanEdit returns ErrBetLocked unless now is strictly before kickoff.
func CanEdit(m models.Match, now time.Time) error {
	if StateOf(m, now) != StatePredicted {
		return ErrBetLocked
	}
	return nil
}
