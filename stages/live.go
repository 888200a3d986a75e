package stages

import (
	"time"

	"github.com/Dosada05/prediction-league/models"
)

// LiveWindow is how long after kickoff an unscored match counts as live.
const LiveWindow = 120 * time.Minute

// IsMatchLive reports whether now lies in [kickoff, kickoff+LiveWindow]
// and the home score has not been recorded yet.
func IsMatchLive(match models.Match, now time.Time) bool {
	if match.HomeScore != nil {
		return false
	}
	end := match.KickoffAt.Add(LiveWindow)
	return !now.Before(match.KickoffAt) && !now.After(end)
}

// StatusOf derives the display status of a match at now.
func StatusOf(match models.Match, now time.Time) models.MatchStatus {
	switch {
	case match.IsFinished():
		return models.MatchStatusFinished
	case IsMatchLive(match, now):
		return models.MatchStatusLive
	case now.Before(match.KickoffAt):
		return models.MatchStatusScheduled
	default:
		return models.MatchStatusStarted
	}
}
