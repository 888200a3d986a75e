package models

import "time"

// MatchStatus is derived from kickoff time and recorded scores, it is never stored.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusStarted   MatchStatus = "started"
	MatchStatusFinished  MatchStatus = "finished"
)

// Match - матч тура. HomeScore и AwayScore либо оба nil, либо оба заданы.
type Match struct {
	ID        int       `json:"id" db:"id"`
	StageID   int       `json:"stage_id" db:"stage_id"`
	KickoffAt time.Time `json:"kickoff_at" db:"kickoff_at"`
	Place     *string   `json:"place,omitempty" db:"place"`
	HomeScore *int      `json:"home_score" db:"home_score"`
	AwayScore *int      `json:"away_score" db:"away_score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	HomeTeam Team      `json:"home_team" db:"-"`
	AwayTeam Team      `json:"away_team" db:"-"`
	Stage    *StageRef `json:"stage,omitempty" db:"-"`

	// Status заполняется сервисом при выдаче наружу.
	Status MatchStatus `json:"status,omitempty" db:"-"`
}

// IsFinished reports whether the final result has been recorded.
func (m *Match) IsFinished() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}
