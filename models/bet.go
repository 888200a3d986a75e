package models

import "time"

// Bet - прогноз пользователя на матч. Не больше одной ставки на пару (user, match).
type Bet struct {
	ID                  int       `json:"id" db:"id"`
	UserID              int       `json:"user_id" db:"user_id"`
	MatchID             int       `json:"match_id" db:"match_id"`
	HomeScorePrediction int       `json:"home_score_prediction" db:"home_score_prediction"`
	AwayScorePrediction int       `json:"away_score_prediction" db:"away_score_prediction"`
	PointsAwarded       int       `json:"points_awarded" db:"points_awarded"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`

	Match *Match   `json:"match,omitempty" db:"-"`
	User  *UserRef `json:"user,omitempty" db:"-"`

	// Hidden is set when another participant's prediction must not be shown yet.
	Hidden bool `json:"hidden,omitempty" db:"-"`
}
