package scoring

import (
	"sort"

	"github.com/Dosada05/prediction-league/models"
)

// Counters are the tie-break statistics of one user.
type Counters struct {
	Perfect     int `json:"correct_results"`
	LoneCorrect int `json:"lone_wolf_victories"`
	Wrong       int `json:"defeats"`
}

type Standing struct {
	Rank     int         `json:"rank"`
	User     models.User `json:"user"`
	Score    int         `json:"score"`
	Counters Counters    `json:"tiebreak"`
}

// UserBets is one user with the full bet history; every bet carries its match.
type UserBets struct {
	User models.User
	Bets []models.Bet
}

type scoredBet struct {
	userID  int
	matchID int
	points  int
}

// RankUsers recomputes scores and tie-break counters from the bets and
// returns the leaderboard. Order: score desc, perfect predictions desc,
// lone correct calls desc, wrong predictions asc, user id asc.
func RankUsers(entries []UserBets) ([]Standing, error) {
	scored := make([][]scoredBet, len(entries))
	zeroByMatch := make(map[int]map[int]struct{})

	for i, entry := range entries {
		for _, b := range entry.Bets {
			if b.Match == nil {
				return nil, ErrMissingMatch
			}
			if !b.Match.IsFinished() {
				continue
			}
			pts, err := PointsForBet(b)
			if err != nil {
				return nil, err
			}
			scored[i] = append(scored[i], scoredBet{userID: entry.User.ID, matchID: b.MatchID, points: pts})
			if pts == PointsWrong {
				if zeroByMatch[b.MatchID] == nil {
					zeroByMatch[b.MatchID] = make(map[int]struct{})
				}
				zeroByMatch[b.MatchID][entry.User.ID] = struct{}{}
			}
		}
	}

	standings := make([]Standing, len(entries))
	for i, entry := range entries {
		s := Standing{User: entry.User}
		for _, sb := range scored[i] {
			s.Score += sb.points
			switch {
			case sb.points == PointsPerfect:
				s.Counters.Perfect++
			case sb.points == PointsWrong:
				s.Counters.Wrong++
			}
			if sb.points > PointsWrong && someoneElseWrong(zeroByMatch[sb.matchID], sb.userID) {
				s.Counters.LoneCorrect++
			}
		}
		s.User.Score = s.Score
		standings[i] = s
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].User.ID < standings[j].User.ID
	})
	sort.SliceStable(standings, func(i, j int) bool {
		return ranksAbove(standings[i], standings[j])
	})

	for i := range standings {
		if i > 0 && sameKeys(standings[i], standings[i-1]) {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
	return standings, nil
}

func someoneElseWrong(zeroUsers map[int]struct{}, userID int) bool {
	for id := range zeroUsers {
		if id != userID {
			return true
		}
	}
	return false
}

func ranksAbove(a, b Standing) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Counters.Perfect != b.Counters.Perfect {
		return a.Counters.Perfect > b.Counters.Perfect
	}
	if a.Counters.LoneCorrect != b.Counters.LoneCorrect {
		return a.Counters.LoneCorrect > b.Counters.LoneCorrect
	}
	return a.Counters.Wrong < b.Counters.Wrong
}

func sameKeys(a, b Standing) bool {
	return a.Score == b.Score && a.Counters == b.Counters
}
