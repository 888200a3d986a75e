package services

import (
	"fmt"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/stages"
	"github.com/Dosada05/prediction-league/storage"
)

// Metrics - счётчики, которые сервисы обновляют по ходу работы.
type Metrics interface {
	BetPlaced(created bool)
	BetRejectedLocked()
	FinalScoreRecorded()
}

type nopMetrics struct{}

func (nopMetrics) BetPlaced(bool)      {}
func (nopMetrics) BetRejectedLocked()  {}
func (nopMetrics) FinalScoreRecorded() {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

const minPasswordLength = 6

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}

// decorateMatch проставляет статус матча на момент now и URL логотипов команд.
func decorateMatch(match *models.Match, uploader storage.FileUploader, now time.Time) {
	if match == nil {
		return
	}
	match.Status = stages.StatusOf(*match, now)
	populateTeamLogoURL(&match.HomeTeam, uploader)
	populateTeamLogoURL(&match.AwayTeam, uploader)
}

func validateScores(home, away int) error {
	if home < 0 || away < 0 {
		return ErrInvalidScore
	}
	return nil
}

// DayGroup - матчи одного календарного дня.
type DayGroup struct {
	Date    string         `json:"date"`
	Matches []models.Match `json:"matches"`
}

// GroupMatchesByDay группирует матчи по дате начала в loc, сохраняя порядок kickoff.
func GroupMatchesByDay(matches []models.Match, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	groups := make([]DayGroup, 0)
	index := make(map[string]int)
	for _, m := range matches {
		day := m.KickoffAt.In(loc).Format(time.DateOnly)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day})
		}
		groups[i].Matches = append(groups[i].Matches, m)
	}
	return groups
}

// GetExtensionFromContentType возвращает расширение файла для логотипа.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedLogo, contentType)
	}
}
