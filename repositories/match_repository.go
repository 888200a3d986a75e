package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/prediction-league/models"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchAlreadyFinished = errors.New("match already has a final score")
	ErrMatchInvalidRefs     = errors.New("match references unknown stage or team")
	ErrMatchSameTeams       = errors.New("home and away team must differ")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByStage(ctx context.Context, stageID int) ([]models.Match, error)
	ListByDay(ctx context.Context, from, to time.Time) ([]models.Match, error)
	List(ctx context.Context) ([]models.Match, error)
	// RecordFinalScore записывает счёт только если он ещё не был записан.
	RecordFinalScore(ctx context.Context, exec SQLExecutor, id, home, away int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchSelect = `
	SELECT
		m.id, m.stage_id, m.kickoff_at, m.place, m.home_score, m.away_score, m.created_at,
		s.name,
		ht.id, ht.name, ht.logo_key, ht.created_at,
		at.id, at.name, at.logo_key, at.created_at
	FROM matches m
	JOIN stages s ON s.id = m.stage_id
	JOIN teams ht ON ht.id = m.home_team_id
	JOIN teams at ON at.id = m.away_team_id`

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var homeScore, awayScore sql.NullInt64
	var stageName string

	err := row.Scan(
		&m.ID, &m.StageID, &m.KickoffAt, &m.Place, &homeScore, &awayScore, &m.CreatedAt,
		&stageName,
		&m.HomeTeam.ID, &m.HomeTeam.Name, &m.HomeTeam.LogoKey, &m.HomeTeam.CreatedAt,
		&m.AwayTeam.ID, &m.AwayTeam.Name, &m.AwayTeam.LogoKey, &m.AwayTeam.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.HomeScore = nullIntPtr(homeScore)
	m.AwayScore = nullIntPtr(awayScore)
	m.Stage = &models.StageRef{ID: m.StageID, Name: stageName}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (stage_id, home_team_id, away_team_id, kickoff_at, place)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		match.StageID,
		match.HomeTeam.ID,
		match.AwayTeam.ID,
		match.KickoffAt,
		match.Place,
	).Scan(&match.ID, &match.CreatedAt)

	if err != nil {
		if code, constraint, ok := asPQError(err); ok {
			switch code {
			case pqForeignKeyViolation:
				return ErrMatchInvalidRefs
			case pqCheckViolation:
				if constraint == "matches_distinct_teams" {
					return ErrMatchSameTeams
				}
			}
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	match, err := scanMatch(executor(r.db, exec).QueryRowContext(ctx, matchSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, stageID int) ([]models.Match, error) {
	return r.list(ctx, matchSelect+` WHERE m.stage_id = $1 ORDER BY m.kickoff_at ASC, m.id ASC`, stageID)
}

// ListByDay возвращает матчи с kickoff_at в полуинтервале [from, to).
func (r *postgresMatchRepository) ListByDay(ctx context.Context, from, to time.Time) ([]models.Match, error) {
	return r.list(ctx, matchSelect+` WHERE m.kickoff_at >= $1 AND m.kickoff_at < $2 ORDER BY m.kickoff_at ASC, m.id ASC`, from, to)
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]models.Match, error) {
	return r.list(ctx, matchSelect+` ORDER BY m.kickoff_at ASC, m.id ASC`)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) RecordFinalScore(ctx context.Context, exec SQLExecutor, id, home, away int) error {
	query := `
		UPDATE matches SET home_score = $1, away_score = $2
		WHERE id = $3 AND home_score IS NULL`

	result, err := executor(r.db, exec).ExecContext(ctx, query, home, away, id)
	if err != nil {
		return fmt.Errorf("failed to record score of match %d: %w", id, err)
	}
	if err := checkAffectedRows(result, ErrMatchAlreadyFinished); err != nil {
		if !errors.Is(err, ErrMatchAlreadyFinished) {
			return err
		}
		// Различаем "не найден" и "уже завершён".
		if _, getErr := r.GetByID(ctx, exec, id); getErr != nil {
			return getErr
		}
		return ErrMatchAlreadyFinished
	}
	return nil
}
