package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
)

var (
	ErrBetNotFound    = errors.New("bet not found")
	ErrBetInvalidRefs = errors.New("bet references unknown user or match")
)

type BetRepository interface {
	// Upsert создаёт ставку или обновляет прогноз существующей ставки (user_id, match_id).
	Upsert(ctx context.Context, bet *models.Bet) (created bool, err error)
	GetByID(ctx context.Context, id int) (*models.Bet, error)
	GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Bet, error)
	UpdatePrediction(ctx context.Context, id, home, away int) error
	ListByUser(ctx context.Context, userID int) ([]models.Bet, error)
	ListByStage(ctx context.Context, stageID int) ([]models.Bet, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Bet, error)
	// ListFinished возвращает все ставки на завершённые матчи.
	ListFinished(ctx context.Context, exec SQLExecutor) ([]models.Bet, error)
	SetPoints(ctx context.Context, exec SQLExecutor, id, points int) error
}

type postgresBetRepository struct {
	db *sql.DB
}

func NewPostgresBetRepository(db *sql.DB) BetRepository {
	return &postgresBetRepository{db: db}
}

const betSelect = `
	SELECT
		b.id, b.user_id, b.match_id, b.home_score_prediction, b.away_score_prediction,
		b.points_awarded, b.created_at, b.updated_at,
		u.username,
		m.id, m.stage_id, m.kickoff_at, m.place, m.home_score, m.away_score, m.created_at,
		s.name,
		ht.id, ht.name, ht.logo_key, ht.created_at,
		at.id, at.name, at.logo_key, at.created_at
	FROM bets b
	JOIN users u ON u.id = b.user_id
	JOIN matches m ON m.id = b.match_id
	JOIN stages s ON s.id = m.stage_id
	JOIN teams ht ON ht.id = m.home_team_id
	JOIN teams at ON at.id = m.away_team_id`

func scanBet(row rowScanner) (*models.Bet, error) {
	var b models.Bet
	var m models.Match
	var username, stageName string
	var homeScore, awayScore sql.NullInt64

	err := row.Scan(
		&b.ID, &b.UserID, &b.MatchID, &b.HomeScorePrediction, &b.AwayScorePrediction,
		&b.PointsAwarded, &b.CreatedAt, &b.UpdatedAt,
		&username,
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
	b.Match = &m
	b.User = &models.UserRef{ID: b.UserID, Username: username}
	return &b, nil
}

func (r *postgresBetRepository) Upsert(ctx context.Context, bet *models.Bet) (bool, error) {
	// xmax = 0 только у только что вставленной строки.
	query := `
		INSERT INTO bets (user_id, match_id, home_score_prediction, away_score_prediction)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, match_id) DO UPDATE
			SET home_score_prediction = EXCLUDED.home_score_prediction,
			    away_score_prediction = EXCLUDED.away_score_prediction,
			    updated_at = NOW()
		RETURNING id, points_awarded, created_at, updated_at, (xmax = 0) AS inserted`

	var created bool
	err := r.db.QueryRowContext(ctx, query,
		bet.UserID,
		bet.MatchID,
		bet.HomeScorePrediction,
		bet.AwayScorePrediction,
	).Scan(&bet.ID, &bet.PointsAwarded, &bet.CreatedAt, &bet.UpdatedAt, &created)

	if err != nil {
		if code, _, ok := asPQError(err); ok && code == pqForeignKeyViolation {
			return false, ErrBetInvalidRefs
		}
		return false, fmt.Errorf("failed to upsert bet: %w", err)
	}
	return created, nil
}

func (r *postgresBetRepository) GetByID(ctx context.Context, id int) (*models.Bet, error) {
	return r.getOne(ctx, betSelect+` WHERE b.id = $1`, id)
}

func (r *postgresBetRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Bet, error) {
	return r.getOne(ctx, betSelect+` WHERE b.user_id = $1 AND b.match_id = $2`, userID, matchID)
}

func (r *postgresBetRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Bet, error) {
	bet, err := scanBet(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to scan bet: %w", err)
	}
	return bet, nil
}

func (r *postgresBetRepository) UpdatePrediction(ctx context.Context, id, home, away int) error {
	query := `
		UPDATE bets
		SET home_score_prediction = $1, away_score_prediction = $2, updated_at = NOW()
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, home, away, id)
	if err != nil {
		return fmt.Errorf("failed to update bet %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBetNotFound)
}

func (r *postgresBetRepository) ListByUser(ctx context.Context, userID int) ([]models.Bet, error) {
	return r.list(ctx, r.db, betSelect+` WHERE b.user_id = $1 ORDER BY m.kickoff_at ASC, b.id ASC`, userID)
}

func (r *postgresBetRepository) ListByStage(ctx context.Context, stageID int) ([]models.Bet, error) {
	return r.list(ctx, r.db, betSelect+` WHERE m.stage_id = $1 ORDER BY m.kickoff_at ASC, b.user_id ASC`, stageID)
}

func (r *postgresBetRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Bet, error) {
	return r.list(ctx, executor(r.db, exec), betSelect+` WHERE b.match_id = $1 ORDER BY b.user_id ASC`, matchID)
}

func (r *postgresBetRepository) ListFinished(ctx context.Context, exec SQLExecutor) ([]models.Bet, error) {
	return r.list(ctx, executor(r.db, exec), betSelect+` WHERE m.home_score IS NOT NULL ORDER BY b.user_id ASC, b.id ASC`)
}

func (r *postgresBetRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Bet, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	bets := make([]models.Bet, 0)
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet row: %w", err)
		}
		bets = append(bets, *bet)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bets, nil
}

func (r *postgresBetRepository) SetPoints(ctx context.Context, exec SQLExecutor, id, points int) error {
	result, err := executor(r.db, exec).ExecContext(ctx, `UPDATE bets SET points_awarded = $1 WHERE id = $2`, points, id)
	if err != nil {
		return fmt.Errorf("failed to set points of bet %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBetNotFound)
}
