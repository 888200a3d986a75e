package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
)

var (
	ErrStageNotFound     = errors.New("stage not found")
	ErrStageNameConflict = errors.New("stage name conflict")
)

type StageRepository interface {
	Create(ctx context.Context, stage *models.Stage) error
	GetByID(ctx context.Context, id int) (*models.Stage, error)
	List(ctx context.Context) ([]models.Stage, error)
	Update(ctx context.Context, stage *models.Stage) error
	Delete(ctx context.Context, id int) error
	HasMatches(ctx context.Context, id int) (bool, error)
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) Create(ctx context.Context, stage *models.Stage) error {
	query := `
		INSERT INTO stages (name, date)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, stage.Name, stage.Date).Scan(&stage.ID, &stage.CreatedAt)
	if err != nil {
		if code, constraint, ok := asPQError(err); ok && code == pqUniqueViolation && constraint == "stages_name_key" {
			return ErrStageNameConflict
		}
		return fmt.Errorf("failed to insert stage: %w", err)
	}
	return nil
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	query := `SELECT id, name, date, created_at FROM stages WHERE id = $1`

	stage, err := scanStage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan stage %d: %w", id, err)
	}
	return stage, nil
}

func (r *postgresStageRepository) List(ctx context.Context) ([]models.Stage, error) {
	query := `SELECT id, name, date, created_at FROM stages ORDER BY date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	stages := make([]models.Stage, 0)
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage row: %w", err)
		}
		stages = append(stages, *stage)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return stages, nil
}

func (r *postgresStageRepository) Update(ctx context.Context, stage *models.Stage) error {
	query := `UPDATE stages SET name = $1, date = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, stage.Name, stage.Date, stage.ID)
	if err != nil {
		if code, constraint, ok := asPQError(err); ok && code == pqUniqueViolation && constraint == "stages_name_key" {
			return ErrStageNameConflict
		}
		return fmt.Errorf("failed to update stage %d: %w", stage.ID, err)
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stage %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) HasMatches(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM matches WHERE stage_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check matches of stage %d: %w", id, err)
	}
	return exists, nil
}

func scanStage(row rowScanner) (*models.Stage, error) {
	var s models.Stage
	if err := row.Scan(&s.ID, &s.Name, &s.Date, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
