package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/prediction-league/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserUsernameConflict = errors.New("user username conflict")
	ErrUserPhoneConflict    = errors.New("user phone conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, exec SQLExecutor) ([]models.User, error)
	// UpdateScores выставляет score всем пользователям: из scores, остальным 0.
	UpdateScores(ctx context.Context, exec SQLExecutor, scores map[int]int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func mapUserConstraint(err error) error {
	code, constraint, ok := asPQError(err)
	if !ok || code != pqUniqueViolation {
		return nil
	}
	switch constraint {
	case "users_username_key":
		return ErrUserUsernameConflict
	case "users_phone_key":
		return ErrUserPhoneConflict
	}
	return nil
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, phone, password_hash, is_superuser)
		VALUES ($1, $2, $3, $4)
		RETURNING id, score, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Phone,
		user.PasswordHash,
		user.IsSuperuser,
	).Scan(&user.ID, &user.Score, &user.CreatedAt)

	if err != nil {
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

const userSelect = `SELECT id, username, phone, password_hash, is_superuser, score, created_at FROM users`

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.scanUser(ctx, userSelect+` WHERE id = $1`, id)
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.scanUser(ctx, userSelect+` WHERE username = $1`, username)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			username = $1,
			phone = $2,
			password_hash = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Phone, user.PasswordHash, user.ID)
	if err != nil {
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) List(ctx context.Context, exec SQLExecutor) ([]models.User, error) {
	rows, err := executor(r.db, exec).QueryContext(ctx, userSelect+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresUserRepository) UpdateScores(ctx context.Context, exec SQLExecutor, scores map[int]int) error {
	ex := executor(r.db, exec)

	if _, err := ex.ExecContext(ctx, `UPDATE users SET score = 0`); err != nil {
		return fmt.Errorf("failed to reset scores: %w", err)
	}

	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if scores[id] == 0 {
			continue
		}
		if _, err := ex.ExecContext(ctx, `UPDATE users SET score = $1 WHERE id = $2`, scores[id], id); err != nil {
			return fmt.Errorf("failed to update score of user %d: %w", id, err)
		}
	}
	return nil
}

// scanUser - вспомогательный метод для сканирования одного пользователя
func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user, err := scanUserRow(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUserRow(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Phone,
		&user.PasswordHash,
		&user.IsSuperuser,
		&user.Score,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
