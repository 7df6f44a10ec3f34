package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MatthewBerasa/PEISS-APIs/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, is_connected, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.IsConnected,
	)
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT id, email, password_hash, is_connected, created_at, updated_at
		FROM users WHERE email = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `
		SELECT id, email, password_hash, is_connected, created_at, updated_at
		FROM users WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) SetConnected(ctx context.Context, id string, connected bool) error {
	const query = `
		UPDATE users SET is_connected = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, connected)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SyncConnectionFlags repairs users whose is_connected flag disagrees with
// device membership. Membership is authoritative: the flag and the member set
// are written in separate steps and can diverge when the second step fails.
func (r *UserRepository) SyncConnectionFlags(ctx context.Context) (int64, error) {
	const clearQuery = `
		UPDATE users SET is_connected = FALSE, updated_at = NOW()
		WHERE is_connected = TRUE
		  AND id NOT IN (SELECT unnest(connected_user_ids) FROM devices)
	`
	const setQuery = `
		UPDATE users SET is_connected = TRUE, updated_at = NOW()
		WHERE is_connected = FALSE
		  AND id IN (SELECT unnest(connected_user_ids) FROM devices)
	`

	cleared, err := r.pool.Exec(ctx, clearQuery)
	if err != nil {
		return 0, err
	}
	set, err := r.pool.Exec(ctx, setQuery)
	if err != nil {
		return cleared.RowsAffected(), err
	}
	return cleared.RowsAffected() + set.RowsAffected(), nil
}

func (r *UserRepository) scanOne(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsConnected,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
