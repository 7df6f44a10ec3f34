package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MatthewBerasa/PEISS-APIs/internal/models"
)

type ActivityLogRepository struct {
	pool *pgxpool.Pool
}

func NewActivityLogRepository(pool *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{pool: pool}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry models.ActivityLog) error {
	const query = `
		INSERT INTO activity_logs (id, device_id, image_url, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.pool.Exec(ctx, query, entry.ID, entry.DeviceID, entry.ImageURL)
	return err
}

func (r *ActivityLogRepository) ListByDevice(ctx context.Context, deviceID string) ([]models.ActivityLog, error) {
	const query = `
		SELECT id, device_id, image_url, created_at
		FROM activity_logs
		WHERE device_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ActivityLog
	for rows.Next() {
		var entry models.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.DeviceID,
			&entry.ImageURL,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
