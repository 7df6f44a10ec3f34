package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MatthewBerasa/PEISS-APIs/internal/models"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	// ErrMemberUnchanged reports an add that found the user already present
	// or a remove that found the user absent.
	ErrMemberUnchanged = errors.New("device member set unchanged")
)

type DeviceRepository struct {
	pool *pgxpool.Pool
}

func NewDeviceRepository(pool *pgxpool.Pool) *DeviceRepository {
	return &DeviceRepository{pool: pool}
}

func (r *DeviceRepository) GetByID(ctx context.Context, id string) (models.Device, error) {
	const query = `
		SELECT id, alarm_enabled, notifications_enabled, alarm_sounding, connected_user_ids, created_at, updated_at
		FROM devices WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var device models.Device
	if err := row.Scan(
		&device.ID,
		&device.AlarmEnabled,
		&device.NotificationsEnabled,
		&device.AlarmSounding,
		&device.ConnectedUserIDs,
		&device.CreatedAt,
		&device.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Device{}, ErrDeviceNotFound
		}
		return models.Device{}, err
	}
	return device, nil
}

func (r *DeviceRepository) UpdateSettings(ctx context.Context, id string, alarmEnabled, notificationsEnabled bool) error {
	const query = `
		UPDATE devices
		SET alarm_enabled = $2, notifications_enabled = $3, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, alarmEnabled, notificationsEnabled)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) SetAlarmSounding(ctx context.Context, id string, sounding bool) error {
	const query = `
		UPDATE devices SET alarm_sounding = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, sounding)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// AddMember appends userID to the device's member set. The guard keeps the
// append idempotent at the document level, matching a $push behind an
// existence filter.
func (r *DeviceRepository) AddMember(ctx context.Context, id string, userID string) error {
	const query = `
		UPDATE devices
		SET connected_user_ids = array_append(connected_user_ids, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(connected_user_ids))
	`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMemberUnchanged
	}
	return nil
}

func (r *DeviceRepository) RemoveMember(ctx context.Context, id string, userID string) error {
	const query = `
		UPDATE devices
		SET connected_user_ids = array_remove(connected_user_ids, $2), updated_at = NOW()
		WHERE id = $1 AND $2 = ANY(connected_user_ids)
	`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMemberUnchanged
	}
	return nil
}
