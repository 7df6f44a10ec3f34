package service

import (
	"context"

	"github.com/MatthewBerasa/PEISS-APIs/internal/mail"
	"github.com/MatthewBerasa/PEISS-APIs/internal/models"
)

// Store interfaces are satisfied by the pgx repositories; tests substitute
// in-memory fakes. Implementations report absence with the repository
// sentinels (repository.ErrUserNotFound and friends).

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	SetConnected(ctx context.Context, id string, connected bool) error
}

type DeviceStore interface {
	GetByID(ctx context.Context, id string) (models.Device, error)
	UpdateSettings(ctx context.Context, id string, alarmEnabled, notificationsEnabled bool) error
	SetAlarmSounding(ctx context.Context, id string, sounding bool) error
	AddMember(ctx context.Context, id string, userID string) error
	RemoveMember(ctx context.Context, id string, userID string) error
}

type ActivityStore interface {
	Create(ctx context.Context, entry models.ActivityLog) error
	ListByDevice(ctx context.Context, deviceID string) ([]models.ActivityLog, error)
}

type ImageStore interface {
	PutImage(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}
