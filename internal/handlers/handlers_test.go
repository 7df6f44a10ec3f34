package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/MatthewBerasa/PEISS-APIs/internal/config"
	"github.com/MatthewBerasa/PEISS-APIs/internal/mail"
	"github.com/MatthewBerasa/PEISS-APIs/internal/models"
	"github.com/MatthewBerasa/PEISS-APIs/internal/repository"
	"github.com/MatthewBerasa/PEISS-APIs/internal/security"
	"github.com/MatthewBerasa/PEISS-APIs/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memUserStore struct {
	users map[string]models.User
}

func (m *memUserStore) Create(_ context.Context, user models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *memUserStore) SetConnected(_ context.Context, id string, connected bool) error {
	user, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.IsConnected = connected
	m.users[id] = user
	return nil
}

type memDeviceStore struct {
	devices map[string]models.Device
}

func (m *memDeviceStore) GetByID(_ context.Context, id string) (models.Device, error) {
	device, ok := m.devices[id]
	if !ok {
		return models.Device{}, repository.ErrDeviceNotFound
	}
	return device, nil
}

func (m *memDeviceStore) UpdateSettings(_ context.Context, id string, alarmEnabled, notificationsEnabled bool) error {
	device, ok := m.devices[id]
	if !ok {
		return repository.ErrDeviceNotFound
	}
	device.AlarmEnabled = alarmEnabled
	device.NotificationsEnabled = notificationsEnabled
	m.devices[id] = device
	return nil
}

func (m *memDeviceStore) SetAlarmSounding(_ context.Context, id string, sounding bool) error {
	device, ok := m.devices[id]
	if !ok {
		return repository.ErrDeviceNotFound
	}
	device.AlarmSounding = sounding
	m.devices[id] = device
	return nil
}

func (m *memDeviceStore) AddMember(_ context.Context, id string, userID string) error {
	device, ok := m.devices[id]
	if !ok {
		return repository.ErrDeviceNotFound
	}
	if device.HasMember(userID) {
		return repository.ErrMemberUnchanged
	}
	device.ConnectedUserIDs = append(device.ConnectedUserIDs, userID)
	m.devices[id] = device
	return nil
}

func (m *memDeviceStore) RemoveMember(_ context.Context, id string, userID string) error {
	device, ok := m.devices[id]
	if !ok {
		return repository.ErrDeviceNotFound
	}
	if !device.HasMember(userID) {
		return repository.ErrMemberUnchanged
	}
	var members []string
	for _, member := range device.ConnectedUserIDs {
		if member != userID {
			members = append(members, member)
		}
	}
	device.ConnectedUserIDs = members
	m.devices[id] = device
	return nil
}

type memActivityStore struct {
	entries []models.ActivityLog
}

func (m *memActivityStore) Create(_ context.Context, entry models.ActivityLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memActivityStore) ListByDevice(_ context.Context, deviceID string) ([]models.ActivityLog, error) {
	var out []models.ActivityLog
	for _, entry := range m.entries {
		if entry.DeviceID == deviceID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type memImageStore struct{}

func (memImageStore) PutImage(_ context.Context, objectKey string, _ []byte, _ string) (string, error) {
	return "https://cdn.example.com/" + objectKey, nil
}

type memMailer struct {
	sent []mail.Message
}

func (m *memMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type testEnv struct {
	engine  *gin.Engine
	users   *memUserStore
	devices *memDeviceStore
	issuer  *security.TokenIssuer
}

func newTestEnv() *testEnv {
	cfg := &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTAccessSecret:  "access-secret",
			JWTRefreshSecret: "refresh-secret",
			JWTAccessTTL:     time.Hour,
			JWTRefreshTTL:    365 * 24 * time.Hour,
			BcryptCost:       bcrypt.MinCost,
			OpTimeout:        5 * time.Second,
		},
	}

	users := &memUserStore{users: make(map[string]models.User)}
	devices := &memDeviceStore{devices: make(map[string]models.Device)}
	activity := &memActivityStore{}
	logger := zerolog.Nop()

	issuer := security.NewTokenIssuer(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.JWTAccessTTL,
		cfg.Security.JWTRefreshTTL,
	)

	h := HandlerSet{
		log:      logger,
		cfg:      cfg,
		issuer:   issuer,
		sessions: service.NewSessionService(users, devices, issuer, &memMailer{}, nil, cfg, logger),
		devices:  service.NewDeviceService(devices, cfg, logger),
		activity: service.NewActivityService(devices, activity, memImageStore{}, cfg, logger),
	}

	engine := gin.New()
	h.Mount(engine.Group("/api"))

	return &testEnv{
		engine:  engine,
		users:   users,
		devices: devices,
		issuer:  issuer,
	}
}

func (e *testEnv) seedUser(email, password string) models.User {
	hash, err := security.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	user := models.User{ID: "user-" + email, Email: email, PasswordHash: hash}
	e.users.users[user.ID] = user
	return user
}

func (e *testEnv) seedDevice(device models.Device) models.Device {
	e.devices.devices[device.ID] = device
	return device
}
