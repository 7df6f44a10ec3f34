package service

import (
	"context"
	"errors"
	"sync"

	"github.com/MatthewBerasa/PEISS-APIs/internal/mail"
	"github.com/MatthewBerasa/PEISS-APIs/internal/models"
	"github.com/MatthewBerasa/PEISS-APIs/internal/repository"
)

type fakeUserStore struct {
	mu               sync.Mutex
	users            map[string]models.User
	failSetConnected bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) SetConnected(_ context.Context, id string, connected bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSetConnected {
		return errors.New("write failed")
	}
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.IsConnected = connected
	f.users[id] = user
	return nil
}

type fakeDeviceStore struct {
	mu            sync.Mutex
	devices       map[string]models.Device
	failAddMember bool
}

func newFakeDeviceStore() *fakeDeviceStore {
	return &fakeDeviceStore{devices: make(map[string]models.Device)}
}

func (f *fakeDeviceStore) put(device models.Device) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices[device.ID] = device
}

func (f *fakeDeviceStore) GetByID(_ context.Context, id string) (models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	device, ok := f.devices[id]
	if !ok {
		return models.Device{}, repository.ErrDeviceNotFound
	}
	return device, nil
}

func (f *fakeDeviceStore) UpdateSettings(_ context.Context, id string, alarmEnabled, notificationsEnabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	device, ok := f.devices[id]
	if !ok {
		return repository.ErrDeviceNotFound
	}
	device.AlarmEnabled = alarmEnabled
	device.NotificationsEnabled = notificationsEnabled
	f.devices[id] = device
	return nil
}

func (f *fakeDeviceStore) SetAlarmSounding(_ context.Context, id string, sounding bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	device, ok := f.devices[id]
	if !ok {
		return repository.ErrDeviceNotFound
	}
	device.AlarmSounding = sounding
	f.devices[id] = device
	return nil
}

func (f *fakeDeviceStore) AddMember(_ context.Context, id string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAddMember {
		return errors.New("write failed")
	}
	device, ok := f.devices[id]
	if !ok {
		return repository.ErrDeviceNotFound
	}
	if device.HasMember(userID) {
		return repository.ErrMemberUnchanged
	}
	device.ConnectedUserIDs = append(device.ConnectedUserIDs, userID)
	f.devices[id] = device
	return nil
}

func (f *fakeDeviceStore) RemoveMember(_ context.Context, id string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	device, ok := f.devices[id]
	if !ok {
		return repository.ErrDeviceNotFound
	}
	if !device.HasMember(userID) {
		return repository.ErrMemberUnchanged
	}
	members := device.ConnectedUserIDs[:0:0]
	for _, member := range device.ConnectedUserIDs {
		if member != userID {
			members = append(members, member)
		}
	}
	device.ConnectedUserIDs = members
	f.devices[id] = device
	return nil
}

type fakeActivityStore struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (f *fakeActivityStore) Create(_ context.Context, entry models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeActivityStore) ListByDevice(_ context.Context, deviceID string) ([]models.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ActivityLog
	for _, entry := range f.entries {
		if entry.DeviceID == deviceID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeImageStore struct {
	lastKey string
}

func (f *fakeImageStore) PutImage(_ context.Context, objectKey string, _ []byte, _ string) (string, error) {
	f.lastKey = objectKey
	return "https://cdn.example.com/" + objectKey, nil
}

type fakeMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	fail     bool
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.messages = append(f.messages, msg)
	return nil
}
