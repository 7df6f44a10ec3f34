package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/MatthewBerasa/PEISS-APIs/internal/config"
	"github.com/MatthewBerasa/PEISS-APIs/internal/repository"
)

// DeviceService covers the per-device configuration reads and writes: the
// alarm/notification settings pair and the sounding flag.
type DeviceService struct {
	devices DeviceStore
	cfg     *config.AppConfig
	log     zerolog.Logger
}

func NewDeviceService(devices DeviceStore, cfg *config.AppConfig, log zerolog.Logger) *DeviceService {
	return &DeviceService{
		devices: devices,
		cfg:     cfg,
		log:     log,
	}
}

type DeviceSettings struct {
	AlarmEnabled         bool
	NotificationsEnabled bool
}

func (s *DeviceService) GetSettings(ctx context.Context, deviceID string) (DeviceSettings, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if deviceID == "" {
		return DeviceSettings{}, ErrMissingFields
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return DeviceSettings{}, ErrDeviceNotFound
		}
		return DeviceSettings{}, err
	}

	return DeviceSettings{
		AlarmEnabled:         device.AlarmEnabled,
		NotificationsEnabled: device.NotificationsEnabled,
	}, nil
}

func (s *DeviceService) UpdateSettings(ctx context.Context, deviceID string, settings DeviceSettings) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if deviceID == "" {
		return ErrMissingFields
	}

	err := s.devices.UpdateSettings(ctx, deviceID, settings.AlarmEnabled, settings.NotificationsEnabled)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return ErrDeviceNotFound
		}
		return err
	}

	s.log.Info().
		Str("device_id", deviceID).
		Bool("alarm", settings.AlarmEnabled).
		Bool("notifications", settings.NotificationsEnabled).
		Msg("device settings updated")
	return nil
}

type AlarmState struct {
	AlarmSounding bool
	AlarmEnabled  bool
}

func (s *DeviceService) GetAlarmState(ctx context.Context, deviceID string) (AlarmState, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if deviceID == "" {
		return AlarmState{}, ErrMissingFields
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return AlarmState{}, ErrDeviceNotFound
		}
		return AlarmState{}, err
	}

	return AlarmState{
		AlarmSounding: device.AlarmSounding,
		AlarmEnabled:  device.AlarmEnabled,
	}, nil
}

func (s *DeviceService) SetAlarmState(ctx context.Context, deviceID string, sounding bool) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if deviceID == "" {
		return ErrMissingFields
	}

	err := s.devices.SetAlarmSounding(ctx, deviceID, sounding)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return ErrDeviceNotFound
		}
		return err
	}

	s.log.Info().Str("device_id", deviceID).Bool("sounding", sounding).Msg("alarm state updated")
	return nil
}

func (s *DeviceService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Security.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Security.OpTimeout)
}
