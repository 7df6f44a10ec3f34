package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/MatthewBerasa/PEISS-APIs/internal/config"
	"github.com/MatthewBerasa/PEISS-APIs/internal/ids"
	"github.com/MatthewBerasa/PEISS-APIs/internal/models"
	"github.com/MatthewBerasa/PEISS-APIs/internal/repository"
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// ActivityService appends and lists per-device activity entries. Timestamps
// are set at write time by the store; client-supplied times are never trusted.
type ActivityService struct {
	devices  DeviceStore
	activity ActivityStore
	images   ImageStore
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewActivityService(devices DeviceStore, activity ActivityStore, images ImageStore, cfg *config.AppConfig, log zerolog.Logger) *ActivityService {
	return &ActivityService{
		devices:  devices,
		activity: activity,
		images:   images,
		cfg:      cfg,
		log:      log,
	}
}

type AppendInput struct {
	DeviceID string
	Image    []byte
}

// Append records an activity entry, uploading the optional snapshot first.
// Only jpeg and png payloads are accepted; the type is sniffed from content,
// not taken from the request header.
func (s *ActivityService) Append(ctx context.Context, input AppendInput) (*string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if input.DeviceID == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.devices.GetByID(ctx, input.DeviceID); err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	entry := models.ActivityLog{
		ID:       ids.New(),
		DeviceID: input.DeviceID,
	}

	if len(input.Image) > 0 {
		contentType := http.DetectContentType(input.Image)
		ext, ok := imageExtensions[contentType]
		if !ok {
			return nil, ErrUnsupportedImage
		}

		objectKey := fmt.Sprintf("activity/%s/%s.%s", input.DeviceID, entry.ID, ext)
		url, err := s.images.PutImage(ctx, objectKey, input.Image, contentType)
		if err != nil {
			return nil, fmt.Errorf("upload activity image: %w", err)
		}
		entry.ImageURL = &url
	}

	if err := s.activity.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("device_id", input.DeviceID).
		Str("log_id", entry.ID).
		Bool("has_image", entry.ImageURL != nil).
		Msg("activity log appended")
	return entry.ImageURL, nil
}

// List returns the device's entries, newest first. An existing device with no
// entries yields an empty list; only an unknown device is a not-found.
func (s *ActivityService) List(ctx context.Context, deviceID string) ([]models.ActivityLog, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if deviceID == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.devices.GetByID(ctx, deviceID); err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	entries, err := s.activity.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.ActivityLog{}
	}
	return entries, nil
}

func (s *ActivityService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Security.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Security.OpTimeout)
}
