package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MatthewBerasa/PEISS-APIs/internal/config"
	"github.com/MatthewBerasa/PEISS-APIs/internal/ids"
	"github.com/MatthewBerasa/PEISS-APIs/internal/mail"
	"github.com/MatthewBerasa/PEISS-APIs/internal/models"
	"github.com/MatthewBerasa/PEISS-APIs/internal/repository"
	"github.com/MatthewBerasa/PEISS-APIs/internal/security"
)

// SessionService implements the account and device-connection operations:
// credential verification, token issuance and refresh, and the two-step
// connect/disconnect protocol across the users and devices collections.
type SessionService struct {
	users   UserStore
	devices DeviceStore
	issuer  *security.TokenIssuer
	mailer  Mailer
	cache   *redis.Client
	cfg     *config.AppConfig
	log     zerolog.Logger
}

func NewSessionService(
	users UserStore,
	devices DeviceStore,
	issuer *security.TokenIssuer,
	mailer Mailer,
	cache *redis.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		users:   users,
		devices: devices,
		issuer:  issuer,
		mailer:  mailer,
		cache:   cache,
		cfg:     cfg,
		log:     log,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

func (s *SessionService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	// Emails are stored and matched case-sensitively.
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" || input.Password == "" {
		return AuthResult{}, ErrMissingFields
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(input.Password, s.cfg.Security.BcryptCost)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		IsConnected:  false,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.issueTokens(user)
}

type LoginInput struct {
	Email    string
	Password string
}

// Login returns ErrInvalidCredentials uniformly whether the email is unknown
// or the password mismatches, so callers cannot enumerate accounts.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" || input.Password == "" {
		return AuthResult{}, ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RequestVerification emits a short confirmation code for an address that is
// not registered yet. The code is emailed and echoed to the caller; it is not
// persisted, the client round-trips it back during sign-up.
func (s *SessionService) RequestVerification(ctx context.Context, email string) (string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrMissingFields
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return "", err
	}

	if err := s.checkVerifyRate(ctx, email); err != nil {
		return "", err
	}

	code, err := security.NewVerificationCode()
	if err != nil {
		return "", err
	}

	msg := mail.Message{
		To:      email,
		Subject: "Your PEISS verification code",
		Text:    fmt.Sprintf("Your verification code is %s.", code),
		HTML:    fmt.Sprintf("<p>Your verification code is <strong>%s</strong>.</p>", code),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("dispatch verification code: %w", err)
	}

	return code, nil
}

func (s *SessionService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", ErrMissingFields
	}
	return s.issuer.RefreshAccess(refreshToken)
}

func (s *SessionService) CheckConnection(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if userID == "" {
		return false, ErrMissingFields
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return user.IsConnected, nil
}

// ConnectDevice runs the two-step protocol: flag first, membership second.
// The steps hit different rows with no shared transaction; when the second
// step fails the first stays committed and the caller receives a
// *PartialApplyError naming the failed step.
func (s *SessionService) ConnectDevice(ctx context.Context, deviceID, userID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if deviceID == "" || userID == "" {
		return ErrMissingFields
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return ErrDeviceNotFound
		}
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if device.HasMember(userID) {
		return ErrAlreadyConnected
	}

	if err := s.users.SetConnected(ctx, userID, true); err != nil {
		return fmt.Errorf("set connection flag: %w", err)
	}

	if err := s.devices.AddMember(ctx, deviceID, userID); err != nil {
		s.log.Error().Err(err).
			Str("device_id", deviceID).
			Str("user_id", userID).
			Msg("connect left user flag set without device membership")
		return &PartialApplyError{Step: "device membership", Err: err}
	}

	s.log.Info().Str("device_id", deviceID).Str("user_id", userID).Msg("user connected to system")
	return nil
}

// DisconnectDevice is the inverse protocol: membership first, flag second.
func (s *SessionService) DisconnectDevice(ctx context.Context, deviceID, userID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if deviceID == "" || userID == "" {
		return ErrMissingFields
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return ErrDeviceNotFound
		}
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !device.HasMember(userID) {
		return ErrNotConnected
	}

	if err := s.devices.RemoveMember(ctx, deviceID, userID); err != nil {
		return fmt.Errorf("remove device membership: %w", err)
	}

	if err := s.users.SetConnected(ctx, userID, false); err != nil {
		s.log.Error().Err(err).
			Str("device_id", deviceID).
			Str("user_id", userID).
			Msg("disconnect removed membership but left user flag set")
		return &PartialApplyError{Step: "connection flag", Err: err}
	}

	s.log.Info().Str("device_id", deviceID).Str("user_id", userID).Msg("user disconnected from system")
	return nil
}

func (s *SessionService) issueTokens(user models.User) (AuthResult, error) {
	info := security.UserInfo{
		UserID:      user.ID,
		IsConnected: user.IsConnected,
	}

	accessToken, err := s.issuer.IssueAccess(info)
	if err != nil {
		return AuthResult{}, err
	}
	refreshToken, err := s.issuer.IssueRefresh(info)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
	}, nil
}

// checkVerifyRate bounds how often codes can be requested for one address.
// Without redis the limit is simply not enforced.
func (s *SessionService) checkVerifyRate(ctx context.Context, email string) error {
	if s.cache == nil || s.cfg.Jobs.VerifyRateLimit <= 0 {
		return nil
	}

	key := "peiss:verify:" + email
	count, err := s.cache.Incr(ctx, key).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("verification rate check unavailable")
		return nil
	}
	if count == 1 {
		s.cache.Expire(ctx, key, s.cfg.Jobs.VerifyRateWindow)
	}
	if count > int64(s.cfg.Jobs.VerifyRateLimit) {
		return ErrRateLimited
	}
	return nil
}

func (s *SessionService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Security.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Security.OpTimeout)
}
