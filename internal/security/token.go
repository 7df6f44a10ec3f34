package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClass selects which signing secret a token is bound to. Access and
// refresh tokens are otherwise identical envelopes over UserInfo.
type TokenClass string

const (
	TokenClassAccess  TokenClass = "access"
	TokenClassRefresh TokenClass = "refresh"
)

var (
	// ErrTokenExpired means the signature checked out but the validity
	// window has passed; callers should prompt a refresh.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure: bad
	// signature, wrong class, truncated or corrupted input.
	ErrTokenInvalid = errors.New("token invalid")
)

// UserInfo is the payload carried by both token classes. IsConnected is a
// snapshot at issuance time, not a live flag.
type UserInfo struct {
	UserID      string `json:"userID"`
	IsConnected bool   `json:"isConnected"`
}

type userClaims struct {
	UserInfo UserInfo `json:"userInfo"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (t *TokenIssuer) IssueAccess(info UserInfo) (string, error) {
	return t.issue(info, t.accessSecret, t.accessTTL)
}

func (t *TokenIssuer) IssueRefresh(info UserInfo) (string, error) {
	return t.issue(info, t.refreshSecret, t.refreshTTL)
}

func (t *TokenIssuer) issue(info UserInfo, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := userClaims{
		UserInfo: info,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   info.UserID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Verify checks a token against the given class's secret. The three outcomes
// are (payload, nil), (zero, ErrTokenExpired) and (zero, ErrTokenInvalid);
// callers must treat the last two differently.
func (t *TokenIssuer) Verify(tokenStr string, class TokenClass) (UserInfo, error) {
	secret := t.accessSecret
	if class == TokenClassRefresh {
		secret = t.refreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenStr, &userClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return UserInfo{}, ErrTokenExpired
		}
		return UserInfo{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*userClaims)
	if !ok || !token.Valid {
		return UserInfo{}, ErrTokenInvalid
	}
	return claims.UserInfo, nil
}

// RefreshAccess validates a refresh token and mints a new access token
// carrying the same payload. The refresh token is not rotated; there is no
// revocation list.
func (t *TokenIssuer) RefreshAccess(refreshToken string) (string, error) {
	info, err := t.Verify(refreshToken, TokenClassRefresh)
	if err != nil {
		return "", err
	}
	return t.IssueAccess(info)
}
