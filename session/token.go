package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"Gin_postgres_redis_asset_tool/cache"

	"github.com/golang-jwt/jwt/v5"
)

const (
	jtiKey     = "auth:jti"
	revokedKey = "auth:revoked"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the access token payload. The registered ID carries the
// numeric token id used as the denylist bit offset.
type Claims struct {
	UserID     uint   `json:"uid"`
	Type       string `json:"typ"`
	LocationID uint   `json:"loc"`
	jwt.RegisteredClaims
}

func (c *Claims) TokenID() (int64, error) {
	n, err := strconv.ParseInt(c.ID, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidToken
	}
	return n, nil
}

// TokenManager signs and verifies HS256 access tokens and keeps the
// revocation bitmap.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	gw     cache.Gateway
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, gw cache.Gateway) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, gw: gw, now: time.Now}
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the user with a fresh id from the cache counter.
func (m *TokenManager) Issue(ctx context.Context, userID uint, typ string, locationID uint) (string, *Claims, error) {
	jti, err := m.gw.Incr(ctx, jtiKey)
	if err != nil {
		return "", nil, fmt.Errorf("token id: %w", err)
	}
	now := m.now()
	claims := &Claims{
		UserID:     userID,
		Type:       typ,
		LocationID: locationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        strconv.FormatInt(jti, 10),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return s, claims, nil
}

// Parse verifies signature and expiry. It does not consult the denylist.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.TokenID(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *TokenManager) Revoke(ctx context.Context, c *Claims) error {
	jti, err := c.TokenID()
	if err != nil {
		return err
	}
	return m.gw.SetBit(ctx, revokedKey, jti, true)
}

func (m *TokenManager) Revoked(ctx context.Context, c *Claims) (bool, error) {
	jti, err := c.TokenID()
	if err != nil {
		return false, err
	}
	return m.gw.GetBit(ctx, revokedKey, jti)
}

// Verify is Parse plus the denylist check.
func (m *TokenManager) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	revoked, err := m.Revoked(ctx, claims)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	return claims, nil
}
