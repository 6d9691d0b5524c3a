package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
)

var (
	// ErrInvalidToken indicates the token failed signature or claim validation.
	ErrInvalidToken = errors.New("jwt: invalid token")
	// ErrExpiredToken indicates the token was valid but has expired.
	ErrExpiredToken = errors.New("jwt: token expired")
)

const (
	defaultPrincipalTokenTTL = 30 * time.Minute
	minSecretLength          = 32
)

// PrincipalClaims carries the materialized RBAC claims of a principal.
type PrincipalClaims struct {
	UserID        string   `json:"uid"`
	Username      string   `json:"name,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	Permissions   []string `json:"perms,omitempty"`
	GlobalVersion int64    `json:"cv"`
	UserVersion   int64    `json:"uv"`
	jwt.RegisteredClaims
}

// JWTOptions configures the HMAC codec.
type JWTOptions struct {
	Secret   string
	Issuer   string
	Audience []string
	TTL      time.Duration
	Now      func() time.Time
}

// JWTManager encodes principals as HS256 tokens.
type JWTManager struct {
	secret   []byte
	issuer   string
	audience []string
	ttl      time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewJWTManager validates options and constructs the codec.
func NewJWTManager(opts JWTOptions) (*JWTManager, error) {
	secret := strings.TrimSpace(opts.Secret)
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt: secret must be at least %d characters", minSecretLength)
	}
	issuer := strings.TrimSpace(opts.Issuer)
	if issuer == "" {
		return nil, fmt.Errorf("jwt: issuer is required")
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultPrincipalTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(now),
	}
	if len(opts.Audience) > 0 {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience[0]))
	}

	return &JWTManager{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: opts.Audience,
		ttl:      ttl,
		now:      now,
		parser:   jwt.NewParser(parserOpts...),
	}, nil
}

// Encode signs the principal. IssuedAt and ExpiresAt are set from the clock.
func (m *JWTManager) Encode(principal domain.Principal) (string, error) {
	userID := strings.TrimSpace(principal.UserID)
	if userID == "" {
		return "", fmt.Errorf("jwt: user id is required")
	}

	issuedAt := m.now().UTC()
	claims := &PrincipalClaims{
		UserID:        userID,
		Username:      principal.Username,
		Roles:         normalizeClaims(principal.Roles),
		Permissions:   normalizeClaims(principal.Permissions),
		GlobalVersion: principal.Stamp.Global,
		UserVersion:   principal.Stamp.User,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			Audience:  m.audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token and returns the principal it carries.
func (m *JWTManager) Decode(token string) (*domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &PrincipalClaims{}
	_, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrInvalidToken)
	}

	principal := &domain.Principal{
		UserID:      claims.UserID,
		Username:    claims.Username,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
		Stamp: domain.ClaimsStamp{
			Global: claims.GlobalVersion,
			User:   claims.UserVersion,
		},
	}
	if claims.IssuedAt != nil {
		principal.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

func normalizeClaims(input []string) []string {
	if len(input) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, value := range input {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

var _ port.TokenCodec = (*JWTManager)(nil)
