package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/cryptox"
)

// Subject is the token subject of the single gallery administrator.
const Subject = "admin"

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Authenticator checks the admin password and issues and verifies tokens.
type Authenticator struct {
	secret       []byte
	passwordHash string
	validity     time.Duration
	now          func() time.Time
}

func NewAuthenticator(secretKey, passwordHash string, validity time.Duration) *Authenticator {
	return &Authenticator{
		secret:       []byte(secretKey),
		passwordHash: passwordHash,
		validity:     validity,
		now:          time.Now,
	}
}

// Login verifies password and returns a fresh token.
func (a *Authenticator) Login(password []byte) (string, Identity, error) {
	if err := cryptox.CheckPassword(a.passwordHash, password); err != nil {
		return "", Identity{}, common.ErrUnauthorized
	}
	return a.IssueToken(Subject)
}

func (a *Authenticator) IssueToken(subject string) (string, Identity, error) {
	now := a.now()
	exp := now.Add(a.validity)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: Subject,
	})

	s, err := token.SignedString(a.secret)
	if err != nil {
		return "", Identity{}, err
	}
	return s, Identity{Subject: subject, ExpiresAt: exp.Truncate(time.Second)}, nil
}

// Verify parses and validates tokenString. Every failure, including expiry,
// wraps common.ErrInvalidToken.
func (a *Authenticator) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return Identity{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Role != Subject {
		return Identity{}, common.ErrInvalidToken
	}
	return Identity{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
