package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET not set")
	ErrInvalidToken  = errors.New("invalid token")
)

// claims carried by the account backend's access tokens; the subject is
// the account id
type Claims struct {
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

// server-controlled metadata the backend embeds in every token
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

func (c *Claims) UserID() string {
	return c.Subject
}

func (c *Claims) IsAdmin() bool {
	return c.AppMetadata.Role == "admin"
}

// validates HS256 tokens signed with the backend's shared secret
type Verifier struct {
	secret []byte
}

// creates a new verifier
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	return &Verifier{secret: []byte(secret)}, nil
}

// creates a JWT token for the account, as the backend would
func (v *Verifier) Generate(userID, email string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	if isAdmin {
		claims.AppMetadata.Role = "admin"
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// validates a JWT token and returns the claims
func (v *Verifier) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return v.secret, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
