package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService handles JWT token creation and validation. Tokens are
// stateless HS256 bearer tokens; there is no server-side session store.
type TokenService struct {
	secretKey []byte

	// TokenDuration is the lifetime of issued tokens.
	TokenDuration time.Duration
}

// Claims represents the claims in our JWT tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewTokenService creates a new token service.
func NewTokenService(secretKey string) *TokenService {
	return &TokenService{
		secretKey:     []byte(secretKey),
		TokenDuration: 30 * 24 * time.Hour,
	}
}

// IssueToken creates a signed token for the given username.
func (ts *TokenService) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "bianca",
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtString, err := token.SignedString(ts.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}

	return jwtString, nil
}

// ValidateToken validates a token string and returns its claims.
func (ts *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
