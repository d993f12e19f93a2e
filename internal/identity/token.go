package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "almanar"
	tokenAudience = "almanar-web"
)

// TokenClaims is the validated content of an access token.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	SessionID string
}

// TokenIssuer signs and parses HS256 bearer access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Sign produces a bearer token binding the user to a session ID.
func (ti *TokenIssuer) Sign(user *User, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"sid":   sessionID,
		"iat":   now.Unix(),
		"exp":   now.Add(ti.ttl).Unix(),
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(ti.secret)
}

// Parse validates a bearer token and extracts its claims.
func (ti *TokenIssuer) Parse(tokenStr string) (*TokenClaims, error) {
	t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !t.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, errors.New("invalid token subject")
	}
	email, _ := claims["email"].(string)
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, errors.New("token missing session")
	}
	return &TokenClaims{UserID: userID, Email: email, SessionID: sid}, nil
}
