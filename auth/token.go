package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidIssuer    = errors.New("invalid issuer")
)

// Claims carried by a bearer token.
type Claims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// IssueToken signs a short-lived HS256 token for subject.
func (g *Gate) IssueToken(subject string) (string, time.Time, error) {
	now := g.now()
	expires := now.Add(g.tokenTTL)
	claims := Claims{
		Issuer:    g.issuer,
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: expires.Unix(),
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: g.signingKey}, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create signer: %w", err)
	}

	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create JWT: %w", err)
	}
	return token, expires, nil
}

// VerifyToken checks signature, issuer and expiry of a bearer token.
func (g *Gate) VerifyToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	tok, err := jwt.ParseSigned(tokenString, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &Claims{}
	if err := tok.Claims(g.signingKey, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	now := g.now().Unix()
	if claims.ExpiresAt == 0 || claims.ExpiresAt < now {
		return nil, ErrTokenExpired
	}
	if claims.IssuedAt > now {
		return nil, ErrTokenNotYetValid
	}
	if claims.Issuer != g.issuer {
		return nil, fmt.Errorf("%w: expected '%s', got '%s'", ErrInvalidIssuer, g.issuer, claims.Issuer)
	}
	return claims, nil
}
