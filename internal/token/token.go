package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL  = 1 * time.Hour
	RefreshTTL = 30 * 24 * time.Hour
)

// Issuer mints and validates the two bearer-token classes. Access and
// refresh tokens are signed with distinct secrets so one can never stand in
// for the other.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
}

func NewIssuer(accessSecret, refreshSecret, issuer string) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
	}
}

type Pair struct {
	AccessToken  string
	RefreshToken string
}

func (i *Issuer) IssueAccessToken(userID string) (string, error) {
	return i.sign(userID, i.accessSecret, AccessTTL)
}

func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	return i.sign(userID, i.refreshSecret, RefreshTTL)
}

func (i *Issuer) IssuePair(userID string) (Pair, error) {
	access, err := i.IssueAccessToken(userID)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.IssueRefreshToken(userID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ParseAccessToken returns the subject user id, or an error when the
// signature does not verify under the access secret or the token expired.
func (i *Issuer) ParseAccessToken(tokenStr string) (string, error) {
	return parse(tokenStr, i.accessSecret)
}

func (i *Issuer) ParseRefreshToken(tokenStr string) (string, error) {
	return parse(tokenStr, i.refreshSecret)
}

func parse(tokenStr string, secret []byte) (string, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("invalid token claims")
	}

	return claims.Subject, nil
}
