package weatherkit

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// developerTokenTTL is how long each signed developer token stays valid
const developerTokenTTL = time.Hour

// developerTokenSource mints ES256 developer tokens for the WeatherKit REST API.
// It implements oauth2.TokenSource so the token can be cached by
// oauth2.ReuseTokenSource and attached by oauth2.Transport.
type developerTokenSource struct {
	teamID    string
	serviceID string
	keyID     string
	key       *ecdsa.PrivateKey
	now       func() time.Time
	mu        sync.Mutex
}

func newDeveloperTokenSource(teamID, serviceID, keyID string, key *ecdsa.PrivateKey) *developerTokenSource {
	return &developerTokenSource{
		teamID:    teamID,
		serviceID: serviceID,
		keyID:     keyID,
		key:       key,
		now:       time.Now,
	}
}

// Token implements oauth2.TokenSource interface.
func (s *developerTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuedAt := s.now()
	expiresAt := issuedAt.Add(developerTokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.RegisteredClaims{
		Issuer:    s.teamID,
		Subject:   s.serviceID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	token.Header["kid"] = s.keyID
	token.Header["id"] = s.teamID + "." + s.serviceID

	signed, err := token.SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign developer token: %w", err)
	}

	return &oauth2.Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		Expiry:      expiresAt,
	}, nil
}

// loadPrivateKey reads the .p8 key downloaded from the Apple developer portal
func loadPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", path, err)
	}

	key, err := jwt.ParseECPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", path, err)
	}

	return key, nil
}
