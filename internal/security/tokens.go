package security

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chat-server/backend/internal/identity/domain"
)

const (
	// TokenIssuer is the iss claim set on every token and required on verification.
	TokenIssuer = "chat-server"
	// TokenAudience is the aud claim set on every token and required on verification.
	TokenAudience = "chat-web"
	// TokenTTL is the validity window of a token from the moment it is signed.
	TokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for every verification failure: bad signature, wrong algorithm,
// issuer or audience mismatch, missing or past expiry, malformed input. Callers cannot tell them apart.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload: registered claims plus the identity flattened alongside them.
type Claims struct {
	jwt.RegisteredClaims
	domain.Identity
}

// TokenProvider signs and verifies EdDSA tokens with a fixed issuer and audience.
// It holds only immutable key material and is safe for concurrent use.
type TokenProvider struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	issuer     string
	audience   string
	ttl        time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// NewTokenProvider returns a TokenProvider that signs with privateKey and verifies with publicKey.
// privateKey may be nil for verify-only processes.
func NewTokenProvider(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey) *TokenProvider {
	return newTokenProvider(privateKey, publicKey, TokenIssuer, TokenAudience, time.Now)
}

func newTokenProvider(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, issuer, audience string, now func() time.Time) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		ttl:        TokenTTL,
		now:        now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
			jwt.WithIssuer(TokenIssuer),
			jwt.WithAudience(TokenAudience),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// LoadTokenProvider parses the signing and verifying keys (inline PEM or file paths) and
// returns a provider. Errors are ErrInvalidKey.
func LoadTokenProvider(privatePEM, publicPEM string) (*TokenProvider, error) {
	priv, err := ParseSigningKey(privatePEM)
	if err != nil {
		return nil, err
	}
	pub, err := ParseVerifyingKey(publicPEM)
	if err != nil {
		return nil, err
	}
	return NewTokenProvider(priv, pub), nil
}

// Sign issues a token whose custom claims are id. Returns the token and its expiry.
func (p *TokenProvider) Sign(id domain.Identity) (string, time.Time, error) {
	if p.privateKey == nil {
		return "", time.Time{}, ErrInvalidKey
	}
	now := p.now().UTC()
	expiresAt := now.Add(p.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Identity: id,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(p.privateKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks signature, algorithm, issuer, audience, and expiry, and returns the embedded identity.
func (p *TokenProvider) Verify(tokenString string) (domain.Identity, error) {
	claims := &Claims{}
	token, err := p.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return p.publicKey, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	return claims.Identity, nil
}
