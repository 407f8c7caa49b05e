package security

import (
	"crypto/ed25519"
	"crypto/rand"
	"time"
)

// NewTestTokenProvider returns a TokenProvider backed by a freshly generated Ed25519 keypair.
// The keys round-trip through PEM so the same loaders as production are exercised.
// For unit tests only.
func NewTestTokenProvider() (*TokenProvider, error) {
	privPEM, pubPEM, err := GenerateTestKeyPEM()
	if err != nil {
		return nil, err
	}
	return LoadTokenProvider(string(privPEM), string(pubPEM))
}

// GenerateTestKeyPEM returns a new Ed25519 keypair encoded as PKCS#8 and PKIX PEM.
// For unit tests only.
func GenerateTestKeyPEM() (privatePEM, publicPEM []byte, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	privatePEM, err = EncodeSigningKey(priv)
	if err != nil {
		return nil, nil, err
	}
	publicPEM, err = EncodeVerifyingKey(pub)
	if err != nil {
		return nil, nil, err
	}
	return privatePEM, publicPEM, nil
}

// WithClock returns a copy of p that stamps tokens using now. Verification still uses wall time.
// For unit tests only.
func (p *TokenProvider) WithClock(now func() time.Time) *TokenProvider {
	return newTokenProvider(p.privateKey, p.publicKey, p.issuer, p.audience, now)
}

// WithBinding returns a copy of p that signs tokens with the given issuer and audience.
// Verification still requires TokenIssuer and TokenAudience. For unit tests only.
func (p *TokenProvider) WithBinding(issuer, audience string) *TokenProvider {
	return newTokenProvider(p.privateKey, p.publicKey, issuer, audience, p.now)
}
