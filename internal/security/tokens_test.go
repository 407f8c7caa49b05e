package security

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chat-server/backend/internal/identity/domain"
)

var testIdentity = domain.Identity{ID: 1, WorkspaceID: 1, FullName: "Arjun", Email: "arjun@gmail.com"}

func TestTokenProvider_SignAndVerify(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, exp, err := p.Sign(testIdentity)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if token == "" {
		t.Fatal("token empty")
	}
	wantExp := time.Now().Add(TokenTTL)
	if exp.Before(wantExp.Add(-time.Minute)) || exp.After(wantExp.Add(time.Minute)) {
		t.Errorf("expires at %v, want about %v", exp, wantExp)
	}

	got, err := p.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != testIdentity {
		t.Errorf("Verify: got %+v, want %+v", got, testIdentity)
	}
}

func TestTokenProvider_ClaimsCarryIssuerAndAudience(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.Sign(testIdentity)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if claims.Issuer != TokenIssuer {
		t.Errorf("iss = %q, want %q", claims.Issuer, TokenIssuer)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != TokenAudience {
		t.Errorf("aud = %v, want [%q]", claims.Audience, TokenAudience)
	}
	if claims.Email != testIdentity.Email || claims.WorkspaceID != testIdentity.WorkspaceID {
		t.Errorf("custom claims = %+v, want %+v", claims.Identity, testIdentity)
	}
}

func TestTokenProvider_VerifyInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	for _, s := range []string{"", "invalid-token", "a.b.c"} {
		if _, err := p.Verify(s); err != ErrInvalidToken {
			t.Errorf("Verify(%q): want ErrInvalidToken, got %v", s, err)
		}
	}
}

func TestTokenProvider_VerifyExpired(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	past := p.WithClock(func() time.Time { return time.Now().Add(-TokenTTL - time.Hour) })
	token, exp, err := past.Sign(testIdentity)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !exp.Before(time.Now()) {
		t.Fatalf("test setup: expiry %v is not in the past", exp)
	}
	if _, err := p.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify expired: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_VerifyWrongIssuerOrAudience(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	testCases := []struct {
		name     string
		issuer   string
		audience string
	}{
		{"wrong issuer", "other-server", TokenAudience},
		{"wrong audience", TokenIssuer, "other-web"},
		{"both wrong", "other-server", "other-web"},
		{"empty issuer", "", TokenAudience},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, _, err := p.WithBinding(tc.issuer, tc.audience).Sign(testIdentity)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			if _, err := p.Verify(token); err != ErrInvalidToken {
				t.Errorf("Verify: want ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenProvider_VerifyForeignKey(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	other, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := other.Sign(testIdentity)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := p.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify with foreign key: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_VerifyTamperedPayload(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.Sign(testIdentity)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d parts", len(parts))
	}
	forged := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Identity: domain.Identity{ID: 99, WorkspaceID: 1},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, forged).SigningString()
	if err != nil {
		t.Fatalf("SigningString: %v", err)
	}
	tampered := unsigned + "." + parts[2]
	if _, err := p.Verify(tampered); err != ErrInvalidToken {
		t.Errorf("Verify tampered: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_VerifyRejectsNoneAndHMAC(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Identity: testIdentity,
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := p.Verify(none); err != ErrInvalidToken {
		t.Errorf("Verify alg=none: want ErrInvalidToken, got %v", err)
	}
	hmac, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.publicKey))
	if err != nil {
		t.Fatalf("sign HS256: %v", err)
	}
	if _, err := p.Verify(hmac); err != ErrInvalidToken {
		t.Errorf("Verify alg=HS256: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_SignWithoutPrivateKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	p := NewTokenProvider(nil, pub)
	if _, _, err := p.Sign(testIdentity); err != ErrInvalidKey {
		t.Errorf("Sign without private key: want ErrInvalidKey, got %v", err)
	}
}
