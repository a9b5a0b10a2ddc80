package auth

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func seg(v any) string {
	b, _ := json.Marshal(v)
	return base64.RawURLEncoding.EncodeToString(b)
}

func hs256(secret string, claims map[string]any) string {
	in := seg(map[string]string{"alg": "HS256", "typ": "JWT"}) + "." + seg(claims)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(in))
	return in + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func TestDevToken(t *testing.T) {
	v := NewVerifier(Settings{})
	p, err := v.Verify("t1:Dispatcher")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Tenant != "t1" || p.Role != RoleDispatcher {
		t.Fatalf("unexpected principal %+v", p)
	}
	if _, err := v.Verify("justtenant"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want invalid token, got %v", err)
	}
}

func TestHMACToken(t *testing.T) {
	v := NewVerifier(Settings{Mode: "hmac", HMACSecret: "s3cret"})
	v.now = func() time.Time { return time.Unix(1000, 0) }

	p, err := v.Verify(hs256("s3cret", map[string]any{"tenant": "t1", "role": "admin", "exp": 2000}))
	if err != nil || p.Tenant != "t1" || p.Role != RoleAdmin {
		t.Fatalf("unexpected %+v %v", p, err)
	}
	if _, err := v.Verify(hs256("other", map[string]any{"tenant": "t1"})); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want bad signature, got %v", err)
	}
	if _, err := v.Verify(hs256("s3cret", map[string]any{"tenant": "t1", "exp": 500})); !errors.Is(err, ErrExpired) {
		t.Fatalf("want expired, got %v", err)
	}
	p, err = v.Verify(hs256("s3cret", map[string]any{"tenant": "t1"}))
	if err != nil || p.Role != RoleViewer {
		t.Fatalf("missing role should default to viewer, got %+v %v", p, err)
	}
}

func TestJWKSToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "k1",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	defer srv.Close()

	in := seg(map[string]string{"alg": "RS256", "kid": "k1"}) + "." + seg(map[string]any{"tenant": "t9", "role": "dispatcher"})
	sum := sha256.Sum256([]byte(in))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, sum[:])
	if err != nil {
		t.Fatal(err)
	}
	tok := in + "." + base64.RawURLEncoding.EncodeToString(sig)

	v := NewVerifier(Settings{Mode: "jwks", JWKSURL: srv.URL})
	p, err := v.Verify(tok)
	if err != nil || p.Tenant != "t9" || p.Role != RoleDispatcher {
		t.Fatalf("unexpected %+v %v", p, err)
	}
}
