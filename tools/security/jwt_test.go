package security

import (
	"testing"
	"time"

	"FitProject/tools/errs"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var testSecret = []byte("unit-test-secret")

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions(testSecret)

	token, hash, expireAt, err := Generate(opts, "user-42")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" || hash == "" {
		t.Fatal("empty token or hash")
	}
	if !expireAt.After(time.Now()) {
		t.Fatalf("expireAt %v already past", expireAt)
	}

	sub, err := Verify(opts, token, hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "user-42" {
		t.Fatalf("subject = %q, want user-42", sub)
	}

	// empty expected hash skips the binding check
	if _, err := Verify(opts, token, ""); err != nil {
		t.Fatalf("verify without hash: %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, _, err := Generate(DefaultOptions(testSecret), "user-42")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, err = Verify(DefaultOptions([]byte("other-secret")), token, "")
	if !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("got %v, want token invalid", err)
	}
}

func TestVerifyRejectsHashMismatch(t *testing.T) {
	opts := DefaultOptions(testSecret)
	token, _, _, err := Generate(opts, "user-42")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, err = Verify(opts, token, HashToken("some other token"))
	if !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("got %v, want token invalid", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	claims := jwtlib.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = Verify(DefaultOptions(testSecret), token, "")
	if !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("got %v, want token invalid", err)
	}
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	claims := jwtlib.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = Verify(DefaultOptions(testSecret), token, "")
	if !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("got %v, want token invalid", err)
	}
}

func TestUnsupportedAlg(t *testing.T) {
	opts := Options{Secret: testSecret, Alg: "RS256"}
	if _, _, _, err := Generate(opts, "user-42"); err == nil {
		t.Fatal("RS256 accepted")
	}
	if _, err := Verify(opts, "whatever", ""); err == nil {
		t.Fatal("RS256 accepted on verify")
	}
}

func TestHashTokenStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("hash not deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("distinct tokens collide")
	}
}
