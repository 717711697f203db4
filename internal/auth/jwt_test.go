package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifyCronSecret(t *testing.T) {
	v := &JobVerifier{cronSecret: "topsecret"}

	subject, err := v.Verify("Bearer topsecret")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "cron" {
		t.Errorf("Expected subject cron, got %q", subject)
	}

	if _, err := v.Verify("Bearer wrong"); err == nil {
		t.Error("Expected wrong secret to be rejected")
	}
	if _, err := v.Verify("topsecret"); err == nil {
		t.Error("Expected missing Bearer prefix to be rejected")
	}
	if _, err := v.Verify(""); err == nil {
		t.Error("Expected empty header to be rejected")
	}
}

func TestVerifyJWT(t *testing.T) {
	v := &JobVerifier{jwtSecret: []byte("signing-key")}

	token, err := v.SignToken("scheduler", nil)
	if err != nil {
		t.Fatalf("SignToken failed: %v", err)
	}

	subject, err := v.Verify("Bearer " + token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "scheduler" {
		t.Errorf("Expected subject scheduler, got %q", subject)
	}
}

func TestVerifyJWTRejectsWrongKey(t *testing.T) {
	signer := &JobVerifier{jwtSecret: []byte("key-a")}
	verifier := &JobVerifier{jwtSecret: []byte("key-b")}

	token, err := signer.SignToken("scheduler", nil)
	if err != nil {
		t.Fatalf("SignToken failed: %v", err)
	}

	if _, err := verifier.Verify("Bearer " + token); err == nil {
		t.Error("Expected token signed with a different key to be rejected")
	}
}

func TestVerifyJWTRejectsWrongAlgorithm(t *testing.T) {
	v := &JobVerifier{jwtSecret: []byte("signing-key")}

	// Unsigned token must never pass.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "intruder"})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to build unsigned token: %v", err)
	}

	if _, err := v.Verify("Bearer " + tokenString); err == nil {
		t.Error("Expected alg=none token to be rejected")
	}
}

func TestUnconfiguredVerifierRejectsEverything(t *testing.T) {
	v := &JobVerifier{}

	if v.Configured() {
		t.Error("Expected unconfigured verifier")
	}
	if _, err := v.Verify("Bearer anything"); err == nil {
		t.Error("Expected unconfigured verifier to reject")
	}
}
