package auth

import (
	"crypto/subtle"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JobVerifier authorizes trigger requests for background jobs. When
// JOB_JWT_SECRET is configured, bearer tokens are verified as HMAC-signed
// JWTs; otherwise the token is compared against CRON_SECRET directly.
type JobVerifier struct {
	jwtSecret  []byte
	cronSecret string
}

// NewJobVerifier creates a verifier from environment configuration
func NewJobVerifier() *JobVerifier {
	v := &JobVerifier{
		cronSecret: os.Getenv("CRON_SECRET"),
	}
	if secret := os.Getenv("JOB_JWT_SECRET"); secret != "" {
		v.jwtSecret = []byte(secret)
	}
	return v
}

// Configured reports whether any credential is set. An unconfigured
// verifier rejects every request.
func (v *JobVerifier) Configured() bool {
	return len(v.jwtSecret) > 0 || v.cronSecret != ""
}

// Verify checks an Authorization header value and returns the authorized
// subject ("cron" for shared-secret auth).
func (v *JobVerifier) Verify(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("missing bearer token")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", fmt.Errorf("missing bearer token")
	}

	if len(v.jwtSecret) > 0 {
		return v.verifyJWT(token)
	}
	if v.cronSecret == "" {
		return "", fmt.Errorf("job auth not configured")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(v.cronSecret)) != 1 {
		return "", fmt.Errorf("invalid token")
	}
	return "cron", nil
}

// verifyJWT validates an HMAC-signed token and extracts its subject.
func (v *JobVerifier) verifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to verify token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		sub = "job"
	}
	return sub, nil
}

// SignToken mints an HMAC token for the given subject. Only valid when
// JOB_JWT_SECRET is configured; used by operational tooling.
func (v *JobVerifier) SignToken(subject string, claims jwt.MapClaims) (string, error) {
	if len(v.jwtSecret) == 0 {
		return "", fmt.Errorf("JOB_JWT_SECRET not configured")
	}
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	claims["sub"] = subject
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.jwtSecret)
}
