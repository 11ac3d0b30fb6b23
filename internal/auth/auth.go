// Package auth gates the API behind an injected credential verifier.
// The verifier is a capability handed to the server at construction;
// no secret is embedded in handler code.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Verifier decides whether a presented password grants access.
type Verifier interface {
	Verify(password string) bool
}

// PasswordVerifier verifies against a fixed secret in constant time.
type PasswordVerifier struct {
	digest [sha256.Size]byte
}

// NewPasswordVerifier builds a Verifier for the given password.
func NewPasswordVerifier(password string) *PasswordVerifier {
	return &PasswordVerifier{digest: sha256.Sum256([]byte(password))}
}

// Verify reports whether the presented password matches.
func (v *PasswordVerifier) Verify(password string) bool {
	d := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(v.digest[:], d[:]) == 1
}

// open accepts every request. Used when no password is configured.
type open struct{}

func (open) Verify(string) bool { return true }

// Open returns a Verifier that accepts everything.
func Open() Verifier { return open{} }

// Middleware rejects requests whose bearer token the verifier does
// not accept. The liveness route is wired outside this gate.
func Middleware(v Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !v.Verify(bearerToken(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from the Authorization header, or
// returns "" when absent.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
