// Package auth issues and verifies the bearer credentials of the privileged
// writer and hashes their passwords.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Demonism0/blog-api/internal/model"
)

const (
	signingAlg    = "HS256"
	usernameClaim = "username"
)

type Status int

const (
	// Unauthenticated means no credential was presented.
	Unauthenticated Status = iota
	Authenticated
	// Invalid means a credential was presented but failed verification.
	Invalid
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Invalid:
		return "invalid"
	default:
		return "unauthenticated"
	}
}

type Claims struct {
	UserID   string
	Username string
}

type Result struct {
	Status Status
	Claims Claims
}

func (r Result) Authenticated() bool {
	return r.Status == Authenticated
}

type Verifier struct {
	tokenAuth *jwtauth.JWTAuth
	ttl       time.Duration
}

// NewVerifier returns a verifier bound to signingKey. A ttl of zero issues
// credentials without an expiry claim.
func NewVerifier(signingKey []byte, ttl time.Duration) *Verifier {
	return &Verifier{
		tokenAuth: jwtauth.New(signingAlg, signingKey, nil),
		ttl:       ttl,
	}
}

// Issue signs a credential for user.
func (v *Verifier) Issue(user model.User) (string, error) {
	if user.ID == "" {
		return "", errors.New("auth: user has no id")
	}
	claims := map[string]any{
		"sub":         user.ID,
		usernameClaim: user.Username,
	}
	now := time.Now()
	jwtauth.SetIssuedAt(claims, now)
	if v.ttl > 0 {
		jwtauth.SetExpiry(claims, now.Add(v.ttl))
	}
	_, tok, err := v.tokenAuth.Encode(claims)
	return tok, err
}

// Verify checks a presented bearer token. It has no side effects.
func (v *Verifier) Verify(token string) Result {
	if token == "" {
		return Result{Status: Unauthenticated}
	}
	tok, err := jwtauth.VerifyToken(v.tokenAuth, token)
	if err != nil || tok == nil || tok.Subject() == "" {
		return Result{Status: Invalid}
	}
	username, _ := tok.PrivateClaims()[usernameClaim].(string)
	return Result{
		Status: Authenticated,
		Claims: Claims{UserID: tok.Subject(), Username: username},
	}
}

// FromRequest verifies the Authorization header of r. A missing header is
// Unauthenticated; a header that is not a bearer credential is Invalid.
func (v *Verifier) FromRequest(r *http.Request) Result {
	if r.Header.Get("Authorization") == "" {
		return Result{Status: Unauthenticated}
	}
	token := jwtauth.TokenFromHeader(r)
	if token == "" {
		return Result{Status: Invalid}
	}
	return v.Verify(token)
}

func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	return string(hash), err
}

func CheckPassword(pwd, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwd)) == nil
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying res.
func NewContext(ctx context.Context, res Result) context.Context {
	return context.WithValue(ctx, ctxKey{}, res)
}

// FromContext returns the verification result stored in ctx. Without one the
// caller is Unauthenticated.
func FromContext(ctx context.Context) Result {
	res, _ := ctx.Value(ctxKey{}).(Result)
	return res
}
