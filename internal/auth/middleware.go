package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

// Identity is the caller identity extracted from a validated token.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// CustomClaims carries the profile claims we read from the token.
type CustomClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Validate satisfies validator.CustomClaims; the profile claims need no
// further checks.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// Middleware bundles the required and optional JWT validation wrappers.
// Optional validation is used on public read endpoints where a missing
// identity soft-fails instead of rejecting the request.
type Middleware struct {
	required *jwtmiddleware.JWTMiddleware
	optional *jwtmiddleware.JWTMiddleware
}

func NewMiddleware(domain, audience string) (*Middleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT validator: %w", err)
	}

	return &Middleware{
		required: jwtmiddleware.New(jwtValidator.ValidateToken),
		optional: jwtmiddleware.New(jwtValidator.ValidateToken, jwtmiddleware.WithCredentialsOptional(true)),
	}, nil
}

// Require rejects requests without a valid token.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return m.required.CheckJWT(next)
}

// Allow validates a token when present but lets anonymous requests
// through; handlers see no identity in the context.
func (m *Middleware) Allow(next http.Handler) http.Handler {
	return m.optional.CheckJWT(next)
}

// IdentityFromContext extracts the caller identity from a validated
// request context.
func IdentityFromContext(ctx context.Context) (*Identity, error) {
	claims, ok := ctx.Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok {
		return nil, fmt.Errorf("no claims found in context")
	}

	customClaims, ok := claims.CustomClaims.(*CustomClaims)
	if !ok {
		return nil, fmt.Errorf("invalid custom claims format")
	}

	return &Identity{
		Subject:   claims.RegisteredClaims.Subject,
		Email:     customClaims.Email,
		Name:      customClaims.Name,
		AvatarURL: customClaims.Picture,
	}, nil
}
