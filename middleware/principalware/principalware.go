package principalware

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-userauth"
	"github.com/google/uuid"
)

var (
	defaultTokenLookup           = "header:" + router.HeaderAuthorization
	ErrTokenMissingOrMalformed   = errors.New("missing or malformed token")
	ErrPrincipalMissing          = errors.New("no principal in request")
	ErrAccessDenied              = errors.New("access denied")
	ErrResourceIdentifierInvalid = errors.New("invalid resource identifier")
)

// PrincipalSource turns an access token into the current principal
type PrincipalSource interface {
	PrincipalFromToken(ctx context.Context, accessToken string) (auth.Principal, auth.Claims, error)
}

// AccessChecker evaluates the per resource policy
type AccessChecker interface {
	CheckUserAccess(ctx context.Context, principal auth.Principal, targetUserID uuid.UUID) bool
	CheckAddressAccess(ctx context.Context, principal auth.Principal, addressID uuid.UUID) bool
}

// ValidationListener runs after the principal is resolved and before the
// next handler. Returning an error aborts the request.
type ValidationListener func(c router.Context, principal auth.Principal, claims auth.Claims) error

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	// Source is required
	Source PrincipalSource
	// ContextKey is the locals key holding the principal
	ContextKey string
	// ClaimsKey is the locals key holding the validated claims
	ClaimsKey string
	// TokenLookup is a comma separated list of source:name pairs,
	// e.g. "header:Authorization,cookie:jwt,query:auth_token,param:token"
	TokenLookup         string
	AuthScheme          string
	ValidationListeners []ValidationListener
}

// New authenticates each request from its bearer token and stores the
// resolved principal in the request locals and the request context.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if cfg.Filter != nil && cfg.Filter(c) {
				return c.Next()
			}

			raw, err := ExtractRawToken(c, extractors)
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}

			principal, claims, err := cfg.Source.PrincipalFromToken(c.Context(), raw)
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}

			for _, listener := range cfg.ValidationListeners {
				if listener == nil {
					continue
				}
				if err := listener(c, principal, claims); err != nil {
					return cfg.ErrorHandler(c, err)
				}
			}

			c.Locals(cfg.ContextKey, principal)
			c.Locals(cfg.ClaimsKey, claims)

			ctx := auth.WithPrincipal(c.Context(), principal)
			ctx = auth.WithClaimsContext(ctx, claims)
			c.SetContext(ctx)

			return cfg.SuccessHandler(c)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Source == nil {
		panic("AUTH: principal middleware configuration: Source is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c router.Context) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "principal"
	}

	if cfg.ClaimsKey == "" {
		cfg.ClaimsKey = "claims"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// DefaultErrorHandler maps failures to status codes. Token problems of any
// kind get the same 401 body.
func DefaultErrorHandler(c router.Context, err error) error {
	switch {
	case errors.Is(err, ErrTokenMissingOrMalformed):
		return c.Status(router.StatusBadRequest).SendString(ErrTokenMissingOrMalformed.Error())
	case errors.Is(err, ErrAccessDenied):
		return c.Status(router.StatusForbidden).SendString(ErrAccessDenied.Error())
	case errors.Is(err, ErrResourceIdentifierInvalid):
		return c.Status(router.StatusBadRequest).SendString(ErrResourceIdentifierInvalid.Error())
	case errors.Is(err, ErrPrincipalMissing), auth.IsTokenInvalid(err):
		return c.Status(router.StatusUnauthorized).SendString("Invalid or expired token")
	default:
		return c.Status(router.StatusInternalServerError).SendString("authentication failed")
	}
}

// PrincipalFromLocals returns the principal stored by New
func PrincipalFromLocals(c router.Context, key ...string) (auth.Principal, bool) {
	k := "principal"
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	p, ok := c.Locals(k).(auth.Principal)
	if !ok || p.IsZero() {
		return auth.Principal{}, false
	}
	return p, true
}

func ExtractRawToken(c router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	err := ErrTokenMissingOrMalformed

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

type TokenExtractor func(c router.Context) (string, error)

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 && strings.TrimSpace(authSchemes[0]) != "" {
		authScheme = strings.TrimSpace(authSchemes[0])
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}
		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(name))
		case "param":
			extractors = append(extractors, tokenFromParam(name))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(name))
		}
	}

	return extractors
}

func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c router.Context) (string, error) {
		a := c.Header(header)
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			if token := strings.TrimSpace(a[l:]); token != "" {
				return token, nil
			}
		}
		return "", ErrTokenMissingOrMalformed
	}
}

func tokenFromQuery(param string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

func tokenFromParam(param string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

func tokenFromCookie(name string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}
