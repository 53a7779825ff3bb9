package principalware

import (
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// GuardConfig configures the access guards
type GuardConfig struct {
	Checker      AccessChecker
	Param        string
	ContextKey   string
	ErrorHandler router.ErrorHandler
}

// RequireUserAccess lets the request through only when the principal may
// act on the user named by the route param.
func RequireUserAccess(checker AccessChecker, param string) router.MiddlewareFunc {
	return NewGuard(GuardConfig{Checker: checker, Param: param}, func(c router.Context, cfg GuardConfig, id uuid.UUID) bool {
		p, _ := PrincipalFromLocals(c, cfg.ContextKey)
		return cfg.Checker.CheckUserAccess(c.Context(), p, id)
	})
}

// RequireAddressAccess lets the request through only when the principal owns
// the address named by the route param.
func RequireAddressAccess(checker AccessChecker, param string) router.MiddlewareFunc {
	return NewGuard(GuardConfig{Checker: checker, Param: param}, func(c router.Context, cfg GuardConfig, id uuid.UUID) bool {
		p, _ := PrincipalFromLocals(c, cfg.ContextKey)
		return cfg.Checker.CheckAddressAccess(c.Context(), p, id)
	})
}

// NewGuard builds a guard from an explicit config, allow decides on the
// parsed route param.
func NewGuard(cfg GuardConfig, allow func(router.Context, GuardConfig, uuid.UUID) bool) router.MiddlewareFunc {
	if cfg.Checker == nil {
		panic("AUTH: access guard configuration: Checker is required.")
	}
	if cfg.Param == "" {
		cfg.Param = "id"
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "principal"
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if _, ok := PrincipalFromLocals(c, cfg.ContextKey); !ok {
				return cfg.ErrorHandler(c, ErrPrincipalMissing)
			}

			id, err := uuid.Parse(c.Param(cfg.Param))
			if err != nil {
				return cfg.ErrorHandler(c, ErrResourceIdentifierInvalid)
			}

			if !allow(c, cfg, id) {
				return cfg.ErrorHandler(c, ErrAccessDenied)
			}

			return c.Next()
		}
	}
}
