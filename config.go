package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

const (
	// DefaultAccessTTL is used when no access TTL is configured
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is used when no refresh TTL is configured
	DefaultRefreshTTL = 14 * 24 * time.Hour

	// MinSecretLength is the HS256 key size in bytes
	MinSecretLength = 32
)

// Environment keys read by ConfigFromEnv
const (
	EnvSecret     = "AUTH_JWT_SECRET"
	EnvAccessTTL  = "AUTH_JWT_ACCESS_TTL"
	EnvRefreshTTL = "AUTH_JWT_REFRESH_TTL"
	EnvIssuer     = "AUTH_JWT_ISSUER"
)

// Config is loaded once at start up and passed by value to every component
// that signs or verifies tokens. It is never mutated afterwards.
type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Issuer is optional, when set it is written to the iss claim.
	Issuer string
}

// Validate checks the invariants the token components rely on
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Secret,
			validation.Required,
			validation.By(minLength(MinSecretLength)),
		),
		validation.Field(&c.AccessTTL,
			validation.Required,
			validation.By(atLeast(time.Second)),
		),
		validation.Field(&c.RefreshTTL,
			validation.Required,
			validation.By(greaterThan(c.AccessTTL)),
		),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid auth config").
			WithTextCode("INVALID_CONFIG")
	}
	return nil
}

// ConfigFromEnv builds a Config from the given lookup function, usually
// os.LookupEnv. TTLs accept Go durations ("15m") or bare integers in
// milliseconds. Missing TTLs fall back to the defaults.
func ConfigFromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		AccessTTL:  DefaultAccessTTL,
		RefreshTTL: DefaultRefreshTTL,
	}

	if v, ok := lookup(EnvSecret); ok {
		cfg.Secret = v
	}

	if v, ok := lookup(EnvIssuer); ok {
		cfg.Issuer = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvAccessTTL); ok && strings.TrimSpace(v) != "" {
		ttl, err := ParseTTL(v)
		if err != nil {
			return Config{}, errors.Wrap(err, errors.CategoryValidation, "invalid "+EnvAccessTTL)
		}
		cfg.AccessTTL = ttl
	}

	if v, ok := lookup(EnvRefreshTTL); ok && strings.TrimSpace(v) != "" {
		ttl, err := ParseTTL(v)
		if err != nil {
			return Config{}, errors.Wrap(err, errors.CategoryValidation, "invalid "+EnvRefreshTTL)
		}
		cfg.RefreshTTL = ttl
	}

	return cfg, cfg.Validate()
}

// ParseTTL parses a Go duration or an integer number of milliseconds
func ParseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(raw)
}

func minLength(n int) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if len(s) < n {
			return fmt.Errorf("must be at least %d bytes long", n)
		}
		return nil
	}
}

func atLeast(min time.Duration) validation.RuleFunc {
	return func(value any) error {
		d, _ := value.(time.Duration)
		if d < min {
			return fmt.Errorf("must be at least %s", min)
		}
		return nil
	}
}

func greaterThan(other time.Duration) validation.RuleFunc {
	return func(value any) error {
		d, _ := value.(time.Duration)
		if d <= other {
			return fmt.Errorf("must be greater than the access TTL (%s)", other)
		}
		return nil
	}
}
