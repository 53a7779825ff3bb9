package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/goliatone/go-userauth"

// Stores groups the collaborators the service reads from
type Stores struct {
	Users     UserStore
	Roles     RoleStore
	Addresses AddressStore
	Passwords PasswordMatcher
}

// Service is the entry point used by the HTTP and event layers. It holds no
// request state and is safe for concurrent use once configured.
type Service struct {
	cfg    Config
	stores Stores

	codec         *Codec
	issuer        *TokenIssuer
	validator     *TokenValidator
	resolver      *PrincipalResolver
	authenticator *CredentialAuthenticator
	refresher     *RefreshOrchestrator
	policy        *AccessPolicy

	now          func() time.Time
	logger       Logger
	baseLogger   Logger
	provider     LoggerProvider
	activitySink ActivitySink
	tracer       trace.Tracer
}

// NewService validates the config and wires every component
func NewService(cfg Config, stores Stores) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if stores.Users == nil {
		return nil, errors.New("user store is required", errors.CategoryBadInput)
	}

	provider, logger := ResolveLogger("auth.service", nil, nil)

	s := &Service{
		cfg:          cfg,
		stores:       stores,
		codec:        NewCodec([]byte(cfg.Secret)),
		now:          time.Now,
		logger:       logger,
		provider:     provider,
		activitySink: noopActivitySink{},
		tracer:       otel.Tracer(tracerName),
	}
	s.build()

	return s, nil
}

// WithLogger sets the logger used by the service and all its components
func (s *Service) WithLogger(logger Logger) *Service {
	s.baseLogger = logger
	s.provider, s.logger = ResolveLogger("auth.service", s.provider, logger)
	s.build()
	return s
}

// WithLoggerProvider gives each component its own named logger
func (s *Service) WithLoggerProvider(provider LoggerProvider) *Service {
	s.baseLogger = nil
	s.provider, s.logger = ResolveLogger("auth.service", provider, nil)
	s.build()
	return s
}

// WithClock overrides the time source, useful for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Service) WithActivitySink(sink ActivitySink) *Service {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTracer overrides the otel tracer, the global provider is used otherwise
func (s *Service) WithTracer(tracer trace.Tracer) *Service {
	if tracer != nil {
		s.tracer = tracer
	}
	return s
}

func (s *Service) build() {
	named := func(name string) Logger {
		_, l := ResolveLogger(name, s.provider, s.baseLogger)
		return l
	}

	s.issuer = NewTokenIssuer(s.cfg, s.codec)
	s.validator = NewTokenValidator(s.codec, named("auth.token_validator"))
	s.resolver = NewPrincipalResolver(s.stores.Users, named("auth.principal_resolver"))
	s.authenticator = NewCredentialAuthenticator(s.resolver, s.stores.Passwords, named("auth.credentials"))
	s.refresher = NewRefreshOrchestrator(s.validator, s.issuer, s.stores.Users, named("auth.refresh"))
	s.policy = NewAccessPolicy(s.stores.Roles, s.stores.Addresses, named("auth.access_policy"))
}

// Issuer exposes the token issuer
func (s *Service) Issuer() *TokenIssuer { return s.issuer }

// Validator exposes the token validator
func (s *Service) Validator() *TokenValidator { return s.validator }

// Policy exposes the access policy evaluator
func (s *Service) Policy() *AccessPolicy { return s.policy }

// Login authenticates the pair and issues a fresh access/refresh pair
func (s *Service) Login(ctx context.Context, email, password string) (pair TokenPair, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer func() { endSpan(span, err) }()

	principal, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("login failed", "reason", failureReason(err))
		s.emit(ctx, ActivityEventLoginFailure, "", err)
		return TokenPair{}, err
	}

	now := s.now()

	access, err := s.issuer.IssueAccessToken(principal.Email(), principal.Authorities(), principal.ID(), now)
	if err != nil {
		s.emit(ctx, ActivityEventLoginFailure, principal.ID().String(), err)
		return TokenPair{}, err
	}

	refresh, err := s.issuer.IssueRefreshToken(principal.ID(), principal.Email(), now)
	if err != nil {
		s.emit(ctx, ActivityEventLoginFailure, principal.ID().String(), err)
		return TokenPair{}, err
	}

	span.SetAttributes(attribute.String("auth.user_id", principal.ID().String()))
	s.logger.Info("login succeeded", "user_id", principal.ID().String())
	s.emit(ctx, ActivityEventLoginSuccess, principal.ID().String(), nil)

	return TokenPair{
		ID:           principal.ID(),
		Email:        principal.Email(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh exchanges a refresh token for a new pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (pair TokenPair, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.Refresh")
	defer func() { endSpan(span, err) }()

	pair, err = s.refresher.Refresh(ctx, refreshToken, s.now())
	if err != nil {
		s.emit(ctx, ActivityEventRefreshFailure, "", err)
		return TokenPair{}, err
	}

	span.SetAttributes(attribute.String("auth.user_id", pair.ID.String()))
	s.emit(ctx, ActivityEventRefreshSuccess, pair.ID.String(), nil)

	return pair, nil
}

// PrincipalFromToken validates an access token and resolves the principal
// named by its subject. The principal reflects current store data, not the
// roles embedded in the token.
func (s *Service) PrincipalFromToken(ctx context.Context, accessToken string) (Principal, Claims, error) {
	claims, err := s.validator.Validate(accessToken, s.now())
	if err != nil {
		return Principal{}, Claims{}, err
	}

	if claims.Type == TokenTypeRefresh {
		s.logger.Warn("refresh token presented as access token")
		return Principal{}, Claims{}, ErrTokenInvalid
	}

	principal, err := s.resolver.Resolve(ctx, claims.Subject)
	if err != nil {
		if IsNotFound(err) {
			return Principal{}, Claims{}, ErrTokenInvalid
		}
		return Principal{}, Claims{}, err
	}

	if principal.ID().String() != claims.ID {
		s.logger.Warn("token subject and id disagree", "user_id", principal.ID().String())
		return Principal{}, Claims{}, ErrTokenInvalid
	}

	return principal, claims, nil
}

// CheckUserAccess reports whether principal may act on the target user
func (s *Service) CheckUserAccess(ctx context.Context, principal Principal, targetUserID uuid.UUID) bool {
	return s.policy.IsAccessUser(ctx, principal, targetUserID)
}

// CheckAddressAccess reports whether principal may act on the address
func (s *Service) CheckAddressAccess(ctx context.Context, principal Principal, addressID uuid.UUID) bool {
	return s.policy.IsAccessAddress(ctx, principal, addressID)
}

func (s *Service) emit(ctx context.Context, eventType ActivityEventType, userID string, cause error) {
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Reason:     failureReason(cause),
		Metadata:   map[string]any{},
		OccurredAt: s.now(),
	}

	if err := normalizeActivitySink(s.activitySink).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, failureReason(err))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
