package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
)

const (
	ActivityEventRegisterSuccess ActivityEventType = "auth.register.success"
	ActivityEventRegisterFailure ActivityEventType = "auth.register.failure"
)

// DefaultRegisterTimeout bounds a single registration
const DefaultRegisterTimeout = 10 * time.Second

// RegisterUserMessage asks for a new identity holding ROLE_USER
type RegisterUserMessage struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (m RegisterUserMessage) Type() string { return "user.register" }

// Validate checks the message before any hashing happens
func (m RegisterUserMessage) Validate() error {
	m.Email = strings.TrimSpace(m.Email)
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&m.Name, validation.Length(0, 200)),
		validation.Field(&m.Password, validation.Required),
	)
}

// UserRegistrar persists a new identity. repository.Users implements it.
type UserRegistrar interface {
	Register(ctx context.Context, email, name, passwordHash string) (*Identity, error)
}

var _ command.Commander[RegisterUserMessage] = (*RegisterUserHandler)(nil)

// RegisterUserHandler hashes the password and stores the identity
type RegisterUserHandler struct {
	users    UserRegistrar
	hash     func(string) (string, error)
	logger   Logger
	activity ActivitySink
	now      func() time.Time
	timeout  time.Duration
}

func NewRegisterUserHandler(users UserRegistrar) *RegisterUserHandler {
	_, logger := ResolveLogger("auth.register", nil, nil)
	return &RegisterUserHandler{
		users:    users,
		hash:     HashPassword,
		logger:   logger,
		activity: noopActivitySink{},
		now:      time.Now,
		timeout:  DefaultRegisterTimeout,
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	_, h.logger = ResolveLogger("auth.register", nil, logger)
	return h
}

func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithHashCost overrides the bcrypt cost
func (h *RegisterUserHandler) WithHashCost(cost int) *RegisterUserHandler {
	h.hash = func(password string) (string, error) {
		return HashPasswordWithCost(password, cost)
	}
	return h
}

func (h *RegisterUserHandler) WithClock(now func() time.Time) *RegisterUserHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *RegisterUserHandler) WithTimeout(timeout time.Duration) *RegisterUserHandler {
	if timeout > 0 {
		h.timeout = timeout
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, msg RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		identity, err := h.execute(ctx, msg)
		h.record(ctx, identity, err)
		return err
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, msg RegisterUserMessage) (*Identity, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration").
			WithTextCode("INVALID_REGISTRATION").
			WithCode(goerrors.CodeBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	hash, err := h.hash(msg.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category != goerrors.CategoryInternal {
			return nil, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return nil, internalError(err, "failed to hash password")
	}

	identity, err := h.users.Register(ctx, strings.TrimSpace(msg.Email), strings.TrimSpace(msg.Name), hash)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, err
		}
		return nil, internalError(err, "user registration failed")
	}
	if identity == nil {
		return nil, goerrors.New("registrar returned no identity", goerrors.CategoryInternal)
	}

	h.logger.Info("user registered", "user_id", identity.ID.String())
	return identity, nil
}

func (h *RegisterUserHandler) record(ctx context.Context, identity *Identity, cause error) {
	event := ActivityEvent{
		EventType:  ActivityEventRegisterSuccess,
		Metadata:   map[string]any{},
		OccurredAt: h.now(),
	}
	if identity != nil {
		event.UserID = identity.ID.String()
	}
	if cause != nil {
		event.EventType = ActivityEventRegisterFailure
		event.Reason = registrationFailureReason(cause)
		h.logger.Warn("user registration failed", "reason", event.Reason, "error", cause)
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink record error", "error", err)
	}
}

func registrationFailureReason(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return string(richErr.Category)
	}
	return "internal"
}
