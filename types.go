package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Logger is the structured logger used across the package. Arguments after
// the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggerProvider hands out named loggers
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// UserStore loads identities. Absent identities are reported with an error
// for which IsNotFound returns true.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
}

// RoleStore returns the roles currently bound to a role name
type RoleStore interface {
	FindByName(ctx context.Context, name RoleName) ([]Role, error)
}

// AddressStore loads addresses for ownership checks
type AddressStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)
}

// PasswordMatcher compares a plain password to a stored hash in constant time
type PasswordMatcher interface {
	Matches(plain, hash string) bool
}

// PasswordMatcherFunc adapts a function into a PasswordMatcher.
type PasswordMatcherFunc func(plain, hash string) bool

// Matches satisfies PasswordMatcher
func (f PasswordMatcherFunc) Matches(plain, hash string) bool {
	if f == nil {
		return false
	}
	return f(plain, hash)
}

// ResolveLogger returns the logger to use for the named component. An
// explicit logger wins over the provider, the provider wins over the default
// stdout logger.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) (LoggerProvider, Logger) {
	if provider == nil {
		provider = defLoggerProvider{}
	}
	if logger != nil {
		return provider, logger
	}
	if l := provider.GetLogger(name); l != nil {
		return provider, l
	}
	return provider, defLogger{name: name}
}

type defLoggerProvider struct{}

func (defLoggerProvider) GetLogger(name string) Logger {
	return defLogger{name: name}
}

type defLogger struct {
	name string
}

func (d defLogger) Debug(msg string, args ...any) {
	d.print("DBG", msg, args...)
}

func (d defLogger) Info(msg string, args ...any) {
	d.print("INF", msg, args...)
}

func (d defLogger) Warn(msg string, args ...any) {
	d.print("WRN", msg, args...)
}

func (d defLogger) Error(msg string, args ...any) {
	d.print("ERR", msg, args...)
}

func (d defLogger) print(level, msg string, args ...any) {
	line := fmt.Sprintf("[%s] %s %s", level, d.name, msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			line += fmt.Sprintf(" %v=%v", args[i], args[i+1])
		} else {
			line += fmt.Sprintf(" %v", args[i])
		}
	}
	fmt.Println(line)
}
