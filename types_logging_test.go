package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-userauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type namedProvider struct {
	loggers map[string]*captureLogger
}

func (p *namedProvider) GetLogger(name string) auth.Logger {
	if p.loggers == nil {
		p.loggers = map[string]*captureLogger{}
	}
	if l, ok := p.loggers[name]; ok {
		return l
	}
	l := &captureLogger{}
	p.loggers[name] = l
	return l
}

type nilProvider struct{}

func (nilProvider) GetLogger(string) auth.Logger { return nil }

func TestResolveLogger(t *testing.T) {
	explicit := &captureLogger{}
	provider := &namedProvider{}

	t.Run("explicit logger wins", func(t *testing.T) {
		gotProvider, got := auth.ResolveLogger("auth.test", provider, explicit)
		assert.Same(t, explicit, got)
		assert.Same(t, provider, gotProvider)
	})

	t.Run("provider is used without a logger", func(t *testing.T) {
		_, got := auth.ResolveLogger("auth.test", provider, nil)
		assert.Same(t, provider.loggers["auth.test"], got)
	})

	t.Run("default logger without either", func(t *testing.T) {
		gotProvider, got := auth.ResolveLogger("auth.test", nil, nil)
		assert.NotNil(t, gotProvider)
		assert.NotNil(t, got)
	})

	t.Run("provider returning nil falls back", func(t *testing.T) {
		_, got := auth.ResolveLogger("auth.test", nilProvider{}, nil)
		assert.NotNil(t, got)
	})
}

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := auth.NewZapLogger(zap.New(core))

	logger.Debug("debug line", "k", 1)
	logger.Info("info line", "user_id", "u-1")
	logger.Warn("warn line")
	logger.Error("error line", "error", "boom")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "info line", entries[1].Message)
	assert.Equal(t, "u-1", entries[1].ContextMap()["user_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)

	assert.NotPanics(t, func() {
		auth.NewZapLogger(nil).Info("dropped")
	})
}

func TestZapLoggerProviderNamesLoggers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	provider := auth.NewZapLoggerProvider(zap.New(core))

	provider.GetLogger("auth.refresh").Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "auth.refresh", entries[0].LoggerName)
}
