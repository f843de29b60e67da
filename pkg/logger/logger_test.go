package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume/pkg/logger"
)

type traceKey struct{}

func traceExtractor(ctx context.Context) (slog.Attr, bool) {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return slog.String("trace_id", v), true
	}
	return slog.Attr{}, false
}

func TestParseEnv(t *testing.T) {
	t.Parallel()

	tests := map[string]logger.Env{
		"":            logger.EnvDevelopment,
		"development": logger.EnvDevelopment,
		"Production":  logger.EnvProduction,
		"prod":        logger.EnvProduction,
		"staging":     logger.EnvStaging,
		"qa":          logger.EnvDevelopment,
	}
	for in, want := range tests {
		require.Equal(t, want, logger.ParseEnv(in), "input %q", in)
	}
}

func TestEnvLevel(t *testing.T) {
	t.Parallel()

	t.Run("development logs debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.EnvDevelopment)
		log.Debug("verbose")
		require.Contains(t, buf.String(), "verbose")
	})

	t.Run("production drops below error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.EnvProduction)
		log.Info("quiet")
		log.Warn("quiet")
		require.Empty(t, buf.String())

		log.Error("loud")
		require.Contains(t, buf.String(), "loud")
	})
}

func TestDecorator_Extractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.EnvStaging, traceExtractor, nil)

	ctx := context.WithValue(context.Background(), traceKey{}, "t-1")
	log.ErrorContext(ctx, "failed", logger.Scope("auth:logout"), logger.Error(errors.New("boom")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "t-1", entry["trace_id"])
	require.Equal(t, "auth:logout", entry["scope"])
	require.Equal(t, "boom", entry["error"])
}

func TestNewForEnv_WithoutDSN(t *testing.T) {
	t.Parallel()

	log := logger.NewForEnv(logger.EnvProduction, logger.SentryConfig{})
	require.NotNil(t, log)
	require.False(t, log.Enabled(context.Background(), slog.LevelWarn))
	require.True(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() { logger.NewNope().Error("discarded") })
}
