package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextAddsRunFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := WithRun(context.Background(), "run-1", "orders")
	ctx = WithStore(ctx, "3")
	FromContext(ctx, base).Info("bucket listed")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "run-1", fields["run_id"])
		assert.Equal(t, "orders", fields["entity"])
		assert.Equal(t, "3", fields["store_id"])
	}
}

func TestFromContextSkipsEmptyStore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	FromContext(WithStore(context.Background(), ""), zap.New(core)).Info("x")

	_, ok := logs.All()[0].ContextMap()["store_id"]
	assert.False(t, ok)
}

func TestNewRunIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}
