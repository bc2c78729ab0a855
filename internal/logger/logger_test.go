package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), salt: "pepper"}, logs
}

func TestLogger_RedactsAndHashes(t *testing.T) {
	l, logs := observed()
	l.Info("login", "user_id", "alice", "password", "hunter2", "subject", "RXJS")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "[REDACTED]", fields["password"])
		assert.Equal(t, "RXJS", fields["subject"])
		assert.NotEqual(t, "alice", fields["user_id"])
		assert.Contains(t, fields["user_id"], "hash:")
	}
}

func TestLogger_HashIsStable(t *testing.T) {
	l, _ := observed()
	assert.Equal(t, l.hash("bob"), l.hash("bob"))
	assert.NotEqual(t, l.hash("bob"), l.hash("carol"))
	assert.Equal(t, "", l.hash(""))
}

func TestLogger_WithKeepsSalt(t *testing.T) {
	l, logs := observed()
	l.With("user_id", "alice").Warn("event log append failed")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, l.hash("alice"), entries[0].ContextMap()["user_id"])
	}
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("ignored", "k", "v") })
}
