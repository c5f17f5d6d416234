package worker

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/auth-gateway/internal/events"
	"github.com/spec-kit/auth-gateway/internal/observability"
)

func TestStartAuditWorker(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	StartAuditWorker(dispatcher, zap.New(core), metrics)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventLoginFailed,
		Subject: "alice",
		Payload: events.LoginFailedPayload{Reason: "bad_credentials"},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		Subject: "bob",
		Payload: events.UserRegisteredPayload{Role: "ADMIN"},
	}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "bad_credentials", entries[0].ContextMap()["reason"])
	assert.Equal(t, "ADMIN", entries[1].ContextMap()["role"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthFailures().WithLabelValues("bad_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthEvents().WithLabelValues("user_registered")))
}

func TestStartAuditWorkerNilDispatcher(t *testing.T) {
	assert.NotPanics(t, func() { StartAuditWorker(nil, zap.NewNop(), nil) })
}
