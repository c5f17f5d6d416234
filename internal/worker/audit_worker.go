package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-gateway/internal/events"
	"github.com/spec-kit/auth-gateway/internal/observability"
)

// StartAuditWorker registers the audit handlers: every auth event is logged
// and counted.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}
	audit := logger.Named("audit")

	handler := func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.ID),
			zap.String("event", string(event.Type)),
			zap.String("subject", event.Subject),
			zap.Time("at", event.Timestamp),
		}
		switch p := event.Payload.(type) {
		case events.LoginFailedPayload:
			fields = append(fields, zap.String("reason", p.Reason))
			metrics.RecordAuthFailure(p.Reason)
		case events.LoginSucceededPayload:
			fields = append(fields, zap.Strings("roles", p.Roles), zap.Time("expires_at", p.ExpiresAt))
		case events.UserRegisteredPayload:
			fields = append(fields, zap.String("role", p.Role))
		}

		metrics.RecordAuthEvent(string(event.Type))
		if event.Type == events.EventLoginFailed {
			audit.Warn("auth event", fields...)
			return nil
		}
		audit.Info("auth event", fields...)
		return nil
	}

	for _, t := range []events.EventType{
		events.EventUserRegistered,
		events.EventLoginSucceeded,
		events.EventLoginFailed,
	} {
		dispatcher.Subscribe(t, handler)
	}
}
