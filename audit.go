package goAuthClient

import (
	"context"
	"time"

	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
)

const (
	auditVerificationStarted   = "verification_started"
	auditVerificationResent    = "verification_resent"
	auditVerificationCompleted = "verification_completed"
	auditVerificationFailed    = "verification_failed"
	auditVerificationExpired   = "verification_expired"
	auditSignIn                = "sign_in"
	auditSignUp                = "sign_up"
	auditSignOut               = "sign_out"
	auditSessionCleared        = "session_cleared"
)

func (o *Orchestrator) emitAudit(ctx context.Context, eventType string, success bool, fill func(*AuditEvent)) {
	if o.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: time.Now(),
		EventType: eventType,
		DeviceID:  deviceIDFromContext(ctx),
		Locale:    LocaleFromContext(ctx),
		Success:   success,
	}
	if fill != nil {
		fill(&event)
	}

	o.audit.Emit(ctx, event)
}
