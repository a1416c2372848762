package dineauth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	internalaudit "github.com/hostline/dineauth/internal/audit"
	"github.com/hostline/dineauth/tokenstore"
)

const (
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventTwoFactorRequired     = "two_factor_required"
	auditEventTwoFactorSuccess      = "two_factor_success"
	auditEventTwoFactorFailure      = "two_factor_failure"
	auditEventTwoFactorCancelled    = "two_factor_cancelled"
	auditEventBackupCodeUsed        = "backup_code_used"
	auditEventBackupCodeFailed      = "backup_code_failed"
	auditEventRefreshSuccess        = "refresh_success"
	auditEventRefreshRejected       = "refresh_rejected"
	auditEventLogout                = "logout"
	auditEventSessionRestored       = "session_restored"
	auditEventEnrollStarted         = "two_factor_enroll_started"
	auditEventEnrollConfirmed       = "two_factor_enroll_confirmed"
	auditEventTwoFactorDisabled     = "two_factor_disabled"
	auditEventBackupCodesRegenerate = "backup_codes_regenerated"
)

// AuditErrorCode is the normalized error label recorded on audit events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrInvalidCode        AuditErrorCode = "invalid_two_factor_code"
	auditErrChallengeExpired   AuditErrorCode = "challenge_expired"
	auditErrRefreshRejected    AuditErrorCode = "refresh_rejected"
	auditErrUnreachable        AuditErrorCode = "service_unreachable"
	auditErrNoChallenge        AuditErrorCode = "no_challenge"
	auditErrNotAuthenticated   AuditErrorCode = "not_authenticated"
	auditErrSessionActive      AuditErrorCode = "session_active"
	auditErrNotEnabled         AuditErrorCode = "two_factor_not_enabled"
	auditErrInternal           AuditErrorCode = "internal_error"
)

// Core owns the authentication session for one profile: the in-memory state
// machine, the protocol client that talks to the backend, and the durable
// token store. Construct it with [Builder]; the zero value is not usable.
type Core struct {
	cfg       Config
	http      *http.Client
	store     tokenstore.Store
	ownsStore bool
	audit     *internalaudit.Dispatcher
	metrics   *Metrics

	refreshGroup singleflight.Group

	mu   sync.RWMutex
	sess Session
}

// Close flushes the audit dispatcher and releases the token store if the
// Core opened it itself. The in-memory session is left untouched.
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	c.audit.Close()
	if c.ownsStore {
		if closer, ok := c.store.(interface{ Close() error }); ok {
			return closer.Close()
		}
	}
	return nil
}

// AuditDropped returns the number of audit events dropped because the
// dispatcher buffer was full.
func (c *Core) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Metrics returns the core's metrics instance for exporter wiring. It is
// never nil on a built Core.
func (c *Core) Metrics() *Metrics {
	return c.metrics
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (c *Core) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

func (c *Core) metricInc(id MetricID) {
	c.metrics.Inc(id)
}

func (c *Core) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	status SessionStatus,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		DeviceID:  deviceIDFromContext(ctx),
		RequestID: requestIDFromContext(ctx),
		Status:    status.String(),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrInvalidTwoFactorCode):
		return auditErrInvalidCode
	case errors.Is(err, ErrChallengeExpired):
		return auditErrChallengeExpired
	case errors.Is(err, ErrRefreshRejected):
		return auditErrRefreshRejected
	case errors.Is(err, ErrUnreachable):
		return auditErrUnreachable
	case errors.Is(err, ErrNoChallenge):
		return auditErrNoChallenge
	case errors.Is(err, ErrNotAuthenticated):
		return auditErrNotAuthenticated
	case errors.Is(err, ErrSessionActive):
		return auditErrSessionActive
	case errors.Is(err, ErrTwoFactorNotEnabled):
		return auditErrNotEnabled
	default:
		return auditErrInternal
	}
}
