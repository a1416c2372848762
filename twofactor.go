package dineauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	twoFactorMethodTOTP   = "totp"
	twoFactorMethodBackup = "backup"
)

// VerifyTwoFactor submits an authenticator code for the pending challenge.
// On success the session becomes authenticated. A rejected code returns
// [ErrInvalidTwoFactorCode] and keeps the challenge pending, so the user can
// retry without re-entering credentials.
func (c *Core) VerifyTwoFactor(ctx context.Context, code string) (*LoginResult, error) {
	return c.confirmChallenge(ctx, code, twoFactorMethodTOTP)
}

// VerifyBackupCode submits a single-use backup code for the pending
// challenge. Semantics match [Core.VerifyTwoFactor]; the backend invalidates
// the code on acceptance.
func (c *Core) VerifyBackupCode(ctx context.Context, code string) (*LoginResult, error) {
	return c.confirmChallenge(ctx, code, twoFactorMethodBackup)
}

func (c *Core) confirmChallenge(ctx context.Context, code, method string) (*LoginResult, error) {
	if c == nil || c.store == nil {
		return nil, ErrCoreNotReady
	}
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidTwoFactorCode)
	}

	c.mu.RLock()
	pending := c.sess.Status == StatusAwaitingTwoFactor
	temporaryToken := c.sess.TemporaryToken
	c.mu.RUnlock()

	if !pending {
		return nil, ErrNoChallenge
	}

	successEvent, failureEvent := auditEventTwoFactorSuccess, auditEventTwoFactorFailure
	successMetric, failureMetric := MetricTwoFactorSuccess, MetricTwoFactorFailure
	if method == twoFactorMethodBackup {
		successEvent, failureEvent = auditEventBackupCodeUsed, auditEventBackupCodeFailed
		successMetric, failureMetric = MetricBackupCodeUsed, MetricBackupCodeFailed
	}

	req := twoFactorVerifyRequest{
		TemporaryToken: temporaryToken,
		Code:           code,
		Method:         method,
	}

	var out loginResponse
	status, apiErr, err := c.postJSON(ctx, pathTwoFactorVerify, "", req, &out)
	if err != nil {
		c.emitAudit(ctx, failureEvent, false, "", StatusAwaitingTwoFactor, err, nil)
		return nil, err
	}

	if status < 200 || status >= 300 {
		mapped := mapChallengeStatus(status, apiErr)
		switch {
		case mapped == nil:
			mapped = fmt.Errorf("%w: unexpected status %d", ErrUnreachable, status)
		case errors.Is(mapped, ErrChallengeExpired):
			c.metricInc(MetricChallengeExpired)
		default:
			c.metricInc(failureMetric)
		}
		// The challenge stays pending on every failure, expiry included.
		// Callers decide when to give up via CancelTwoFactor.
		c.emitAudit(ctx, failureEvent, false, "", StatusAwaitingTwoFactor, mapped, func() map[string]string {
			return map[string]string{"http_status": fmt.Sprint(status), "method": method}
		})
		return nil, mapped
	}

	if out.AccessToken == "" || out.RefreshToken == "" || out.User == nil {
		c.metricInc(MetricUnreachable)
		return nil, fmt.Errorf("%w: incomplete verification response", ErrUnreachable)
	}

	user := out.User.toUser()
	c.applyLoginSucceeded(ctx, user, out.AccessToken, out.RefreshToken)
	c.metricInc(successMetric)
	c.emitAudit(ctx, successEvent, true, user.ID, StatusAuthenticated, nil, func() map[string]string {
		return map[string]string{"method": method}
	})

	return &LoginResult{User: user.clone()}, nil
}

func mapChallengeStatus(status int, apiErr *apiError) error {
	switch status {
	case http.StatusGone:
		return fmt.Errorf("%w: %s", ErrChallengeExpired, apiErr.reason())
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest, http.StatusUnprocessableEntity:
		if apiErr != nil && apiErr.Code == "challenge_expired" {
			return fmt.Errorf("%w: %s", ErrChallengeExpired, apiErr.reason())
		}
		return fmt.Errorf("%w: %s", ErrInvalidTwoFactorCode, apiErr.reason())
	default:
		return nil
	}
}

// EnrollTwoFactor starts two-factor enrollment for the authenticated user.
// The returned secret and QR code are ephemeral; they are shown once and
// never stored.
func (c *Core) EnrollTwoFactor(ctx context.Context) (*TwoFactorSetup, error) {
	if c == nil || c.store == nil {
		return nil, ErrCoreNotReady
	}
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var out enrollResponse
	status, apiErr, err := c.postJSON(ctx, pathEnroll, c.AccessToken(), nil, &out)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTwoFactorCode, apiErr.reason())
	}
	if out.Secret == "" {
		return nil, fmt.Errorf("%w: enrollment response without secret", ErrUnreachable)
	}

	c.metricInc(MetricEnrollStarted)
	c.emitAudit(ctx, auditEventEnrollStarted, true, c.currentUserID(), StatusAuthenticated, nil, nil)

	return &TwoFactorSetup{
		Secret:      out.Secret,
		QRCodeImage: out.QRCodeImage,
	}, nil
}

// ConfirmTwoFactorEnrollment finishes enrollment with the first code from
// the user's authenticator. It returns the freshly generated backup codes;
// this is the only time they are visible.
func (c *Core) ConfirmTwoFactorEnrollment(ctx context.Context, code string) ([]string, error) {
	if c == nil || c.store == nil {
		return nil, ErrCoreNotReady
	}
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidTwoFactorCode)
	}

	var out backupCodesResponse
	status, apiErr, err := c.postJSON(ctx, pathEnrollConfirm, c.AccessToken(), twoFactorCodeRequest{Code: code}, &out)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTwoFactorCode, apiErr.reason())
	}

	c.applyTwoFactorFlag(ctx, true)
	c.metricInc(MetricEnrollConfirmed)
	c.emitAudit(ctx, auditEventEnrollConfirmed, true, c.currentUserID(), StatusAuthenticated, nil, nil)

	return out.BackupCodes, nil
}

// DisableTwoFactor turns two-factor authentication off for the account. The
// backend requires a current authenticator code to prevent a hijacked
// session from silently weakening the account.
func (c *Core) DisableTwoFactor(ctx context.Context, code string) error {
	if c == nil || c.store == nil {
		return ErrCoreNotReady
	}
	if !c.Authenticated() {
		return ErrNotAuthenticated
	}
	if !c.twoFactorEnabled() {
		return ErrTwoFactorNotEnabled
	}
	if code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidTwoFactorCode)
	}

	status, apiErr, err := c.postJSON(ctx, pathDisable, c.AccessToken(), twoFactorCodeRequest{Code: code}, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: %s", ErrInvalidTwoFactorCode, apiErr.reason())
	}

	c.applyTwoFactorFlag(ctx, false)
	c.metricInc(MetricTwoFactorDisabled)
	c.emitAudit(ctx, auditEventTwoFactorDisabled, true, c.currentUserID(), StatusAuthenticated, nil, nil)
	return nil
}

// RegenerateBackupCodes invalidates all existing backup codes and returns a
// fresh set. Requires an enrolled account.
func (c *Core) RegenerateBackupCodes(ctx context.Context) ([]string, error) {
	if c == nil || c.store == nil {
		return nil, ErrCoreNotReady
	}
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if !c.twoFactorEnabled() {
		return nil, ErrTwoFactorNotEnabled
	}

	var out backupCodesResponse
	status, apiErr, err := c.postJSON(ctx, pathBackupCodes, c.AccessToken(), nil, &out)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTwoFactorCode, apiErr.reason())
	}

	c.metricInc(MetricBackupCodesRegenerated)
	c.emitAudit(ctx, auditEventBackupCodesRegenerate, true, c.currentUserID(), StatusAuthenticated, nil, nil)

	return out.BackupCodes, nil
}

func (c *Core) currentUserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sess.User == nil {
		return ""
	}
	return c.sess.User.ID
}

func (c *Core) twoFactorEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess.User != nil && c.sess.User.TwoFactorEnabled
}
