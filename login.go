package dineauth

import (
	"context"
	"fmt"
	"net/http"
)

// Login submits credentials. On success the session is either fully
// authenticated (result.User set) or awaiting a two-factor code
// (result.TwoFactorRequired set), depending on the account.
//
// A [ErrSessionActive] means a session or challenge is already in progress;
// log out or cancel the challenge first. Transport failures return
// [ErrUnreachable] and leave the session untouched.
func (c *Core) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if c == nil || c.store == nil {
		return nil, ErrCoreNotReady
	}
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidCredentials)
	}
	if c.Status() != StatusAnonymous {
		return nil, ErrSessionActive
	}

	var out loginResponse
	status, apiErr, err := c.postJSON(ctx, pathLogin, "", loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		c.emitAudit(ctx, auditEventLoginFailure, false, "", StatusAnonymous, err, nil)
		return nil, err
	}

	if status < 200 || status >= 300 {
		mapped := mapLoginStatus(status, apiErr)
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, "", StatusAnonymous, mapped, func() map[string]string {
			return map[string]string{"http_status": fmt.Sprint(status)}
		})
		return nil, mapped
	}

	if out.TwoFactorRequired {
		if out.TemporaryToken == "" {
			c.metricInc(MetricUnreachable)
			return nil, fmt.Errorf("%w: challenge response without temporary token", ErrUnreachable)
		}

		c.applyAwaitTwoFactor(out.TemporaryToken)
		c.metricInc(MetricTwoFactorRequired)
		c.emitAudit(ctx, auditEventTwoFactorRequired, true, "", StatusAwaitingTwoFactor, nil, nil)
		return &LoginResult{TwoFactorRequired: true}, nil
	}

	if out.AccessToken == "" || out.RefreshToken == "" || out.User == nil {
		c.metricInc(MetricUnreachable)
		return nil, fmt.Errorf("%w: incomplete login response", ErrUnreachable)
	}

	user := out.User.toUser()
	c.applyLoginSucceeded(ctx, user, out.AccessToken, out.RefreshToken)
	c.metricInc(MetricLoginSuccess)
	c.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, StatusAuthenticated, nil, nil)

	return &LoginResult{User: user.clone()}, nil
}

func mapLoginStatus(status int, apiErr *apiError) error {
	switch {
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusBadRequest,
		status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.reason())
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrUnreachable, status)
	}
}
