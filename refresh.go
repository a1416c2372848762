package dineauth

import (
	"context"
	"fmt"
	"net/http"
)

// RefreshNow forces an access-token refresh. Most callers never need this;
// [Transport] refreshes transparently on authorization failures. Concurrent
// callers share a single backend call.
//
// A [ErrRefreshRejected] is terminal: the session has already been cleared
// and the user must log in again.
func (c *Core) RefreshNow(ctx context.Context) error {
	if c == nil || c.store == nil {
		return ErrCoreNotReady
	}
	_, err := c.refreshAccessToken(ctx)
	return err
}

// refreshAccessToken is the single entry point for token refresh. The
// singleflight group guarantees at most one backend call regardless of how
// many goroutines hit an expired token at once; losers receive the winner's
// result.
func (c *Core) refreshAccessToken(ctx context.Context) (string, error) {
	v, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if shared {
		c.metricInc(MetricRefreshDeduplicated)
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Core) doRefresh(ctx context.Context) (string, error) {
	c.mu.RLock()
	authenticated := c.sess.Status == StatusAuthenticated
	refreshToken := c.sess.RefreshToken
	userID := ""
	if c.sess.User != nil {
		userID = c.sess.User.ID
	}
	c.mu.RUnlock()

	if !authenticated {
		return "", ErrNotAuthenticated
	}

	var out refreshResponse
	status, apiErr, err := c.postJSON(ctx, pathRefresh, "", refreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		// Transport failure: the refresh token may still be good, keep the
		// session intact so the caller can retry.
		c.emitAudit(ctx, auditEventRefreshRejected, false, userID, StatusAuthenticated, err, nil)
		return "", err
	}

	if status < 200 || status >= 300 {
		if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusBadRequest {
			mapped := fmt.Errorf("%w: %s", ErrRefreshRejected, apiErr.reason())
			c.applySessionTerminated(ctx)
			c.metricInc(MetricRefreshRejected)
			c.emitAudit(ctx, auditEventRefreshRejected, false, userID, StatusAnonymous, mapped, func() map[string]string {
				return map[string]string{"http_status": fmt.Sprint(status)}
			})
			return "", mapped
		}
		return "", fmt.Errorf("%w: unexpected status %d", ErrUnreachable, status)
	}

	if out.AccessToken == "" {
		c.metricInc(MetricUnreachable)
		return "", fmt.Errorf("%w: refresh response without access token", ErrUnreachable)
	}

	c.applyAccessRefreshed(ctx, out.AccessToken, out.RefreshToken)
	c.metricInc(MetricRefreshSuccess)
	c.emitAudit(ctx, auditEventRefreshSuccess, true, userID, StatusAuthenticated, nil, nil)

	return out.AccessToken, nil
}
