package dineauth

import (
	"context"
	"time"

	"github.com/hostline/dineauth/tokenstore"
)

const auditEventPersistFailure = "session_persist_failure"

// Session returns a snapshot of the current session state. The snapshot is
// detached; mutating it has no effect on the Core.
func (c *Core) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.sess
	s.User = s.User.clone()
	return s
}

// Status returns the current lifecycle state.
func (c *Core) Status() SessionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess.Status
}

// Authenticated reports whether the session holds a full token pair.
func (c *Core) Authenticated() bool {
	return c.Status() == StatusAuthenticated
}

// AccessToken returns the current access token, or "" outside the
// authenticated state.
func (c *Core) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess.AccessToken
}

// CurrentUser returns a copy of the authenticated user profile, or nil.
func (c *Core) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess.User.clone()
}

/*
Session transitions.

Every mutation of c.sess goes through exactly one of the apply functions
below. Each one replaces the whole Session value, so the pairwise exclusion
between the temporary token and the token pair holds by construction.

The in-memory transition always commits. Persistence is write-through but
non-fatal: a failing store surfaces as a session_persist_failure audit event,
never as a failed login.
*/

func (c *Core) applyAwaitTwoFactor(temporaryToken string) {
	c.mu.Lock()
	c.sess = Session{
		Status:         StatusAwaitingTwoFactor,
		TemporaryToken: temporaryToken,
	}
	c.mu.Unlock()
	// Challenges are deliberately not persisted: a restart during the
	// two-factor window restarts the login.
}

func (c *Core) applyLoginSucceeded(ctx context.Context, user *User, accessToken, refreshToken string) {
	c.mu.Lock()
	c.sess = Session{
		Status:       StatusAuthenticated,
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	c.mu.Unlock()

	c.persistSession(ctx, user, accessToken, refreshToken)
}

func (c *Core) applyAccessRefreshed(ctx context.Context, accessToken, refreshToken string) {
	c.mu.Lock()
	if c.sess.Status != StatusAuthenticated {
		c.mu.Unlock()
		return
	}
	c.sess.AccessToken = accessToken
	if refreshToken != "" {
		c.sess.RefreshToken = refreshToken
	}
	c.mu.Unlock()

	if err := c.store.SetAccessToken(ctx, c.cfg.Storage.ProfileID, accessToken, refreshToken); err != nil {
		c.emitAudit(ctx, auditEventPersistFailure, false, "", StatusAuthenticated, nil, func() map[string]string {
			return map[string]string{"store_error": err.Error()}
		})
	}
}

func (c *Core) applySessionTerminated(ctx context.Context) {
	c.mu.Lock()
	c.sess = Session{Status: StatusAnonymous}
	c.mu.Unlock()

	if err := c.store.Clear(ctx, c.cfg.Storage.ProfileID); err != nil {
		c.emitAudit(ctx, auditEventPersistFailure, false, "", StatusAnonymous, nil, func() map[string]string {
			return map[string]string{"store_error": err.Error()}
		})
	}
}

func (c *Core) applySessionRestored(rec *tokenstore.Record) {
	user := &User{
		ID:               rec.UserID,
		Username:         rec.Username,
		Email:            rec.Email,
		Firstname:        rec.Firstname,
		Lastname:         rec.Lastname,
		Phone:            rec.Phone,
		Role:             rec.Role,
		TwoFactorEnabled: rec.TwoFactorEnabled,
	}

	c.mu.Lock()
	c.sess = Session{
		Status:       StatusAuthenticated,
		User:         user,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
	}
	c.mu.Unlock()
}

func (c *Core) applyTwoFactorFlag(ctx context.Context, enabled bool) {
	c.mu.Lock()
	if c.sess.User == nil {
		c.mu.Unlock()
		return
	}
	user := c.sess.User.clone()
	user.TwoFactorEnabled = enabled
	c.sess.User = user
	accessToken := c.sess.AccessToken
	refreshToken := c.sess.RefreshToken
	c.mu.Unlock()

	c.persistSession(ctx, user, accessToken, refreshToken)
}

func (c *Core) persistSession(ctx context.Context, user *User, accessToken, refreshToken string) {
	rec := &tokenstore.Record{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		UserID:           user.ID,
		Username:         user.Username,
		Email:            user.Email,
		Firstname:        user.Firstname,
		Lastname:         user.Lastname,
		Phone:            user.Phone,
		Role:             user.Role,
		TwoFactorEnabled: user.TwoFactorEnabled,
		UpdatedAt:        time.Now().Unix(),
	}

	if err := c.store.Save(ctx, c.cfg.Storage.ProfileID, rec); err != nil {
		c.emitAudit(ctx, auditEventPersistFailure, false, user.ID, StatusAuthenticated, nil, func() map[string]string {
			return map[string]string{"store_error": err.Error()}
		})
	}
}

// CancelTwoFactor abandons a pending challenge and returns the session to
// anonymous. It is a no-op outside the awaiting state.
func (c *Core) CancelTwoFactor(ctx context.Context) {
	c.mu.Lock()
	if c.sess.Status != StatusAwaitingTwoFactor {
		c.mu.Unlock()
		return
	}
	c.sess = Session{Status: StatusAnonymous}
	c.mu.Unlock()

	c.emitAudit(ctx, auditEventTwoFactorCancelled, true, "", StatusAnonymous, nil, nil)
}

// Logout revokes the session server-side on a best-effort basis, then always
// transitions to anonymous and clears the token store. A dead backend never
// traps a user in a session.
func (c *Core) Logout(ctx context.Context) error {
	c.mu.RLock()
	status := c.sess.Status
	refreshToken := c.sess.RefreshToken
	var userID string
	if c.sess.User != nil {
		userID = c.sess.User.ID
	}
	c.mu.RUnlock()

	if status != StatusAuthenticated {
		if status == StatusAwaitingTwoFactor {
			c.CancelTwoFactor(ctx)
		}
		return nil
	}

	_ = c.postLogout(ctx, refreshToken)

	c.applySessionTerminated(ctx)
	c.metricInc(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, true, userID, StatusAnonymous, nil, nil)
	return nil
}
