package dineauth

import (
	"context"
	"errors"
	"time"

	"github.com/hostline/dineauth/internal/claims"
	"github.com/hostline/dineauth/tokenstore"
)

// Restore rehydrates a persisted session from the token store. It is a
// cheap, offline operation: the stored tokens are not validated against the
// backend. A stale access token is caught by the first authorized request
// and handled by [Transport]'s refresh-and-retry.
//
// Restore reports whether a session was restored. It is a no-op unless the
// session is anonymous. A missing record leaves the session anonymous; a
// corrupt record or a refresh token that is already past its own expiry is
// discarded.
func (c *Core) Restore(ctx context.Context) (bool, error) {
	if c == nil || c.store == nil {
		return false, ErrCoreNotReady
	}
	if c.Status() != StatusAnonymous {
		return false, nil
	}

	rec, err := c.store.Load(ctx, c.cfg.Storage.ProfileID)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return false, nil
	}
	if errors.Is(err, tokenstore.ErrCorruptRecord) {
		_ = c.store.Clear(ctx, c.cfg.Storage.ProfileID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if rec.AccessToken == "" || rec.RefreshToken == "" {
		_ = c.store.Clear(ctx, c.cfg.Storage.ProfileID)
		return false, nil
	}

	// A refresh token that has outlived its own exp claim can never be
	// redeemed; restoring it would only defer the forced logout.
	if claims.Expired(rec.RefreshToken, time.Now()) {
		_ = c.store.Clear(ctx, c.cfg.Storage.ProfileID)
		return false, nil
	}

	c.applySessionRestored(rec)
	c.metricInc(MetricSessionRestored)
	c.emitAudit(ctx, auditEventSessionRestored, true, rec.UserID, StatusAuthenticated, nil, nil)

	return true, nil
}
