package dineauth

import "errors"

var (
	// ErrInvalidCredentials is returned when the backend rejects the
	// submitted email/password pair, or when either field is empty.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidTwoFactorCode is returned when the backend rejects a
	// two-factor code or backup code, or when the code is malformed.
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")
	// ErrChallengeExpired is returned when the temporary challenge token
	// expired before verification completed. The pending challenge state is
	// retained; callers decide whether to cancel and restart login.
	ErrChallengeExpired = errors.New("two-factor challenge expired")
	// ErrRefreshRejected is returned when the refresh token itself is
	// rejected by the backend. It is terminal for the session: the core has
	// already transitioned back to anonymous and cleared the token store.
	ErrRefreshRejected = errors.New("refresh token rejected")
	// ErrUnreachable is returned for transport-level failures (connection
	// refused, timeout, malformed success payload). The operation mutated no
	// session state and may be retried as-is.
	ErrUnreachable = errors.New("authentication service unreachable")

	// ErrNoChallenge is returned when a two-factor verification is attempted
	// without a pending challenge.
	ErrNoChallenge = errors.New("no two-factor challenge pending")
	// ErrNotAuthenticated is returned by operations that require an
	// authenticated session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionActive is returned when login is attempted while a session
	// or challenge is already in progress.
	ErrSessionActive = errors.New("session already active")
	// ErrTwoFactorNotEnabled is returned by backup-code regeneration when
	// the account has no two-factor enrollment.
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication not enabled")
	// ErrCoreNotReady is returned when a Core was not built through Builder.
	ErrCoreNotReady = errors.New("core not initialized")
)
