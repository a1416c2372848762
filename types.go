package dineauth

import (
	"io"

	internalaudit "github.com/hostline/dineauth/internal/audit"
)

// SessionStatus is the lifecycle state of the authentication session.
type SessionStatus uint8

const (
	// StatusAnonymous is the initial state: no credentials, no challenge.
	StatusAnonymous SessionStatus = iota
	// StatusAwaitingTwoFactor means credentials were accepted but the
	// account requires a second factor; only the temporary challenge token
	// is held.
	StatusAwaitingTwoFactor
	// StatusAuthenticated means the session holds a full token pair and the
	// user profile.
	StatusAuthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAwaitingTwoFactor:
		return "awaiting_two_factor"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// User is the minimal profile the backend returns alongside a token pair.
// It is present on a [Session] exactly when the status is
// [StatusAuthenticated].
type User struct {
	ID        string
	Username  string
	Email     string
	Firstname string
	Lastname  string
	Phone     string
	Role      string

	// TwoFactorEnabled is an attribute of the account, independent of the
	// session status. It defaults to false and is only set from an explicit
	// backend response.
	TwoFactorEnabled bool
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Session is a point-in-time snapshot of the session state. Exactly one of
// the following holds: the temporary token is set (awaiting two-factor), the
// access+refresh pair is set (authenticated), or neither (anonymous).
type Session struct {
	Status         SessionStatus
	User           *User
	AccessToken    string
	RefreshToken   string
	TemporaryToken string
}

// LoginResult is returned by [Core.Login], [Core.VerifyTwoFactor], and
// [Core.VerifyBackupCode]. When TwoFactorRequired is true the session is
// awaiting the second factor and User is nil; otherwise the session is
// authenticated and User carries the profile.
type LoginResult struct {
	TwoFactorRequired bool
	User              *User
}

// TwoFactorSetup is the ephemeral enrollment material returned by
// [Core.EnrollTwoFactor]. It is never persisted; discard it once the user
// has scanned the QR code and confirmed enrollment.
type TwoFactorSetup struct {
	Secret      string
	QRCodeImage string
}

// AuditEvent is a structured audit record emitted by the core.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the core's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
