package tokenstore

// Record is the durable form of an authenticated session. Only full sessions
// are persisted; a pending two-factor challenge never reaches the store.
type Record struct {
	AccessToken  string
	RefreshToken string

	UserID           string
	Username         string
	Email            string
	Firstname        string
	Lastname         string
	Phone            string
	Role             string
	TwoFactorEnabled bool

	// UpdatedAt is a Unix timestamp (seconds) of the last write.
	UpdatedAt int64
}
