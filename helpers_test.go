package dineauth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hostline/dineauth/tokenstore"
)

const (
	testEmail    = "manager@bistro.test"
	testPassword = "correct-horse-17"
	testCode     = "123456"
	testBackup   = "rescue-0001"
)

// fakeBackend is an in-process stand-in for the authentication API. It
// tracks issued tokens so the protected endpoint can enforce them.
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu            sync.Mutex
	twoFactor     bool
	challengeGone bool
	rejectRefresh bool
	refreshDelay  time.Duration

	tempToken      string
	currentAccess  string
	currentRefresh string
	accessSeq      int

	loginCalls   int
	refreshCalls int
	verifyCalls  int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		t:         t,
		tempToken: "challenge-token-1",
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) URL() string { return b.server.URL }

func (b *fakeBackend) issueTokens() (string, string) {
	b.accessSeq++
	b.currentAccess = fmt.Sprintf("access-%d", b.accessSeq)
	b.currentRefresh = fmt.Sprintf("refresh-%d", b.accessSeq)
	return b.currentAccess, b.currentRefresh
}

func (b *fakeBackend) userPayload() map[string]any {
	return map[string]any{
		"id":                 "u-100",
		"username":           "manager",
		"email":              testEmail,
		"firstname":          "Maya",
		"lastname":           "Okafor",
		"phone":              "+15550100",
		"role":               "manager",
		"two_factor_enabled": b.twoFactor,
	}
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	str := func(key string) string {
		s, _ := body[key].(string)
		return s
	}

	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch r.URL.Path {
	case pathLogin:
		b.loginCalls++
		if str("email") != testEmail || str("password") != testPassword {
			writeJSON(http.StatusUnauthorized, map[string]string{"error": "bad credentials"})
			return
		}
		if b.twoFactor {
			writeJSON(http.StatusOK, map[string]any{
				"two_factor_required": true,
				"temporary_token":     b.tempToken,
			})
			return
		}
		access, refresh := b.issueTokens()
		writeJSON(http.StatusOK, map[string]any{
			"access_token":  access,
			"refresh_token": refresh,
			"user":          b.userPayload(),
		})

	case pathTwoFactorVerify:
		b.verifyCalls++
		if b.challengeGone || str("temporary_token") != b.tempToken {
			writeJSON(http.StatusGone, map[string]string{"error": "challenge expired", "code": "challenge_expired"})
			return
		}
		ok := (str("method") == "totp" && str("code") == testCode) ||
			(str("method") == "backup" && str("code") == testBackup)
		if !ok {
			writeJSON(http.StatusUnauthorized, map[string]string{"error": "wrong code"})
			return
		}
		access, refresh := b.issueTokens()
		writeJSON(http.StatusOK, map[string]any{
			"access_token":  access,
			"refresh_token": refresh,
			"user":          b.userPayload(),
		})

	case pathRefresh:
		b.refreshCalls++
		delay := b.refreshDelay
		if delay > 0 {
			b.mu.Unlock()
			time.Sleep(delay)
			b.mu.Lock()
		}
		if b.rejectRefresh || str("refresh_token") != b.currentRefresh {
			writeJSON(http.StatusUnauthorized, map[string]string{"error": "refresh token revoked"})
			return
		}
		access, refresh := b.issueTokens()
		writeJSON(http.StatusOK, map[string]any{
			"access_token":  access,
			"refresh_token": refresh,
		})

	case pathLogout:
		w.WriteHeader(http.StatusNoContent)

	case pathEnroll:
		writeJSON(http.StatusOK, map[string]string{
			"secret":  "JBSWY3DPEHPK3PXP",
			"qr_code": "data:image/png;base64,aGk=",
		})

	case pathEnrollConfirm:
		if str("code") != testCode {
			writeJSON(http.StatusUnauthorized, map[string]string{"error": "wrong code"})
			return
		}
		b.twoFactor = true
		writeJSON(http.StatusOK, map[string]any{
			"backup_codes": []string{testBackup, "rescue-0002"},
		})

	case pathDisable:
		if str("code") != testCode {
			writeJSON(http.StatusUnauthorized, map[string]string{"error": "wrong code"})
			return
		}
		b.twoFactor = false
		w.WriteHeader(http.StatusNoContent)

	case pathBackupCodes:
		writeJSON(http.StatusOK, map[string]any{
			"backup_codes": []string{"rescue-1001", "rescue-1002"},
		})

	case "/venues/current":
		if r.Header.Get("Authorization") != "Bearer "+b.currentAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(http.StatusOK, map[string]string{"venue": "bistro"})

	default:
		b.t.Errorf("unexpected request path %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func testConfig(baseURL string) Config {
	cfg := defaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 5 * time.Second
	cfg.Audit.Enabled = false
	return cfg
}

func newTestCore(t *testing.T, b *fakeBackend) *Core {
	t.Helper()
	return newTestCoreWithStore(t, b, tokenstore.NewMemoryStore())
}

func newTestCoreWithStore(t *testing.T, b *fakeBackend, store tokenstore.Store) *Core {
	t.Helper()

	core, err := New().
		WithConfig(testConfig(b.URL())).
		WithTokenStore(store).
		Build()
	if err != nil {
		t.Fatalf("build core: %v", err)
	}
	t.Cleanup(func() { core.Close() })
	return core
}
