package dineauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	pathLogin           = "/auth/login"
	pathTwoFactorVerify = "/auth/2fa/verify"
	pathRefresh         = "/auth/refresh"
	pathLogout          = "/auth/logout"
	pathEnroll          = "/auth/2fa/setup"
	pathEnrollConfirm   = "/auth/2fa/confirm"
	pathDisable         = "/auth/2fa/disable"
	pathBackupCodes     = "/auth/2fa/backup-codes"
)

// maxResponseBytes bounds how much of a response body is read. Auth payloads
// are small; anything larger is a misbehaving backend.
const maxResponseBytes = 1 << 20

type apiError struct {
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func (e *apiError) reason() string {
	if e == nil || e.Message == "" {
		return "request rejected"
	}
	return e.Message
}

type userPayload struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Firstname        string `json:"firstname"`
	Lastname         string `json:"lastname"`
	Phone            string `json:"phone"`
	Role             string `json:"role"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

func (p *userPayload) toUser() *User {
	if p == nil {
		return nil
	}
	return &User{
		ID:               p.ID,
		Username:         p.Username,
		Email:            p.Email,
		Firstname:        p.Firstname,
		Lastname:         p.Lastname,
		Phone:            p.Phone,
		Role:             p.Role,
		TwoFactorEnabled: p.TwoFactorEnabled,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	TwoFactorRequired bool         `json:"two_factor_required"`
	TemporaryToken    string       `json:"temporary_token,omitempty"`
	AccessToken       string       `json:"access_token,omitempty"`
	RefreshToken      string       `json:"refresh_token,omitempty"`
	User              *userPayload `json:"user,omitempty"`
}

type twoFactorVerifyRequest struct {
	TemporaryToken string `json:"temporary_token"`
	Code           string `json:"code"`
	Method         string `json:"method"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type enrollResponse struct {
	Secret      string `json:"secret"`
	QRCodeImage string `json:"qr_code"`
}

type twoFactorCodeRequest struct {
	Code string `json:"code"`
}

type backupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

// postJSON performs one authentication API call. It returns the HTTP status
// and, for non-2xx responses, the decoded backend error. Transport failures
// and undecodable success payloads come back wrapped in [ErrUnreachable];
// those calls mutated nothing and may be retried.
func (c *Core) postJSON(ctx context.Context, path, bearer string, in, out any) (int, *apiError, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(data)
	}

	url := strings.TrimSuffix(c.cfg.API.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.API.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.API.UserAgent)
	}

	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	if deviceID := deviceIDFromContext(ctx); deviceID != "" {
		req.Header.Set("X-Device-ID", deviceID)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.Observe(MetricRequestLatency, time.Since(start))
	if err != nil {
		c.metricInc(MetricUnreachable)
		return 0, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.metricInc(MetricUnreachable)
		return 0, nil, fmt.Errorf("%w: reading response: %v", ErrUnreachable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				c.metricInc(MetricUnreachable)
				return resp.StatusCode, nil, fmt.Errorf("%w: malformed response: %v", ErrUnreachable, err)
			}
		}
		return resp.StatusCode, nil, nil
	}

	apiErr := &apiError{}
	// A non-JSON error body is fine; the status code drives the mapping.
	_ = json.Unmarshal(data, apiErr)
	return resp.StatusCode, apiErr, nil
}

func (c *Core) postLogout(ctx context.Context, refreshToken string) error {
	_, _, err := c.postJSON(ctx, pathLogout, c.AccessToken(), logoutRequest{RefreshToken: refreshToken}, nil)
	return err
}
