package dineauth

import (
	"io"
	"net/http"
)

// Transport is an [http.RoundTripper] that attaches the session's bearer
// token to outgoing requests and transparently recovers from an expired
// access token: on an authorization failure it refreshes once and replays
// the request once. A second failure, a non-replayable body, or an
// anonymous session all pass the response through untouched.
type Transport struct {
	core *Core
	base http.RoundTripper
}

// NewTransport wraps base (nil means [http.DefaultTransport]) with bearer
// injection and refresh-and-retry for the given core.
func NewTransport(core *Core, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		core: core,
		base: base,
	}
}

// Client returns an [http.Client] whose requests carry the session's bearer
// token. Use it for all business API calls; authentication calls themselves
// bypass it.
func (c *Core) Client() *http.Client {
	return &http.Client{
		Transport: NewTransport(c, nil),
		Timeout:   c.cfg.API.Timeout,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.core.AccessToken()
	if token == "" {
		return t.base.RoundTrip(req)
	}

	attempt := req.Clone(req.Context())
	attempt.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.base.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != t.core.cfg.Refresh.AuthFailureStatus {
		return resp, nil
	}

	// The body was consumed by the first attempt; without GetBody the
	// request cannot be replayed faithfully.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	newToken, refreshErr := t.core.refreshAccessToken(req.Context())
	if refreshErr != nil {
		// Refresh rejection already forced a logout; hand the original
		// authorization failure back to the caller.
		return resp, nil
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	resp.Body.Close()

	retry := req.Clone(req.Context())
	retry.Header.Set("Authorization", "Bearer "+newToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}

	t.core.metricInc(MetricRetryAfterRefresh)
	return t.base.RoundTrip(retry)
}
