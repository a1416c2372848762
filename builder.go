package dineauth

import (
	"errors"
	"net/http"

	internalaudit "github.com/hostline/dineauth/internal/audit"
	"github.com/hostline/dineauth/tokenstore"
)

// Builder assembles a [Core]. Obtain one with [New], chain the With*
// methods, then call [Builder.Build].
type Builder struct {
	cfg        Config
	httpClient *http.Client
	store      tokenstore.Store
	sink       AuditSink
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		cfg: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the API base URL without replacing the rest of the
// config.
func (b *Builder) WithBaseURL(url string) *Builder {
	b.cfg.API.BaseURL = url
	return b
}

// WithHTTPClient injects the client used for authentication requests. The
// client must NOT carry a [Transport] from this package; refresh calls have
// to bypass the interceptor.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithTokenStore injects the session persistence backend. When omitted,
// Storage.Path selects a bbolt store.
func (b *Builder) WithTokenStore(store tokenstore.Store) *Builder {
	b.store = store
	return b
}

// WithAuditSink sets the destination for audit events. Ignored when auditing
// is disabled in the config.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.cfg.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the request latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.cfg.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and constructs the Core. The returned
// Core starts anonymous; call [Core.Restore] to rehydrate a persisted
// session.
func (b *Builder) Build() (*Core, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	ownsStore := false
	if store == nil {
		if b.cfg.Storage.Path == "" {
			return nil, errors.New("no token store: inject one or set Storage.Path")
		}
		bs, err := tokenstore.OpenBolt(b.cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		store = bs
		ownsStore = true
	}

	client := b.httpClient
	if client == nil {
		client = &http.Client{Timeout: b.cfg.API.Timeout}
	}

	c := &Core{
		cfg:       b.cfg,
		http:      client,
		store:     store,
		ownsStore: ownsStore,
		metrics:   NewMetrics(b.cfg.Metrics),
		sess:      Session{Status: StatusAnonymous},
	}

	c.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    b.cfg.Audit.Enabled,
		BufferSize: b.cfg.Audit.BufferSize,
		DropIfFull: b.cfg.Audit.DropIfFull,
	}, b.sink)

	return c, nil
}
