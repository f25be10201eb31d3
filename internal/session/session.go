// Package session ties stored credentials to a live client and the
// in-memory caches that depend on who is logged in.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nikbrunner/lnk/internal/cache"
	"github.com/nikbrunner/lnk/internal/linkding"
	"github.com/nikbrunner/lnk/internal/logger"
	"github.com/nikbrunner/lnk/internal/storage"
	"github.com/sirupsen/logrus"
)

// ErrNotLoggedIn is returned when no credentials are stored.
var ErrNotLoggedIn = errors.New("not logged in; run 'lnk login <url> <token>'")

// Options configures a Manager.
type Options struct {
	Timeout    time.Duration
	CacheLimit int
	LookupSize int
	Logger     *logrus.Logger

	// NewClient overrides client construction in tests.
	NewClient func(baseURL, token string, timeout time.Duration) (*linkding.Client, error)
}

// Manager owns the credentials store, the active client and the caches.
type Manager struct {
	store   storage.Store
	opts    Options
	log     *logrus.Logger
	cache   *cache.Cache
	lookups *cache.Lookups

	mu     sync.RWMutex
	client *linkding.Client
}

// New creates a Manager. Call Restore or Login before Client.
func New(store storage.Store, opts Options) (*Manager, error) {
	if opts.NewClient == nil {
		opts.NewClient = linkding.NewClient
	}
	log := logger.OrDiscard(opts.Logger)

	lookups, err := cache.NewLookups(opts.LookupSize)
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}
	return &Manager{
		store:   store,
		opts:    opts,
		log:     log,
		cache:   cache.New(nil, opts.CacheLimit, log),
		lookups: lookups,
	}, nil
}

// Login verifies the credentials against the server, stores them and warms
// the view cache. A failed warm-up is logged; the login still succeeds.
func (m *Manager) Login(ctx context.Context, baseURL, token string) error {
	baseURL = linkding.NormalizeBaseURL(baseURL)
	client, err := m.opts.NewClient(baseURL, token, m.opts.Timeout)
	if err != nil {
		return err
	}
	client.EnableLogging(m.log)

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}

	if err := m.store.Set(storage.KeyBaseURL, client.BaseURL); err != nil {
		return fmt.Errorf("save base URL: %w", err)
	}
	if err := m.store.Set(storage.KeyToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := m.store.Set(storage.KeyLoggedIn, "true"); err != nil {
		return fmt.Errorf("save login flag: %w", err)
	}

	m.activate(client)
	m.log.WithField("server", client.BaseURL).Info("session: logged in")

	if err := m.cache.PopulateAll(ctx); err != nil {
		m.log.WithError(err).Warn("session: cache warm-up failed")
	}
	return nil
}

// Restore rebuilds the client from stored credentials. It does not touch
// the network.
func (m *Manager) Restore() error {
	loggedIn, err := m.get(storage.KeyLoggedIn)
	if err != nil {
		return err
	}
	token, err := m.get(storage.KeyToken)
	if err != nil {
		return err
	}
	baseURL, err := m.get(storage.KeyBaseURL)
	if err != nil {
		return err
	}
	if loggedIn != "true" || token == "" || baseURL == "" {
		return ErrNotLoggedIn
	}

	client, err := m.opts.NewClient(baseURL, token, m.opts.Timeout)
	if err != nil {
		return err
	}
	client.EnableLogging(m.log)
	m.activate(client)
	return nil
}

// Warm populates the view cache for a restored session.
func (m *Manager) Warm(ctx context.Context) error {
	if _, err := m.Client(); err != nil {
		return err
	}
	return m.cache.PopulateAll(ctx)
}

// Logout forgets the credentials and drops every cached view and lookup.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.client = nil
	m.mu.Unlock()

	m.cache.Invalidate()
	m.cache.SetLister(nil)
	m.lookups.Purge()

	if err := m.store.Delete(storage.KeyToken, storage.KeyBaseURL, storage.KeyLoggedIn); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	m.log.Info("session: logged out")
	return nil
}

// LoggedIn reports whether a client is active.
func (m *Manager) LoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Client returns the active client or ErrNotLoggedIn.
func (m *Manager) Client() (*linkding.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil, ErrNotLoggedIn
	}
	return m.client, nil
}

// Cache returns the view cache shared by every list.
func (m *Manager) Cache() *cache.Cache { return m.cache }

// Lookups returns the URL lookup cache.
func (m *Manager) Lookups() *cache.Lookups { return m.lookups }

// ConnectedAt returns when the current token was stored. Stores that do
// not track write times report false.
func (m *Manager) ConnectedAt() (time.Time, bool) {
	ts, ok := m.store.(interface {
		UpdatedAt(key string) (time.Time, error)
	})
	if !ok {
		return time.Time{}, false
	}
	at, err := ts.UpdatedAt(storage.KeyToken)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// Close releases the credentials store.
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) activate(client *linkding.Client) {
	m.mu.Lock()
	m.client = client
	m.mu.Unlock()

	// A new account must never see the previous account's views.
	m.cache.Invalidate()
	m.cache.SetLister(client)
	m.lookups.Purge()
}

func (m *Manager) get(key string) (string, error) {
	v, err := m.store.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotLoggedIn
	}
	return v, err
}
