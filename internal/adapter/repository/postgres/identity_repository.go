package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/V4T54L/brokerdesk/internal/adapter/metrics"
	"github.com/V4T54L/brokerdesk/internal/domain"
)

type cacheEntry struct {
	username  string
	expiresAt time.Time
}

// IdentityRepository implements domain.IdentityResolver using PostgreSQL
// as the source of truth and an in-memory, time-based cache.
type IdentityRepository struct {
	db       *sql.DB
	logger   *slog.Logger
	cache    map[string]cacheEntry
	mu       sync.RWMutex
	cacheTTL time.Duration
	metrics  *metrics.PortalMetrics
	now      func() time.Time
}

// NewIdentityRepository creates a new PostgreSQL-backed identity resolver. m may be nil.
func NewIdentityRepository(db *sql.DB, logger *slog.Logger, cacheTTL time.Duration, m *metrics.PortalMetrics) *IdentityRepository {
	return &IdentityRepository{
		db:       db,
		logger:   logger.With("component", "identity_repository"),
		cache:    make(map[string]cacheEntry),
		cacheTTL: cacheTTL,
		metrics:  m,
		now:      time.Now,
	}
}

// Resolve maps an API key to the username it was issued to. Unknown, inactive and
// expired keys yield domain.ErrUnknownAPIKey. Negative answers are cached too.
func (r *IdentityRepository) Resolve(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	entry, found := r.cache[key]
	r.mu.RUnlock()

	if found && r.now().Before(entry.expiresAt) {
		if r.metrics != nil {
			r.metrics.APIKeyCacheHits.Inc()
		}
		return entry.result()
	}

	if r.metrics != nil {
		r.metrics.APIKeyCacheMisses.Inc()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have filled the entry while we waited for the lock.
	entry, found = r.cache[key]
	if found && r.now().Before(entry.expiresAt) {
		return entry.result()
	}

	var username string
	query := `SELECT username FROM api_keys WHERE key = $1 AND is_active = true AND (expires_at IS NULL OR expires_at > NOW())`
	err := r.db.QueryRowContext(ctx, query, key).Scan(&username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		r.logger.Error("failed to resolve API key in database", "error", err)
		// Errors are not cached; the next request retries.
		return "", err
	}

	r.cache[key] = cacheEntry{
		username:  username,
		expiresAt: r.now().Add(r.cacheTTL),
	}
	return r.cache[key].result()
}

func (e cacheEntry) result() (string, error) {
	if e.username == "" {
		return "", domain.ErrUnknownAPIKey
	}
	return e.username, nil
}
