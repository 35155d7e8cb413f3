// Package usersredisstore caches single-user lookups in redis in front of
// another usersrepo.Storer.
package usersredisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/jrazmi/userdir/sdk/logger"
	"github.com/jrazmi/userdir/sdk/metrics"
	"github.com/redis/go-redis/v9"
)

// Options is the exportable cache configuration.
type Options struct {
	Enabled  bool          `yaml:"enabled" env:"CACHE_ENABLED" default:"false"`
	Addr     string        `yaml:"addr" env:"CACHE_ADDR" default:"localhost:6379"`
	Username string        `yaml:"username" env:"CACHE_USERNAME"`
	Password string        `yaml:"password" env:"CACHE_PASSWORD"`
	DB       int           `yaml:"db" env:"CACHE_DB" default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" default:"5m"`
	Prefix   string        `yaml:"prefix" env:"CACHE_PREFIX" default:"users:"`

	// TombstoneTTL is how long a written row stays uncacheable. It must
	// outlast one database read plus one cache round trip.
	TombstoneTTL time.Duration `yaml:"tombstone_ttl" env:"CACHE_TOMBSTONE_TTL" default:"30s"`
}

// tombstone marks a key whose row was just written. Reads treat it as a
// miss and SetNX refuses to replace it, so a lookup that read the row
// before the write cannot cache the old version.
const tombstone = "\x00tombstone"

// Client is the subset of go-redis commands the store relies on.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// NewClient opens a redis client for cfg.
func NewClient(cfg Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Store wraps a usersrepo.Storer. GetByID is read through the cache; every
// write that changes an existing row replaces its entry with a tombstone.
// Cache failures never fail a call, the wrapped store answers instead.
type Store struct {
	next         usersrepo.Storer
	client       Client
	log          *logger.Logger
	ttl          time.Duration
	tombstoneTTL time.Duration
	timeout      time.Duration
	prefix       string
	metrics      *metrics.Collector
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithTombstoneTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.tombstoneTTL = ttl
		}
	}
}

// WithTimeout bounds every redis call. A slow cache then degrades to a
// database read instead of stalling the request.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(s *Store) {
		s.metrics = c
	}
}

func NewStore(log *logger.Logger, client Client, next usersrepo.Storer, opts ...Option) *Store {
	s := &Store{
		next:         next,
		client:       client,
		log:          log,
		ttl:          5 * time.Minute,
		tombstoneTTL: 30 * time.Second,
		timeout:      time.Second,
		prefix:       "users:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id uuid.UUID) string {
	return s.prefix + id.String()
}

func (s *Store) cacheContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// List is never cached.
func (s *Store) List(ctx context.Context, filter usersrepo.UserFilter) ([]usersrepo.User, error) {
	return s.next.List(ctx, filter)
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (usersrepo.User, error) {
	key := s.key(id)

	cctx, cancel := s.cacheContext(ctx)
	raw, err := s.client.Get(cctx, key).Bytes()
	cancel()
	switch {
	case err == nil && string(raw) == tombstone:
		s.metrics.RecordCacheLookup(metrics.CacheMiss)
	case err == nil:
		var user usersrepo.User
		if err := json.Unmarshal(raw, &user); err == nil {
			s.metrics.RecordCacheLookup(metrics.CacheHit)
			return user, nil
		}
		s.log.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
		s.metrics.RecordCacheLookup(metrics.CacheError)
		s.evict(ctx, id)
	case errors.Is(err, redis.Nil):
		s.metrics.RecordCacheLookup(metrics.CacheMiss)
	default:
		s.log.WarnContext(ctx, "cache get", "key", key, "error", err)
		s.metrics.RecordCacheLookup(metrics.CacheError)
	}

	user, err := s.next.GetByID(ctx, id)
	if err != nil {
		return usersrepo.User{}, err
	}
	s.put(ctx, user)
	return user, nil
}

func (s *Store) Create(ctx context.Context, input usersrepo.CreateUser) (usersrepo.User, error) {
	return s.next.Create(ctx, input)
}

func (s *Store) Update(ctx context.Context, input usersrepo.UpdateUser) (usersrepo.User, error) {
	user, err := s.next.Update(ctx, input)
	s.evict(ctx, input.ID)
	return user, err
}

func (s *Store) SoftDelete(ctx context.Context, id uuid.UUID) (usersrepo.User, error) {
	user, err := s.next.SoftDelete(ctx, id)
	s.evict(ctx, id)
	return user, err
}

func (s *Store) Restore(ctx context.Context, id uuid.UUID) (usersrepo.User, error) {
	user, err := s.next.Restore(ctx, id)
	s.evict(ctx, id)
	return user, err
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) (usersrepo.User, error) {
	user, err := s.next.Delete(ctx, id)
	s.evict(ctx, id)
	return user, err
}

// put only fills an empty key. A tombstone written by a concurrent write
// wins over the row read here.
func (s *Store) put(ctx context.Context, user usersrepo.User) {
	data, err := json.Marshal(user)
	if err != nil {
		s.log.WarnContext(ctx, "encode cache entry", "id", user.ID, "error", err)
		return
	}
	cctx, cancel := s.cacheContext(ctx)
	defer cancel()
	stored, err := s.client.SetNX(cctx, s.key(user.ID), data, s.ttl).Result()
	switch {
	case err != nil:
		s.log.WarnContext(ctx, "cache set", "id", user.ID, "error", err)
	case !stored:
		s.log.DebugContext(ctx, "cache set skipped, key written concurrently", "id", user.ID)
	}
}

// evict runs even when the write failed since the row may still have
// changed before the error surfaced.
func (s *Store) evict(ctx context.Context, id uuid.UUID) {
	cctx, cancel := s.cacheContext(ctx)
	defer cancel()
	if err := s.client.Set(cctx, s.key(id), tombstone, s.tombstoneTTL).Err(); err != nil {
		s.log.WarnContext(ctx, "cache evict", "id", id, "error", err)
	}
}
