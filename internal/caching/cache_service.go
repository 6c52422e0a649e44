package caching

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix        = "invoicedash:view:"
	generationPrefix = "invoicedash:gen:"
)

// errStaleView aborts a SetView whose path was invalidated after the read
var errStaleView = errors.New("view generation changed")

// ViewLookup is the result of GetView. Generation is the path's generation at
// lookup time and must be handed back to SetView when storing a recomputed view.
type ViewLookup struct {
	Data       []byte
	Hit        bool
	Generation int64
}

// CacheService stores rendered views keyed by request path and a variant
// (the query string, page, etc). Invalidating a path drops every variant and
// bumps the path's generation, so a view computed before the invalidation is
// never stored afterwards.
type CacheService interface {
	GetView(ctx context.Context, path, variant string) (ViewLookup, error)
	SetView(ctx context.Context, path, variant string, generation int64, data []byte) error
	Generation(ctx context.Context, path string) (int64, error)
	InvalidatePath(ctx context.Context, path string) error
	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisCacheService connects to addr, which may be a bare host:port or a
// redis:// / rediss:// URL. A failing ping is logged, not returned, so the
// service can start before redis is reachable.
func NewRedisCacheService(addr, password string, db int, ttl time.Duration, log zerolog.Logger) (CacheService, error) {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if password != "" {
			parsed.Password = password
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	svc := &redisCacheService{client: client, ttl: ttl, log: log}

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis ping failed on initialization")
	} else {
		log.Debug().Str("addr", opts.Addr).Msg("redis connection established")
	}

	return svc, nil
}

func viewKey(path string, generation int64, variant string) string {
	return keyPrefix + path + ":" + strconv.FormatInt(generation, 10) + ":" + variant
}

func generationKey(path string) string {
	return generationPrefix + path
}

// Generation returns 0 for a path that was never invalidated
func (r *redisCacheService) Generation(ctx context.Context, path string) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(path)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read generation of %s: %w", path, err)
	}
	return gen, nil
}

// GetView reports Hit=false on a cache miss
func (r *redisCacheService) GetView(ctx context.Context, path, variant string) (ViewLookup, error) {
	gen, err := r.Generation(ctx, path)
	if err != nil {
		return ViewLookup{}, err
	}

	lookup := ViewLookup{Generation: gen}
	data, err := r.client.Get(ctx, viewKey(path, gen, variant)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return lookup, nil
		}
		return lookup, err
	}
	lookup.Data = data
	lookup.Hit = true
	return lookup, nil
}

// SetView stores data only while the path is still at generation. A view read
// before a concurrent invalidation is dropped.
func (r *redisCacheService) SetView(ctx context.Context, path, variant string, generation int64, data []byte) error {
	genKey := generationKey(path)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleView
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, viewKey(path, generation, variant), data, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case errors.Is(err, errStaleView), errors.Is(err, redis.TxFailedErr):
		r.log.Debug().Str("path", path).Str("variant", variant).Msg("skipped storing stale view")
		return nil
	case err != nil:
		return fmt.Errorf("store view %s: %w", path, err)
	}
	return nil
}

// InvalidatePath bumps the generation of path and deletes its cached
// variants. Other paths, including nested ones, are left alone.
func (r *redisCacheService) InvalidatePath(ctx context.Context, path string) error {
	if err := r.client.Incr(ctx, generationKey(path)).Err(); err != nil {
		return fmt.Errorf("bump generation of %s: %w", path, err)
	}

	pattern := keyPrefix + escapeGlob(path) + ":*"

	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("invalidate %s: %w", path, err)
		}
	}
	r.log.Debug().Str("path", path).Int("keys", len(keys)).Msg("invalidated cached path")
	return nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
