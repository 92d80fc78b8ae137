package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"syllabye/internal/model"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// AnonymousScope holds entries fetched without a session.
const AnonymousScope = "anonymous"

// ScopeFor returns the cache scope of a session. Entries never cross scopes.
func ScopeFor(session *model.Session) string {
	if session == nil || session.UserID == "" {
		return AnonymousScope
	}
	return "user:" + session.UserID
}

// Store caches fetch results per session scope and collapses concurrent
// fetches of the same key into one upstream call.
type Store struct {
	cache        *cache.Cache
	group        singleflight.Group
	fetchTimeout time.Duration
	logger       zerolog.Logger

	mu       sync.Mutex
	inflight map[string]int
}

// NewStore creates a store. fetchTimeout bounds a shared upstream fetch, which
// outlives the request that started it; zero leaves it unbounded.
func NewStore(ttl, cleanup, fetchTimeout time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		cache:        cache.New(ttl, cleanup),
		fetchTimeout: fetchTimeout,
		logger:       logger.With().Str("service", "QueryStore").Logger(),
		inflight:     make(map[string]int),
	}
}

func storeKey(scope, key string) string {
	return scope + "|" + key
}

// Status reports what the store knows about a key without fetching it.
func (s *Store) Status(scope, key string) Status {
	k := storeKey(scope, key)
	s.mu.Lock()
	pending := s.inflight[k] > 0
	s.mu.Unlock()
	if pending {
		return StatusPending
	}
	if _, ok := s.cache.Get(k); ok {
		return StatusSuccess
	}
	return StatusIdle
}

// Invalidate drops a cached entry so the next fetch goes upstream.
func (s *Store) Invalidate(scope, key string) {
	s.cache.Delete(storeKey(scope, key))
}

// DropScope removes every entry of a scope, e.g. after logout.
func (s *Store) DropScope(scope string) {
	prefix := scope + "|"
	for k := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			s.cache.Delete(k)
		}
	}
}

func (s *Store) begin(k string) {
	s.mu.Lock()
	s.inflight[k]++
	s.mu.Unlock()
}

func (s *Store) end(k string) {
	s.mu.Lock()
	if s.inflight[k] <= 1 {
		delete(s.inflight, k)
	} else {
		s.inflight[k]--
	}
	s.mu.Unlock()
}

// Fetch returns the cached value for key in scope, or runs fetch once for all
// concurrent callers and caches a successful result. A failed fetch is not
// cached and yields def with StatusError. A caller whose ctx ends stops
// waiting, while the shared fetch carries on for the others.
func Fetch[T any](ctx context.Context, s *Store, scope, key string, def T, fetch func(ctx context.Context) (T, error)) Result[T] {
	k := storeKey(scope, key)
	if v, ok := s.cache.Get(k); ok {
		if data, ok := v.(T); ok {
			return Success(data)
		}
		s.cache.Delete(k)
	}

	ch := s.group.DoChan(k, func() (any, error) {
		s.begin(k)
		defer s.end(k)
		fetchCtx := context.WithoutCancel(ctx)
		if s.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, s.fetchTimeout)
			defer cancel()
		}
		data, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.cache.SetDefault(k, data)
		return data, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return Failure(def, ctx.Err())
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Str("scope", scope).Msg("Query fetch failed")
		return Failure(def, err)
	}
	if shared {
		s.logger.Debug().Str("key", key).Msg("Query fetch deduplicated")
	}
	data, ok := v.(T)
	if !ok {
		return Failure(def, fmt.Errorf("unexpected cached type %T for key %s", v, key))
	}
	return Success(data)
}
