package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	listCacheTTL   = 5 * time.Minute
	detailCacheTTL = 30 * time.Minute
)

// Catalog sits between the handlers and TMDB. Upstream failures never
// propagate: primary fetches come back nil (the handler turns that into a
// 404) and list fetches come back empty. List and detail responses are
// cached in redis when a client is configured; a nil client disables
// caching.
type Catalog struct {
	tmdb  *TMDBClient
	redis *redis.Client
	log   zerolog.Logger
}

func NewCatalog(tmdb *TMDBClient, rdb *redis.Client, log zerolog.Logger) *Catalog {
	return &Catalog{tmdb: tmdb, redis: rdb, log: log}
}

// GetMovie returns the movie document, or nil when the movie does not exist
// or TMDB is unavailable.
func (c *Catalog) GetMovie(ctx context.Context, movieID string) json.RawMessage {
	key := "tmdb:movie:" + movieID
	if doc := c.cached(ctx, key); doc != nil {
		return doc
	}

	doc, err := c.tmdb.GetMovie(ctx, movieID)
	if err != nil {
		c.log.Warn().Err(err).Str("movie_id", movieID).Msg("tmdb movie fetch failed")
		return nil
	}

	c.store(ctx, key, doc, detailCacheTTL)
	return doc
}

func (c *Catalog) SearchMovies(ctx context.Context, query string, page int) *TMDBPage {
	result, err := c.tmdb.SearchMovies(ctx, query, page)
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("tmdb movie search failed")
		return emptyPage(page)
	}
	return result
}

func (c *Catalog) SearchPeople(ctx context.Context, query string, page int) *TMDBPage {
	result, err := c.tmdb.SearchPeople(ctx, query, page)
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("tmdb people search failed")
		return emptyPage(page)
	}
	return result
}

// GetTrending returns this week's trending movies, or an empty list when
// TMDB is unavailable.
func (c *Catalog) GetTrending(ctx context.Context) []json.RawMessage {
	return c.cachedList(ctx, "tmdb:trending", func() (*TMDBPage, error) {
		return c.tmdb.GetTrending(ctx)
	})
}

func (c *Catalog) GetTopRated(ctx context.Context) []json.RawMessage {
	return c.cachedList(ctx, "tmdb:top_rated", func() (*TMDBPage, error) {
		return c.tmdb.GetTopRated(ctx)
	})
}

func (c *Catalog) GetPerson(ctx context.Context, personID string) json.RawMessage {
	key := "tmdb:person:" + personID
	if doc := c.cached(ctx, key); doc != nil {
		return doc
	}

	doc, err := c.tmdb.GetPerson(ctx, personID)
	if err != nil {
		c.log.Warn().Err(err).Str("person_id", personID).Msg("tmdb person fetch failed")
		return nil
	}

	c.store(ctx, key, doc, detailCacheTTL)
	return doc
}

func (c *Catalog) GetPersonCredits(ctx context.Context, personID string) json.RawMessage {
	doc, err := c.tmdb.GetPersonCredits(ctx, personID)
	if err != nil {
		c.log.Warn().Err(err).Str("person_id", personID).Msg("tmdb person credits fetch failed")
		return nil
	}
	return doc
}

func (c *Catalog) cachedList(ctx context.Context, key string, fetch func() (*TMDBPage, error)) []json.RawMessage {
	if doc := c.cached(ctx, key); doc != nil {
		var results []json.RawMessage
		if err := json.Unmarshal(doc, &results); err == nil {
			return results
		}
	}

	page, err := fetch()
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("tmdb list fetch failed")
		return []json.RawMessage{}
	}

	results := page.Results
	if results == nil {
		results = []json.RawMessage{}
	}
	if encoded, err := json.Marshal(results); err == nil {
		c.store(ctx, key, encoded, listCacheTTL)
	}
	return results
}

func (c *Catalog) cached(ctx context.Context, key string) json.RawMessage {
	if c.redis == nil {
		return nil
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil
	}
	return data
}

func (c *Catalog) store(ctx context.Context, key string, doc []byte, ttl time.Duration) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, doc, ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func emptyPage(page int) *TMDBPage {
	if page <= 0 {
		page = 1
	}
	return &TMDBPage{Page: page, Results: []json.RawMessage{}}
}

// NewRedis connects to redis, or returns nil when addr is empty so the
// catalog runs uncached.
func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
