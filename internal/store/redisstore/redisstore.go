// Package redisstore keeps sessions in Redis so several terminals on a shared
// host can reuse one login.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Makepad-fr/nexo/internal/session"
)

type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect dials Redis and pings it so misconfiguration fails at startup.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
	pctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Sessions implements session.Persister.
type Sessions struct {
	rdb redis.Cmdable
	key string
	now func() time.Time
}

func NewSessions(rdb redis.Cmdable, profile string) *Sessions {
	if profile == "" {
		profile = "default"
	}
	return &Sessions{rdb: rdb, key: Key(profile), now: time.Now}
}

func Key(profile string) string { return "nexo:session:" + profile }

func (s *Sessions) Load(ctx context.Context) (*session.Session, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var sess session.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	sess.Source = "redis"
	return &sess, nil
}

// Save stores the session with a TTL matching the token's exp claim when it
// has one.
func (s *Sessions) Save(ctx context.Context, sess session.Session) error {
	sess.Source = "redis"
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	var ttl time.Duration
	if exp, ok := session.ExpiresAt(sess.Token); ok {
		ttl = exp.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx)
		}
	}
	if err := s.rdb.Set(ctx, s.key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Sessions) Delete(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
