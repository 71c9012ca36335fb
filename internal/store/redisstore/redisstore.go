// Package redisstore implements the document store contract on Redis.
// Documents are JSON values, collection membership is a set, and live
// queries are driven by pub/sub change notifications: every publish on a
// collection channel triggers a full re-read and snapshot delivery.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kaziflow/kazi-sync/internal/store"
	"github.com/redis/go-redis/v9"
)

// Options configures the Redis-backed store.
type Options struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys (e.g., "kazi:")
	Prefix string

	// ConnectTimeout is the timeout for establishing a connection
	ConnectTimeout time.Duration

	// ReadTimeout is the timeout for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for write operations
	WriteTimeout time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Prefix:         "kazi:",
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
	}
}

// RedisStore implements store.Store.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection.
func New(opts Options) (*RedisStore, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}
	if opts.ReadTimeout > 0 {
		redisOpts.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		redisOpts.WriteTimeout = opts.WriteTimeout
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client, prefix: opts.Prefix}, nil
}

// Close releases the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) docKey(collection, id string) string {
	return fmt.Sprintf("%sdoc:%s:%s", r.prefix, collection, id)
}

func (r *RedisStore) collKey(collection string) string {
	return fmt.Sprintf("%scoll:%s", r.prefix, collection)
}

func (r *RedisStore) changeChannel(collection string) string {
	return fmt.Sprintf("%schanges:%s", r.prefix, collection)
}

// GetDocument implements store.Store.
func (r *RedisStore) GetDocument(ctx context.Context, collection, id string) (store.Snapshot, error) {
	raw, err := r.client.Get(ctx, r.docKey(collection, id)).Result()
	if err == redis.Nil {
		return store.Snapshot{ID: id}, nil
	}
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("redis get %s/%s: %w", collection, id, err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return store.Snapshot{}, fmt.Errorf("redis decode %s/%s: %w", collection, id, err)
	}
	return store.Snapshot{ID: id, Exists: true, Fields: fields}, nil
}

// AddDocument implements store.Store, assigning a uuid, storing the JSON
// value, registering collection membership, and publishing the change.
func (r *RedisStore) AddDocument(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	id := uuid.NewString()
	if err := r.SetDocument(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// SetDocument writes a document and notifies subscribers.
func (r *RedisStore) SetDocument(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("redis encode %s/%s: %w", collection, id, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.docKey(collection, id), raw, 0)
	pipe.SAdd(ctx, r.collKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %s/%s: %w", collection, id, err)
	}

	if err := r.client.Publish(ctx, r.changeChannel(collection), id).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", collection, err)
	}
	return nil
}

// DeleteDocument removes a document and notifies subscribers.
func (r *RedisStore) DeleteDocument(ctx context.Context, collection, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.docKey(collection, id))
	pipe.SRem(ctx, r.collKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete %s/%s: %w", collection, id, err)
	}
	return r.client.Publish(ctx, r.changeChannel(collection), id).Err()
}

func (r *RedisStore) readResultSet(ctx context.Context, q store.Query) ([]store.Snapshot, error) {
	ids, err := r.client.SMembers(ctx, r.collKey(q.Collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis members %s: %w", q.Collection, err)
	}
	sort.Strings(ids)

	var out []store.Snapshot
	for _, id := range ids {
		snap, err := r.GetDocument(ctx, q.Collection, id)
		if err != nil {
			return nil, err
		}
		if snap.Exists && q.Matches(snap) {
			out = append(out, snap)
		}
	}
	return out, nil
}

// SubscribeToDocument implements store.Store.
func (r *RedisStore) SubscribeToDocument(collection, id string, fn store.DocumentFunc) (*store.Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, r.changeChannel(collection))

	sub := store.NewSubscription(func() {
		cancel()
		pubsub.Close()
	})

	first, err := r.GetDocument(ctx, collection, id)
	if err != nil {
		sub.Release()
		return nil, err
	}
	sub.Deliver(func() { fn(first) })

	go func() {
		for msg := range pubsub.Channel() {
			if msg.Payload != id {
				continue
			}
			snap, err := r.GetDocument(ctx, collection, id)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("redisstore: document re-read failed for %s/%s: %v", collection, id, err)
				}
				continue
			}
			sub.Deliver(func() { fn(snap) })
		}
	}()

	return sub, nil
}

// SubscribeToQuery implements store.Store.
func (r *RedisStore) SubscribeToQuery(q store.Query, fn store.QueryFunc) (*store.Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, r.changeChannel(q.Collection))

	sub := store.NewSubscription(func() {
		cancel()
		pubsub.Close()
	})

	first, err := r.readResultSet(ctx, q)
	if err != nil {
		sub.Release()
		return nil, err
	}
	sub.Deliver(func() { fn(first) })

	go func() {
		for range pubsub.Channel() {
			rows, err := r.readResultSet(ctx, q)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("redisstore: query re-read failed for %s: %v", q.Collection, err)
				}
				continue
			}
			sub.Deliver(func() { fn(rows) })
		}
	}()

	return sub, nil
}
